package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ardnew/picobeat/heartbeat"
	"github.com/ardnew/picobeat/monitor"
	"github.com/ardnew/picobeat/pkg"
)

// Board names.
const (
	BoardHost = "host"
	BoardFIFO = "fifo"
)

// DefaultBusDir is where fifo boards are created when no bus directory is
// configured.
var DefaultBusDir = filepath.Join(os.TempDir(), "picobeat-bus")

// Log selects the diagnostic log level and format.
type Log struct {
	Level  string
	Format string
}

// Monitor holds the monitor's tolerances.
type Monitor struct {
	Jitter     time.Duration
	Grace      time.Duration
	LateAttach bool
}

// Config is the complete host-side configuration.
type Config struct {
	Variant  string
	Board    string
	BusDir   string
	WarmUp   time.Duration // Negative keeps the variant's own delay
	Interval time.Duration // Negative keeps the variant's own delay
	Count    uint64        // Stop after this many ticks; zero runs forever
	Log      Log
	Monitor  Monitor
}

// Default returns variant A on the host board with the variant's own
// timing.
func Default() Config {
	return Config{
		Variant:  heartbeat.VariantA.Name,
		Board:    BoardHost,
		BusDir:   DefaultBusDir,
		WarmUp:   -1,
		Interval: -1,
		Log:      Log{Level: "warn", Format: "text"},
		Monitor: Monitor{
			Jitter: monitor.DefaultJitter,
			Grace:  monitor.DefaultGrace,
		},
	}
}

// file is the on-disk form shared by TOML and YAML. Pointers distinguish
// absent keys from zero values.
type file struct {
	Variant  *string `toml:"variant" yaml:"variant"`
	Board    *string `toml:"board" yaml:"board"`
	BusDir   *string `toml:"bus_dir" yaml:"bus_dir"`
	WarmUp   *string `toml:"warm_up" yaml:"warm_up"`
	Interval *string `toml:"interval" yaml:"interval"`
	Count    *uint64 `toml:"count" yaml:"count"`
	Log      *struct {
		Level  *string `toml:"level" yaml:"level"`
		Format *string `toml:"format" yaml:"format"`
	} `toml:"log" yaml:"log"`
	Monitor *struct {
		Jitter     *string `toml:"jitter" yaml:"jitter"`
		Grace      *string `toml:"grace" yaml:"grace"`
		LateAttach *bool   `toml:"late_attach" yaml:"late_attach"`
	} `toml:"monitor" yaml:"monitor"`
}

// Load reads path over Default and validates the result. The format is
// chosen by extension: .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %q: %w", path, err)
	}

	var f file
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return Config{}, fmt.Errorf("config %q: unknown key %q: %w", path, keys[0].String(), pkg.ErrInvalidParameter)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config %q: unsupported extension %q: %w", path, ext, pkg.ErrInvalidParameter)
	}

	cfg := Default()
	if err := f.apply(&cfg); err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}

	pkg.LogDebug(pkg.ComponentConfig, "loaded config", "path", path, "variant", cfg.Variant, "board", cfg.Board)
	return cfg, nil
}

func (f *file) apply(cfg *Config) error {
	setString(&cfg.Variant, f.Variant)
	setString(&cfg.Board, f.Board)
	setString(&cfg.BusDir, f.BusDir)
	if f.Count != nil {
		cfg.Count = *f.Count
	}
	if err := setDuration(&cfg.WarmUp, f.WarmUp, "warm_up"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Interval, f.Interval, "interval"); err != nil {
		return err
	}

	if l := f.Log; l != nil {
		setString(&cfg.Log.Level, l.Level)
		setString(&cfg.Log.Format, l.Format)
	}

	if m := f.Monitor; m != nil {
		if err := setDuration(&cfg.Monitor.Jitter, m.Jitter, "monitor.jitter"); err != nil {
			return err
		}
		if err := setDuration(&cfg.Monitor.Grace, m.Grace, "monitor.grace"); err != nil {
			return err
		}
		if m.LateAttach != nil {
			cfg.Monitor.LateAttach = *m.LateAttach
		}
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setDuration(dst *time.Duration, src *string, key string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(*src))
	if err != nil {
		return fmt.Errorf("%s %q: %w", key, *src, pkg.ErrInvalidParameter)
	}
	*dst = d
	return nil
}

// Validate rejects unknown variants, boards and log settings, and
// negative monitor tolerances.
func (c Config) Validate() error {
	if _, err := heartbeat.Lookup(c.Variant); err != nil {
		return err
	}
	switch c.Board {
	case BoardHost:
	case BoardFIFO:
		if c.BusDir == "" {
			return fmt.Errorf("fifo board needs a bus directory: %w", pkg.ErrInvalidParameter)
		}
	default:
		return fmt.Errorf("board %q: %w", c.Board, pkg.ErrInvalidParameter)
	}
	if _, err := pkg.ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := pkg.ParseLogFormat(c.Log.Format); err != nil {
		return err
	}
	if c.Monitor.Jitter < 0 {
		return fmt.Errorf("monitor jitter %v: %w", c.Monitor.Jitter, pkg.ErrInvalidParameter)
	}
	if c.Monitor.Grace < 0 {
		return fmt.Errorf("monitor grace %v: %w", c.Monitor.Grace, pkg.ErrInvalidParameter)
	}
	return nil
}

// ResolveVariant looks up the configured variant and applies the timing
// overrides.
func (c Config) ResolveVariant() (heartbeat.Variant, error) {
	v, err := heartbeat.Lookup(c.Variant)
	if err != nil {
		return heartbeat.Variant{}, err
	}
	return v.WithTiming(c.WarmUp, c.Interval), nil
}

// ApplyLogging installs the configured log level and format.
func (c Config) ApplyLogging() error {
	level, err := pkg.ParseLogLevel(c.Log.Level)
	if err != nil {
		return err
	}
	format, err := pkg.ParseLogFormat(c.Log.Format)
	if err != nil {
		return err
	}
	pkg.SetLogLevel(level)
	pkg.SetLogFormat(format)
	return nil
}
