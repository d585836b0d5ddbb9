package heartbeat

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ardnew/picobeat/pkg"
)

// Default timing shared by the Pico SDK variants.
const (
	DefaultWarmUp   = 2000 * time.Millisecond
	DefaultInterval = 1000 * time.Millisecond
)

// Variant describes one heartbeat scenario: what is printed and how it is
// paced. Variants are values; modify a copy to change timing.
type Variant struct {
	Name        string
	Aliases     []string
	Description string

	// Banner lines are written once, after warm-up and before the first tick.
	Banner []string

	// Prefix is written before the counter on every tick line.
	Prefix string
	Width  Width

	WarmUp   time.Duration
	Interval time.Duration

	// Limit stops the loop after that many ticks. Zero means never stop.
	Limit uint64

	// Trailer lines are written once after the last tick of a limited run.
	Trailer []string
}

// Line returns the tick line for sequence number seq, without newline.
func (v Variant) Line(seq uint64) string {
	return v.Prefix + v.Width.Format(seq)
}

// Forever reports whether the variant never stops on its own.
func (v Variant) Forever() bool {
	return v.Limit == 0
}

// HasBanner reports whether the variant writes banner lines.
func (v Variant) HasBanner() bool {
	return len(v.Banner) > 0
}

// WithTiming returns a copy with the given delays. Negative values keep
// the variant's own delay.
func (v Variant) WithTiming(warmUp, interval time.Duration) Variant {
	if warmUp >= 0 {
		v.WarmUp = warmUp
	}
	if interval >= 0 {
		v.Interval = interval
	}
	return v
}

// Validate checks that the variant can drive an emitter.
func (v Variant) Validate() error {
	switch {
	case v.Name == "":
		return fmt.Errorf("variant name: %w", pkg.ErrInvalidParameter)
	case v.WarmUp < 0:
		return fmt.Errorf("variant %s warm-up %v: %w", v.Name, v.WarmUp, pkg.ErrInvalidParameter)
	case v.Interval < 0:
		return fmt.Errorf("variant %s interval %v: %w", v.Name, v.Interval, pkg.ErrInvalidParameter)
	case strings.ContainsAny(v.Prefix, "\r\n"):
		return fmt.Errorf("variant %s prefix contains a line break: %w", v.Name, pkg.ErrInvalidParameter)
	}
	return nil
}

// Built-in variants.
var (
	// VariantA is the pico-sdk-usb-hello smoke test: no banner, signed counter.
	VariantA = Variant{
		Name:        "a",
		Aliases:     []string{"pico-sdk-usb-hello", "usb-hello"},
		Description: "Pico SDK USB smoke test, labelled ticks, int counter",
		Prefix:      "L00 Pico SDK smoke test tick ",
		Width:       WidthInt32,
		WarmUp:      DefaultWarmUp,
		Interval:    DefaultInterval,
	}

	// VariantB is the pico_sdk_hello sketch: one banner, unsigned counter.
	VariantB = Variant{
		Name:        "b",
		Aliases:     []string{"pico-sdk-hello", "hello"},
		Description: "Pico SDK hello, banner then bare ticks, unsigned long counter",
		Banner:      []string{"L00 Pico SDK hello"},
		Prefix:      "tick: ",
		Width:       WidthUint32,
		WarmUp:      DefaultWarmUp,
		Interval:    DefaultInterval,
	}

	// VariantMicroPythonREPL is the MicroPython heartbeat pasted at the REPL.
	VariantMicroPythonREPL = Variant{
		Name:        "micropython-repl",
		Aliases:     []string{"mp-repl"},
		Description: "MicroPython REPL heartbeat, starts immediately",
		Banner:      []string{"L00 MicroPython smoke test starting"},
		Prefix:      "tick ",
		Width:       WidthUnbounded,
		Interval:    DefaultInterval,
	}

	// VariantMicroPythonHello is the MicroPython sanity check: five ticks then done.
	VariantMicroPythonHello = Variant{
		Name:        "micropython-hello",
		Aliases:     []string{"mp-hello"},
		Description: "MicroPython sanity check, five ticks then done",
		Banner: []string{
			"L00 MicroPython hello",
			"If you can read this, upload + serial output are working.",
		},
		Prefix:   "tick: ",
		Width:    WidthUnbounded,
		Interval: DefaultInterval,
		Limit:    5,
		Trailer:  []string{"done"},
	}
)

var registry = []Variant{
	VariantA,
	VariantB,
	VariantMicroPythonREPL,
	VariantMicroPythonHello,
}

// Variants returns the built-in variants in a stable order.
func Variants() []Variant {
	out := make([]Variant, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a variant by name or alias, ignoring case.
func Lookup(name string) (Variant, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, v := range registry {
		if v.Name == key || slices.Contains(v.Aliases, key) {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("%q: %w", name, pkg.ErrUnknownVariant)
}
