package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ardnew/picobeat/config"
	"github.com/ardnew/picobeat/pkg"
)

// app is the state shared by the subcommands of one command tree.
type app struct {
	cfg config.Config
}

// newRootCmd creates a fresh command tree. Tests build one per case.
func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default()}

	root := &cobra.Command{
		Use:   "picobeat",
		Short: "Serial heartbeat emitter and monitor",
		Long: "picobeat prints a counter once a second after a warm-up delay, " +
			"the smallest proof that a board is alive, and checks such streams.",
		// SilenceUsage prevents printing usage on every error
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}

	root.PersistentFlags().String("config", "", "Load settings from a TOML or YAML file")
	root.PersistentFlags().Bool("verbose", false, "Enable verbose/debug logging")
	root.PersistentFlags().Bool("json", false, "Use JSON log format")

	root.Version = version
	root.SetVersionTemplate(fmt.Sprintf("picobeat version %s\n", version))

	root.AddCommand(a.newEmitCmd())
	root.AddCommand(a.newMonitorCmd())
	root.AddCommand(newVariantsCmd())
	return root
}

// load reads --config, applies the logging flags and installs the logger.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return exitError(exitUsage, "%v", err)
		}
		a.cfg = cfg
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		a.cfg.Log.Level = "debug"
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		a.cfg.Log.Format = "json"
	}
	if err := a.cfg.ApplyLogging(); err != nil {
		return exitError(exitUsage, "%v", err)
	}
	return nil
}

// override copies flags the user set on cmd into the configuration and
// validates the result.
func (a *app) override(cmd *cobra.Command) error {
	flags := cmd.Flags()
	for _, name := range []string{
		"variant", "board", "bus", "warm-up", "interval", "count",
		"jitter", "grace", "late-attach",
	} {
		if !flags.Changed(name) {
			continue
		}
		var err error
		switch name {
		case "variant":
			a.cfg.Variant, err = flags.GetString(name)
		case "board":
			a.cfg.Board, err = flags.GetString(name)
		case "bus":
			a.cfg.BusDir, err = flags.GetString(name)
		case "warm-up":
			a.cfg.WarmUp, err = flags.GetDuration(name)
		case "interval":
			a.cfg.Interval, err = flags.GetDuration(name)
		case "count":
			a.cfg.Count, err = flags.GetUint64(name)
		case "jitter":
			a.cfg.Monitor.Jitter, err = flags.GetDuration(name)
		case "grace":
			a.cfg.Monitor.Grace, err = flags.GetDuration(name)
		case "late-attach":
			a.cfg.Monitor.LateAttach, err = flags.GetBool(name)
		}
		if err != nil {
			return exitError(exitUsage, "--%s: %v", name, err)
		}
	}

	if err := a.cfg.Validate(); err != nil {
		return exitError(exitUsage, "%v", err)
	}
	pkg.LogDebug(pkg.ComponentCLI, "effective config",
		"variant", a.cfg.Variant,
		"board", a.cfg.Board,
		"busDir", a.cfg.BusDir,
		"count", a.cfg.Count)
	return nil
}
