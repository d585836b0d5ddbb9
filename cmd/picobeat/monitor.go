package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ardnew/picobeat/board/fifo"
	"github.com/ardnew/picobeat/config"
	"github.com/ardnew/picobeat/heartbeat"
	"github.com/ardnew/picobeat/monitor"
	"github.com/ardnew/picobeat/pkg"
)

func (a *app) newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Check a heartbeat stream",
		Long: "Attach to the first fifo board under --bus (waiting for one to " +
			"appear) or read --stdin, print every line, and check the heartbeat. " +
			"Exits with status 3 if any property was violated.",
		Args: cobra.NoArgs,
		RunE: a.runMonitor,
	}

	cmd.Flags().String("variant", heartbeat.VariantA.Name, "Heartbeat variant (see 'picobeat variants')")
	cmd.Flags().String("bus", config.DefaultBusDir, "Bus directory to find a fifo board in")
	cmd.Flags().Bool("stdin", false, "Read the stream from stdin instead of a fifo board")
	cmd.Flags().Duration("warm-up", 0, "Override the variant's warm-up delay")
	cmd.Flags().Duration("interval", 0, "Override the variant's tick interval")
	cmd.Flags().Duration("jitter", monitor.DefaultJitter, "Slack allowed on every timing check")
	cmd.Flags().Duration("grace", monitor.DefaultGrace, "Silence beyond one interval before the heartbeat is lost (0 disables)")
	cmd.Flags().Bool("late-attach", false, "Accept a stream that is already running")
	cmd.Flags().Uint64("count", 0, "Stop after this many ticks (0 reads until the stream ends)")
	return cmd
}

func (a *app) runMonitor(cmd *cobra.Command, _ []string) error {
	if err := a.override(cmd); err != nil {
		return err
	}
	v, err := a.cfg.ResolveVariant()
	if err != nil {
		return exitError(exitUsage, "%v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := monitor.Options{
		Jitter:     a.cfg.Monitor.Jitter,
		LateAttach: a.cfg.Monitor.LateAttach,
	}

	var r io.Reader
	if useStdin, _ := cmd.Flags().GetBool("stdin"); useStdin {
		r = cmd.InOrStdin()
	} else {
		dir, err := fifo.WaitBoard(ctx, a.cfg.BusDir)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return exitError(exitRuntime, "%v", err)
		}
		port, err := fifo.OpenPort(dir)
		if err != nil {
			return exitError(exitRuntime, "%v", err)
		}
		defer port.Close()

		if !opts.LateAttach {
			opts.Start = port.Started()
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "attached to %s\n", dir)
		r = port.Reader(ctx)
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	grace := a.cfg.Monitor.Grace
	if grace == 0 {
		grace = -1
	}
	m, err := monitor.New(monitor.Config{
		Variant:     v,
		Options:     opts,
		Grace:       grace,
		MaxTicks:    a.cfg.Count,
		OnLine:      func(o monitor.Observation) { fmt.Fprintln(out, o.Line) },
		OnViolation: func(viol *monitor.Violation) { fmt.Fprintf(errOut, "violation: %v\n", viol) },
	})
	if err != nil {
		return exitError(exitUsage, "%v", err)
	}

	report, err := m.Run(ctx, r)
	printReport(errOut, report)
	if err != nil && !(errors.Is(err, context.Canceled) && ctx.Err() != nil) {
		return exitError(exitRuntime, "monitor: %v", err)
	}
	if !report.OK() {
		return exitError(exitViolations, "%d heartbeat violations", report.Violations)
	}
	return nil
}

func printReport(w io.Writer, r monitor.Report) {
	pkg.LogInfo(pkg.ComponentCLI, "monitor report",
		"variant", r.Variant,
		"ticks", r.Ticks,
		"violations", r.Violations)

	fmt.Fprintf(w, "variant %s: %d lines, %d ticks", r.Variant, r.Lines, r.Ticks)
	if r.Ticks > 0 {
		fmt.Fprintf(w, " (%d..%d)", r.FirstCounter, r.LastCounter)
	}
	if r.Ticks > 1 {
		fmt.Fprintf(w, ", interval %v..%v", r.MinInterval.Round(time.Millisecond), r.MaxInterval.Round(time.Millisecond))
	}
	if r.Finished {
		fmt.Fprint(w, ", finished")
	}
	fmt.Fprintf(w, ", %d violations\n", r.Violations)
}
