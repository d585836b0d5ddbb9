package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ardnew/picobeat/board"
	"github.com/ardnew/picobeat/board/fifo"
	"github.com/ardnew/picobeat/board/host"
	"github.com/ardnew/picobeat/config"
	"github.com/ardnew/picobeat/heartbeat"
	"github.com/ardnew/picobeat/pkg"
	"github.com/ardnew/picobeat/serial"
)

func (a *app) newEmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Run the heartbeat emitter on a host board",
		Long: "Run the heartbeat emitter until interrupted. The host board prints " +
			"to stdout; the fifo board creates a board directory under --bus " +
			"that 'picobeat monitor' attaches to.",
		Args: cobra.NoArgs,
		RunE: a.runEmit,
	}

	cmd.Flags().String("variant", heartbeat.VariantA.Name, "Heartbeat variant (see 'picobeat variants')")
	cmd.Flags().String("board", config.BoardHost, "Board to emit on: host | fifo")
	cmd.Flags().String("bus", config.DefaultBusDir, "Bus directory for the fifo board")
	cmd.Flags().Duration("warm-up", 0, "Override the variant's warm-up delay")
	cmd.Flags().Duration("interval", 0, "Override the variant's tick interval")
	cmd.Flags().Uint64("count", 0, "Stop after this many ticks (0 runs forever)")
	cmd.Flags().String("line-coding", serial.DefaultLineCoding.String(), "Nominal serial line coding, e.g. \"9600 8N1\"")
	return cmd
}

func (a *app) runEmit(cmd *cobra.Command, _ []string) error {
	if err := a.override(cmd); err != nil {
		return err
	}
	v, err := a.cfg.ResolveVariant()
	if err != nil {
		return exitError(exitUsage, "%v", err)
	}

	var hal board.HAL
	switch a.cfg.Board {
	case config.BoardFIFO:
		hal = fifo.New(a.cfg.BusDir)
	default:
		hal = host.New(cmd.OutOrStdout())
	}
	if c, ok := hal.(board.Closer); ok {
		defer c.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lineCoding, _ := cmd.Flags().GetString("line-coding")
	coding, err := serial.ParseLineCoding(lineCoding)
	if err != nil {
		return exitError(exitUsage, "%v", err)
	}

	count := a.cfg.Count
	opts := []heartbeat.Option{heartbeat.WithLineCoding(coding)}
	if count > 0 {
		opts = append(opts, heartbeat.WithObserver(func(t heartbeat.Tick) {
			if t.Seq+1 >= count {
				cancel()
			}
		}))
	}

	e, err := heartbeat.New(hal, v, opts...)
	if err != nil {
		return exitError(exitUsage, "%v", err)
	}

	// The fifo board directory exists only after Initialize; report it
	// before the warm-up so a monitor can be pointed at it.
	if b, ok := hal.(*fifo.Board); ok {
		if err := e.Initialize(ctx); err != nil {
			return emitResult(ctx, e, err)
		}
		if dir := b.Dir(); dir != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "board %s\n", dir)
		}
		if err := e.WarmUp(ctx); err != nil {
			return emitResult(ctx, e, err)
		}
		return emitResult(ctx, e, e.RunForever(ctx))
	}

	return emitResult(ctx, e, e.Run(ctx))
}

// emitResult maps the emitter's return to an exit status. Reaching the
// tick count or being interrupted is a normal end.
func emitResult(ctx context.Context, e *heartbeat.Emitter, err error) error {
	pkg.LogInfo(pkg.ComponentCLI, "emitter stopped",
		"state", e.State(),
		"ticks", e.Count(),
		"dropped", e.Stats().Dropped)

	if err == nil || (errors.Is(err, context.Canceled) && ctx.Err() != nil) {
		return nil
	}
	return exitError(exitRuntime, "emitter: %v", err)
}
