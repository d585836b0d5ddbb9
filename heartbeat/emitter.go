package heartbeat

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/ardnew/picobeat/board"
	"github.com/ardnew/picobeat/pkg"
	"github.com/ardnew/picobeat/serial"
)

// Tick describes one emitted heartbeat line.
type Tick struct {
	Seq  uint64    // Zero-based emission number
	Line string    // Line as written, without newline
	At   time.Time // Board time of the write
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithLineCoding sets the nominal line coding reported by the serial port.
func WithLineCoding(lc serial.LineCoding) Option {
	return func(e *Emitter) { e.coding = lc }
}

// WithObserver registers fn to run after every tick, on the loop's
// goroutine, before the interval delay.
func WithObserver(fn func(Tick)) Option {
	return func(e *Emitter) { e.observer = fn }
}

// Emitter writes a heartbeat line to a board's serial channel at a fixed
// interval, forever.
//
// All lifecycle methods must be called from one goroutine. Count, State
// and Stats may be called from any goroutine.
type Emitter struct {
	hal      board.HAL
	variant  Variant
	coding   serial.LineCoding
	observer func(Tick)

	port atomic.Pointer[serial.Port]

	// seq is owned by the loop; count mirrors it for observers.
	seq   uint64
	count atomic.Uint64
	state atomic.Uint32
}

// New creates an emitter for variant v on hal.
func New(hal board.HAL, v Variant, opts ...Option) (*Emitter, error) {
	if hal == nil {
		return nil, fmt.Errorf("nil board: %w", pkg.ErrInvalidParameter)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	e := &Emitter{
		hal:     hal,
		variant: v,
		coding:  serial.DefaultLineCoding,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Variant returns the emitter's variant.
func (e *Emitter) Variant() Variant {
	return e.variant
}

// State returns the current lifecycle state.
func (e *Emitter) State() State {
	return State(e.state.Load())
}

// Count returns the number of ticks emitted so far.
func (e *Emitter) Count() uint64 {
	return e.count.Load()
}

// Stats returns the serial port counters (zero before Initialize).
func (e *Emitter) Stats() serial.Stats {
	if p := e.port.Load(); p != nil {
		return p.Stats()
	}
	return serial.Stats{}
}

func (e *Emitter) setState(s State) {
	prev := State(e.state.Swap(uint32(s)))
	if prev != s {
		pkg.LogDebug(pkg.ComponentHeartbeat, "state change",
			"variant", e.variant.Name,
			"from", prev,
			"to", s)
	}
}

// Initialize performs the one-time setup of the serial channel.
//
// A board that fails to initialize is not an error: the emitter carries on
// and its output is discarded. Initialize fails only when called twice or
// when ctx is already done.
func (e *Emitter) Initialize(ctx context.Context) error {
	if !e.state.CompareAndSwap(uint32(StateIdle), uint32(StateInitializing)) {
		return pkg.ErrAlreadyInitialized
	}

	var console io.Writer
	if err := e.hal.Init(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			e.setState(StateStopped)
			return ctxErr
		}
		pkg.LogWarn(pkg.ComponentHeartbeat, "serial init failed, output discarded",
			"variant", e.variant.Name,
			"error", err)
		console = io.Discard
	} else {
		console = e.hal.Console()
	}

	e.port.Store(serial.NewPort(console, e.coding))
	e.setState(StateReady)

	pkg.LogInfo(pkg.ComponentHeartbeat, "serial initialized",
		"variant", e.variant.Name,
		"lineCoding", e.coding.String())
	return nil
}

// WarmUp suspends for the variant's warm-up delay so a host terminal can
// attach before output begins.
func (e *Emitter) WarmUp(ctx context.Context) error {
	switch s := e.State(); s {
	case StateReady, StateWarmingUp:
	case StateIdle, StateInitializing:
		return pkg.ErrNotInitialized
	default:
		return fmt.Errorf("warm-up while %s: %w", s, pkg.ErrAlreadyRunning)
	}

	e.setState(StateWarmingUp)
	pkg.LogInfo(pkg.ComponentHeartbeat, "warming up",
		"variant", e.variant.Name,
		"delay", e.variant.WarmUp)

	if err := e.hal.Sleep(ctx, e.variant.WarmUp); err != nil {
		e.setState(StateStopped)
		return err
	}
	return nil
}

// RunForever writes the banner, then emits, increments and sleeps until the
// context ends. On hardware the context never ends and neither does the
// loop. A variant with a limit writes its trailer and returns nil instead.
func (e *Emitter) RunForever(ctx context.Context) error {
	switch s := e.State(); s {
	case StateReady, StateWarmingUp:
	case StateIdle, StateInitializing:
		return pkg.ErrNotInitialized
	case StateRunning:
		return pkg.ErrAlreadyRunning
	default:
		return fmt.Errorf("run while %s: %w", s, pkg.ErrClosed)
	}

	if err := ctx.Err(); err != nil {
		e.setState(StateStopped)
		return err
	}

	e.setState(StateRunning)
	port := e.port.Load()
	v := e.variant

	for _, line := range v.Banner {
		port.WriteLine(line)
	}

	pkg.LogInfo(pkg.ComponentHeartbeat, "heartbeat running",
		"variant", v.Name,
		"interval", v.Interval,
		"forever", v.Forever())

	for {
		if !v.Forever() && e.seq >= v.Limit {
			for _, line := range v.Trailer {
				port.WriteLine(line)
			}
			e.setState(StateFinished)
			pkg.LogInfo(pkg.ComponentHeartbeat, "heartbeat finished",
				"variant", v.Name,
				"ticks", e.seq)
			return nil
		}

		e.emit(port)

		if err := e.hal.Sleep(ctx, v.Interval); err != nil {
			e.setState(StateStopped)
			pkg.LogInfo(pkg.ComponentHeartbeat, "heartbeat stopped",
				"variant", v.Name,
				"ticks", e.seq,
				"reason", err)
			return err
		}
	}
}

// Run initializes, warms up and runs the loop.
func (e *Emitter) Run(ctx context.Context) error {
	if err := e.Initialize(ctx); err != nil {
		return err
	}
	if err := e.WarmUp(ctx); err != nil {
		return err
	}
	return e.RunForever(ctx)
}

// emit writes the current tick and advances the counter.
func (e *Emitter) emit(port *serial.Port) {
	tick := Tick{Seq: e.seq, Line: e.variant.Line(e.seq), At: e.now()}
	port.WriteLine(tick.Line)

	e.seq++
	e.count.Store(e.seq)

	pkg.LogDebug(pkg.ComponentHeartbeat, "tick", "seq", tick.Seq, "line", tick.Line)
	if e.observer != nil {
		e.observer(tick)
	}
}

func (e *Emitter) now() time.Time {
	if c, ok := e.hal.(board.Clock); ok {
		return c.Now()
	}
	return time.Now()
}
