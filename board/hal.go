package board

import (
	"context"
	"io"
	"time"
)

// HAL defines the two board primitives the heartbeat emitter consumes,
// plus access to the board's console.
//
// Init corresponds to the SDK's one-time stdio initialization and Sleep to
// its blocking millisecond delay. Console is the byte sink that the
// initialized stdio writes to (USB CDC on hardware).
//
// Implementations need not be safe for concurrent use: the emitter is the
// sole owner of a board.
type HAL interface {
	// Init performs one-time setup of the serial output channel.
	// Callers treat failures as non-fatal; output is then discarded.
	Init(ctx context.Context) error

	// Sleep blocks the calling context for d.
	// It returns early with ctx.Err() if the context is cancelled.
	Sleep(ctx context.Context, d time.Duration) error

	// Console returns the writer backing the serial output channel.
	// It is only meaningful after Init.
	Console() io.Writer
}

// Closer is implemented by boards that hold OS resources.
type Closer interface {
	Close() error
}

// Clock is implemented by boards that keep their own notion of time,
// such as a virtual clock. The emitter uses it to timestamp log records.
type Clock interface {
	Now() time.Time
}

// Sleep blocks for d on the wall clock or until ctx is done.
// Non-positive durations return immediately.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
