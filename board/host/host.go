// Package host implements board.HAL for an ordinary host process.
//
// The console is any io.Writer (os.Stdout by default) and Sleep uses the
// wall clock. This is the board picobeat runs on when it is not flashed to
// a microcontroller.
package host

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ardnew/picobeat/board"
	"github.com/ardnew/picobeat/pkg"
)

// Board is a host-process board.
type Board struct {
	out io.Writer

	mutex    sync.Mutex
	initDone bool
}

// New returns a board whose console is w. A nil w selects os.Stdout.
func New(w io.Writer) *Board {
	if w == nil {
		w = os.Stdout
	}
	return &Board{out: w}
}

// Init marks the console ready. It fails only when called twice.
func (b *Board) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.initDone {
		return pkg.ErrAlreadyInitialized
	}
	b.initDone = true
	pkg.LogDebug(pkg.ComponentBoard, "host board initialized")
	return nil
}

// Sleep blocks for d on the wall clock.
func (b *Board) Sleep(ctx context.Context, d time.Duration) error {
	return board.Sleep(ctx, d)
}

// Console returns the configured writer, or a discarding writer before Init.
func (b *Board) Console() io.Writer {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if !b.initDone {
		return io.Discard
	}
	return b.out
}

// Now returns the wall-clock time.
func (b *Board) Now() time.Time {
	return time.Now()
}

// Compile-time interface checks
var (
	_ board.HAL   = (*Board)(nil)
	_ board.Clock = (*Board)(nil)
)
