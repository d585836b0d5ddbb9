// Package sim implements board.HAL with a virtual clock.
//
// Sleep advances the clock instantly and every console write is recorded
// with the virtual time at which it happened, so timing properties of the
// heartbeat (warm-up before the first line, spacing between lines) can be
// checked exactly and without waiting.
package sim

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ardnew/picobeat/board"
	"github.com/ardnew/picobeat/pkg"
)

// Epoch is the wall-clock instant that virtual time zero maps to.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Record is one console write.
type Record struct {
	At   time.Duration // Virtual time of the write
	Data []byte
}

// Line is one newline-terminated console line.
type Line struct {
	At   time.Duration // Virtual time of the write that completed the line
	Text string        // Line text without the trailing newline
}

// SleepHook is called after every Sleep with the 1-based call number and the
// virtual time after the sleep. Tests use it to cancel the emitter.
type SleepHook func(call int, now time.Duration)

// Option configures a Board.
type Option func(*Board)

// WithInitError makes Init fail with err.
func WithInitError(err error) Option {
	return func(b *Board) { b.initErr = err }
}

// WithWriteError makes every console write fail with err.
func WithWriteError(err error) Option {
	return func(b *Board) { b.writeErr = err }
}

// WithSleepHook installs a hook run after each Sleep.
func WithSleepHook(hook SleepHook) Option {
	return func(b *Board) { b.hook = hook }
}

// Board is a simulated board.
type Board struct {
	mutex    sync.Mutex
	now      time.Duration
	initDone bool
	initErr  error
	writeErr error
	hook     SleepHook
	sleeps   []time.Duration
	records  []Record
}

// New creates a simulated board at virtual time zero.
func New(opts ...Option) *Board {
	b := &Board{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Init marks the console ready, or returns the injected init error.
func (b *Board) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.initDone {
		return pkg.ErrAlreadyInitialized
	}
	if b.initErr != nil {
		return b.initErr
	}
	b.initDone = true
	return nil
}

// Sleep advances the virtual clock by d.
// The context is checked both before and after the hook runs.
func (b *Board) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mutex.Lock()
	if d > 0 {
		b.now += d
	}
	b.sleeps = append(b.sleeps, d)
	call, now, hook := len(b.sleeps), b.now, b.hook
	b.mutex.Unlock()

	if hook != nil {
		hook(call, now)
	}
	return ctx.Err()
}

// Console returns the recording writer. Writes before Init are dropped.
func (b *Board) Console() io.Writer {
	return console{b}
}

// Now returns Epoch plus the virtual time.
func (b *Board) Now() time.Time {
	return Epoch.Add(b.Elapsed())
}

// Elapsed returns the virtual time since the board was created.
func (b *Board) Elapsed() time.Duration {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.now
}

// Sleeps returns the durations passed to Sleep, in call order.
func (b *Board) Sleeps() []time.Duration {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return append([]time.Duration(nil), b.sleeps...)
}

// Records returns a copy of every recorded console write.
func (b *Board) Records() []Record {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	out := make([]Record, len(b.records))
	for i, r := range b.records {
		out[i] = Record{At: r.At, Data: append([]byte(nil), r.Data...)}
	}
	return out
}

// Output returns everything written to the console.
func (b *Board) Output() string {
	var sb strings.Builder
	for _, r := range b.Records() {
		sb.Write(r.Data)
	}
	return sb.String()
}

// Lines splits the console output into lines. A trailing partial line is
// not returned.
func (b *Board) Lines() []Line {
	var (
		lines []Line
		buf   bytes.Buffer
	)
	for _, r := range b.Records() {
		data := r.Data
		for len(data) > 0 {
			i := bytes.IndexByte(data, '\n')
			if i < 0 {
				buf.Write(data)
				break
			}
			buf.Write(data[:i])
			lines = append(lines, Line{At: r.At, Text: buf.String()})
			buf.Reset()
			data = data[i+1:]
		}
	}
	return lines
}

// console records writes against the board's virtual clock.
type console struct {
	b *Board
}

func (c console) Write(p []byte) (int, error) {
	c.b.mutex.Lock()
	defer c.b.mutex.Unlock()
	if !c.b.initDone {
		return len(p), nil
	}
	if c.b.writeErr != nil {
		return 0, c.b.writeErr
	}
	c.b.records = append(c.b.records, Record{At: c.b.now, Data: append([]byte(nil), p...)})
	return len(p), nil
}

// Compile-time interface checks
var (
	_ board.HAL   = (*Board)(nil)
	_ board.Clock = (*Board)(nil)
)
