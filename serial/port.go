package serial

import (
	"io"
	"sync/atomic"

	"github.com/ardnew/picobeat/pkg"
)

// Stats counts what a Port has done.
type Stats struct {
	Lines   uint64 // Lines written in full
	Bytes   uint64 // Bytes accepted by the console
	Dropped uint64 // Lines that failed or were cut short
}

// Port writes newline-terminated lines to a console, fire-and-forget.
//
// A Port has a single writer. Stats may be read from any goroutine.
type Port struct {
	w      io.Writer
	coding LineCoding
	buf    []byte

	lines   atomic.Uint64
	bytes   atomic.Uint64
	dropped atomic.Uint64
}

// NewPort wraps w. A nil w discards everything.
func NewPort(w io.Writer, coding LineCoding) *Port {
	if w == nil {
		w = io.Discard
	}
	return &Port{w: w, coding: coding, buf: make([]byte, 0, 64)}
}

// WriteLine writes s followed by '\n' in a single Write call.
// Errors are counted and logged, never returned: output is unacknowledged.
func (p *Port) WriteLine(s string) {
	p.buf = append(p.buf[:0], s...)
	p.buf = append(p.buf, '\n')

	n, err := p.w.Write(p.buf)
	if n > 0 {
		p.bytes.Add(uint64(n))
	}
	if err != nil || n < len(p.buf) {
		dropped := p.dropped.Add(1)
		pkg.LogDebug(pkg.ComponentSerial, "line dropped",
			"line", s,
			"written", n,
			"dropped", dropped,
			"error", err)
		return
	}
	p.lines.Add(1)
}

// LineCoding returns the port's nominal line coding.
func (p *Port) LineCoding() LineCoding {
	return p.coding
}

// Stats returns a snapshot of the port's counters.
func (p *Port) Stats() Stats {
	return Stats{
		Lines:   p.lines.Load(),
		Bytes:   p.bytes.Load(),
		Dropped: p.dropped.Load(),
	}
}
