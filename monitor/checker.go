package monitor

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardnew/picobeat/heartbeat"
	"github.com/ardnew/picobeat/pkg"
)

// DefaultJitter is the scheduling slack allowed on every timing check.
const DefaultJitter = 50 * time.Millisecond

// Options tune the checks.
type Options struct {
	// Jitter is subtracted from every lower bound before comparing.
	Jitter time.Duration

	// Start is when the board was initialized. The warm-up check is
	// skipped when it is zero.
	Start time.Time

	// LateAttach accepts a stream that is already running: the first
	// counter may be anything, the banner may be missing, and interval
	// checks begin once a full interval has been seen (backlog drained).
	LateAttach bool
}

// Violation is a protocol or timing property that did not hold.
type Violation struct {
	Err         error // One of the pkg line protocol sentinels
	Detail      string
	Observation Observation
}

// Error implements error.
func (v *Violation) Error() string {
	if v.Detail == "" {
		return fmt.Sprintf("line %d %q: %v", v.Observation.Index, v.Observation.Line, v.Err)
	}
	return fmt.Sprintf("line %d %q: %v: %s", v.Observation.Index, v.Observation.Line, v.Err, v.Detail)
}

// Unwrap returns the sentinel.
func (v *Violation) Unwrap() error {
	return v.Err
}

// Kind returns a short, stable name for the violated property.
func (v *Violation) Kind() string {
	return violationKind(v.Err)
}

func violationKind(err error) string {
	switch {
	case errors.Is(err, pkg.ErrMalformedLine):
		return "malformed"
	case errors.Is(err, pkg.ErrCounterGap):
		return "counter-gap"
	case errors.Is(err, pkg.ErrCounterStart):
		return "counter-start"
	case errors.Is(err, pkg.ErrIntervalTooShort):
		return "interval"
	case errors.Is(err, pkg.ErrWarmUpTooShort):
		return "warm-up"
	case errors.Is(err, pkg.ErrBannerMissing):
		return "banner-missing"
	case errors.Is(err, pkg.ErrBannerRepeated):
		return "banner-repeated"
	case errors.Is(err, pkg.ErrHeartbeatLost):
		return "lost"
	case errors.Is(err, pkg.ErrTrailerEarly):
		return "trailer-early"
	case errors.Is(err, pkg.ErrTickLimit):
		return "tick-limit"
	case errors.Is(err, pkg.ErrTickAfterTrailer):
		return "after-trailer"
	default:
		return "other"
	}
}

// Report summarizes a checked stream.
type Report struct {
	Variant      string
	Lines        int
	Banners      int
	Ticks        uint64
	FirstCounter int64
	LastCounter  int64
	MinInterval  time.Duration
	MaxInterval  time.Duration
	Finished     bool // Trailer seen
	Violations   int
}

// OK reports whether no property was violated.
func (r Report) OK() bool {
	return r.Violations == 0
}

// Checker verifies the heartbeat properties over a sequence of
// observations. It is not safe for concurrent use.
type Checker struct {
	variant heartbeat.Variant
	opts    Options

	report  Report
	banners int // Banner lines seen in order
	lastAt  time.Time
	synced  bool
}

// NewChecker returns a checker for v.
func NewChecker(v heartbeat.Variant, opts Options) *Checker {
	if opts.Jitter < 0 {
		opts.Jitter = 0
	}
	return &Checker{
		variant: v,
		opts:    opts,
		report:  Report{Variant: v.Name},
		synced:  !opts.LateAttach,
	}
}

// Observe checks o against everything seen so far and returns the
// violated properties, if any.
func (c *Checker) Observe(o Observation) []*Violation {
	c.report.Lines++

	var out []*Violation
	fail := func(err error, format string, args ...any) {
		out = append(out, &Violation{Err: err, Detail: fmt.Sprintf(format, args...), Observation: o})
	}

	switch o.Kind {
	case KindBanner:
		c.report.Banners++
		if c.report.Ticks > 0 || c.banners >= len(c.variant.Banner) {
			fail(pkg.ErrBannerRepeated, "banner seen %d times", c.report.Banners)
		} else if c.variant.Banner[c.banners] == o.Line {
			c.banners++
		}

	case KindTrailer:
		c.observeTrailer(fail)
		c.report.Finished = true

	case KindTick:
		c.observeTick(o, fail)
	}

	c.report.Violations += len(out)
	return out
}

// observeTrailer checks that a limited variant wrote all of its ticks
// before the trailer. The counter of a limited run equals its tick number,
// so a late-attached stream is judged by its last counter.
func (c *Checker) observeTrailer(fail func(error, string, ...any)) {
	v := c.variant
	if v.Forever() || c.report.Finished {
		return
	}
	if c.report.Ticks == 0 {
		if !c.opts.LateAttach {
			fail(pkg.ErrTrailerEarly, "no ticks of %d before trailer", v.Limit)
		}
		return
	}
	if last := c.report.LastCounter; last+1 < int64(v.Limit) {
		fail(pkg.ErrTrailerEarly, "last tick %d of %d before trailer", last, v.Limit)
	}
}

func (c *Checker) observeTick(o Observation, fail func(error, string, ...any)) {
	v := c.variant
	first := c.report.Ticks == 0

	if c.report.Finished {
		fail(pkg.ErrTickAfterTrailer, "tick %d after trailer", o.Counter)
	} else if !v.Forever() && o.Counter >= int64(v.Limit) {
		fail(pkg.ErrTickLimit, "tick %d, limit %d", o.Counter, v.Limit)
	}

	if first {
		c.report.FirstCounter = o.Counter
		if !c.opts.LateAttach {
			if o.Counter != 0 {
				fail(pkg.ErrCounterStart, "first counter %d", o.Counter)
			}
			if c.banners < len(v.Banner) {
				fail(pkg.ErrBannerMissing, "%d of %d banner lines before first tick", c.banners, len(v.Banner))
			}
			if !c.opts.Start.IsZero() {
				if wait := o.At.Sub(c.opts.Start); wait < v.WarmUp-c.opts.Jitter {
					fail(pkg.ErrWarmUpTooShort, "first tick %v after start, want >= %v", wait, v.WarmUp)
				}
			}
		}
	} else {
		if want := v.Width.Successor(c.report.LastCounter); o.Counter != want {
			fail(pkg.ErrCounterGap, "got %d, want %d", o.Counter, want)
		}

		dt := o.At.Sub(c.lastAt)
		floor := v.Interval - c.opts.Jitter
		if !c.synced && dt >= floor {
			c.synced = true
		} else if c.synced && dt < floor {
			fail(pkg.ErrIntervalTooShort, "%v since previous tick, want >= %v", dt, v.Interval)
		}

		if c.report.MinInterval == 0 || dt < c.report.MinInterval {
			c.report.MinInterval = dt
		}
		if dt > c.report.MaxInterval {
			c.report.MaxInterval = dt
		}
	}

	c.report.Ticks++
	c.report.LastCounter = o.Counter
	c.lastAt = o.At
}

// Malformed records a line the parser rejected.
func (c *Checker) Malformed(o Observation, err error) *Violation {
	c.report.Lines++
	c.report.Violations++
	return &Violation{Err: err, Observation: o}
}

// Lost records that no tick arrived for silence.
func (c *Checker) Lost(at time.Time, silence time.Duration) *Violation {
	c.report.Violations++
	return &Violation{
		Err:         pkg.ErrHeartbeatLost,
		Detail:      fmt.Sprintf("no tick for %v", silence),
		Observation: Observation{Index: c.report.Lines, At: at},
	}
}

// Report returns the summary so far.
func (c *Checker) Report() Report {
	return c.report
}
