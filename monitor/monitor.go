package monitor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"github.com/ardnew/picobeat/heartbeat"
	"github.com/ardnew/picobeat/pkg"
)

// DefaultGrace is the extra silence tolerated beyond one interval before
// the heartbeat is reported lost.
const DefaultGrace = 2 * time.Second

// Config configures a Monitor.
type Config struct {
	Variant heartbeat.Variant
	Options Options

	// Grace extends the liveness window beyond one interval.
	// Zero selects DefaultGrace; negative disables the watchdog.
	Grace time.Duration

	// MaxTicks ends Run after that many ticks. Zero means no limit.
	MaxTicks uint64

	// Meter receives the monitor's instruments. Nil uses the global
	// OpenTelemetry meter provider.
	Meter metric.Meter

	// Callbacks run on the monitor goroutine.
	OnLine      func(Observation)
	OnViolation func(*Violation)
	OnLost      func(silence time.Duration)

	// Now is the clock used to timestamp lines. Nil uses time.Now.
	Now func() time.Time
}

// Monitor reads a heartbeat stream and checks it as it arrives.
type Monitor struct {
	cfg     Config
	parser  *Parser
	checker *Checker
	metrics *metrics
	logs    *rate.Limiter

	mutex      sync.Mutex
	index      int
	lastTickAt time.Time
	suppressed int
}

// New creates a monitor.
func New(cfg Config) (*Monitor, error) {
	if err := cfg.Variant.Validate(); err != nil {
		return nil, err
	}
	if cfg.Grace == 0 {
		cfg.Grace = DefaultGrace
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	m, err := newMetrics(cfg.Meter, cfg.Variant.Name)
	if err != nil {
		return nil, fmt.Errorf("create instruments: %w", err)
	}

	return &Monitor{
		cfg:     cfg,
		parser:  NewParser(cfg.Variant),
		checker: NewChecker(cfg.Variant, cfg.Options),
		metrics: m,
		// a burst of violations is logged, then one per second
		logs: rate.NewLimiter(rate.Every(time.Second), 5),
	}, nil
}

// Report returns the summary so far.
func (m *Monitor) Report() Report {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.checker.Report()
}

// ObserveLine feeds one line received at the given time.
func (m *Monitor) ObserveLine(ctx context.Context, line string, at time.Time) []*Violation {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	obs, err := m.parser.Parse(line)
	obs.Index = m.index
	obs.At = at
	m.index++

	var violations []*Violation
	if err != nil {
		violations = []*Violation{m.checker.Malformed(obs, err)}
	} else {
		prev := m.lastTickAt
		violations = m.checker.Observe(obs)
		if obs.Kind == KindTick {
			var since time.Duration
			if !prev.IsZero() {
				since = at.Sub(prev)
			}
			m.lastTickAt = at
			m.metrics.tick(ctx, since)
		}
	}

	if m.cfg.OnLine != nil {
		m.cfg.OnLine(obs)
	}
	for _, v := range violations {
		m.violation(ctx, v)
	}
	return violations
}

// violation logs, counts and forwards v. The caller holds the mutex.
func (m *Monitor) violation(ctx context.Context, v *Violation) {
	m.metrics.violation(ctx, v)
	if m.logs.Allow() {
		pkg.LogWarn(pkg.ComponentMonitor, "heartbeat violation",
			"variant", m.cfg.Variant.Name,
			"kind", v.Kind(),
			"error", v,
			"suppressed", m.suppressed)
		m.suppressed = 0
	} else {
		m.suppressed++
	}
	if m.cfg.OnViolation != nil {
		m.cfg.OnViolation(v)
	}
}

// checkLiveness reports a lost heartbeat once per silent period. Before
// the first tick the window is measured from started and includes the
// warm-up delay. Nothing is reported once the trailer has been seen.
func (m *Monitor) checkLiveness(ctx context.Context, started time.Time, lost *bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// a limited run that wrote its trailer is silent by design
	if m.checker.Report().Finished {
		return
	}

	ref := m.lastTickAt
	window := m.cfg.Variant.Interval + m.cfg.Grace
	if ref.IsZero() {
		ref = started
		if !m.cfg.Options.LateAttach {
			window += m.cfg.Variant.WarmUp
		}
	}

	now := m.cfg.Now()
	silence := now.Sub(ref)
	if silence <= window {
		*lost = false
		return
	}
	if *lost {
		return
	}
	*lost = true

	v := m.checker.Lost(now, silence)
	m.violation(ctx, v)
	if m.cfg.OnLost != nil {
		m.cfg.OnLost(silence)
	}
}

// Run reads lines from r until EOF, ctx ends or MaxTicks ticks arrive.
// EOF and the tick limit return a nil error; cancellation returns ctx.Err().
//
// Readers that do not honor ctx (such as os.Stdin) may leave one goroutine
// blocked in Read after Run returns.
func (m *Monitor) Run(ctx context.Context, r io.Reader) (Report, error) {
	type result struct {
		line string
		err  error
	}

	lines := make(chan result)
	done := make(chan struct{})
	defer close(done)

	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- result{line: scanner.Text()}:
			case <-done:
				return
			}
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		select {
		case lines <- result{err: err}:
		case <-done:
		}
	}()

	var watchdog <-chan time.Time
	if m.cfg.Grace > 0 {
		period := m.cfg.Variant.Interval / 4
		if period < 10*time.Millisecond {
			period = 10 * time.Millisecond
		}
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		watchdog = ticker.C
	}

	started := m.cfg.Now()
	lost := false
	pkg.LogInfo(pkg.ComponentMonitor, "monitoring heartbeat",
		"variant", m.cfg.Variant.Name,
		"lateAttach", m.cfg.Options.LateAttach)

	for {
		select {
		case <-ctx.Done():
			return m.Report(), ctx.Err()

		case <-watchdog:
			m.checkLiveness(ctx, started, &lost)

		case res := <-lines:
			if res.err != nil {
				report := m.Report()
				if res.err == io.EOF {
					pkg.LogInfo(pkg.ComponentMonitor, "stream ended",
						"ticks", report.Ticks,
						"violations", report.Violations)
					return report, nil
				}
				return report, fmt.Errorf("read heartbeat stream: %w", res.err)
			}

			m.ObserveLine(ctx, res.line, m.cfg.Now())
			if m.cfg.MaxTicks > 0 && m.Report().Ticks >= m.cfg.MaxTicks {
				return m.Report(), nil
			}
		}
	}
}
