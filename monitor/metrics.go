package monitor

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// instrumentationName is the meter name used when none is supplied.
const instrumentationName = "github.com/ardnew/picobeat/monitor"

// metrics records what the monitor sees as OpenTelemetry instruments.
type metrics struct {
	ticks      metric.Int64Counter
	violations metric.Int64Counter
	interval   metric.Float64Histogram
	variant    attribute.KeyValue
}

func newMetrics(meter metric.Meter, variant string) (*metrics, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}

	ticks, err := meter.Int64Counter("picobeat.ticks",
		metric.WithDescription("Number of heartbeat ticks received"),
	)
	if err != nil {
		return nil, err
	}

	violations, err := meter.Int64Counter("picobeat.violations",
		metric.WithDescription("Number of heartbeat property violations"),
	)
	if err != nil {
		return nil, err
	}

	interval, err := meter.Float64Histogram("picobeat.interval",
		metric.WithDescription("Time between consecutive ticks in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{
		ticks:      ticks,
		violations: violations,
		interval:   interval,
		variant:    attribute.String("variant", variant),
	}, nil
}

func (m *metrics) tick(ctx context.Context, since time.Duration) {
	attrs := metric.WithAttributes(m.variant)
	m.ticks.Add(ctx, 1, attrs)
	if since > 0 {
		m.interval.Record(ctx, since.Seconds(), attrs)
	}
}

func (m *metrics) violation(ctx context.Context, v *Violation) {
	m.violations.Add(ctx, 1, metric.WithAttributes(
		m.variant,
		attribute.String("kind", v.Kind()),
	))
}
