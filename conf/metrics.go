package conf

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records lookup and refresh activity.
//
// Contract:
// - Implementations must be safe for concurrent use and must not panic.
// - Keys are deliberately not recorded as attributes; the key space is
//   unbounded.
type Metrics interface {
	// RecordLookup records one typed lookup with its duration and outcome.
	RecordLookup(ctx context.Context, duration time.Duration, err error)

	// RecordRefresh records one refresh pass.
	RecordRefresh(ctx context.Context, changed bool, err error)
}

type metricsImpl struct {
	lookupCount   metric.Int64Counter
	lookupErrors  metric.Int64Counter
	lookupLatency metric.Float64Histogram
	refreshCount  metric.Int64Counter
}

// NewMetrics creates a Metrics implementation on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	lookupCount, err := meter.Int64Counter(
		"conf.lookup.total",
		metric.WithDescription("Total number of configuration lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	lookupErrors, err := meter.Int64Counter(
		"conf.lookup.errors",
		metric.WithDescription("Total number of failed configuration lookups"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	lookupLatency, err := meter.Float64Histogram(
		"conf.lookup.duration_ms",
		metric.WithDescription("Configuration lookup duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	refreshCount, err := meter.Int64Counter(
		"conf.refresh.total",
		metric.WithDescription("Total number of refresh passes"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		lookupCount:   lookupCount,
		lookupErrors:  lookupErrors,
		lookupLatency: lookupLatency,
		refreshCount:  refreshCount,
	}, nil
}

func (m *metricsImpl) RecordLookup(ctx context.Context, duration time.Duration, err error) {
	m.lookupCount.Add(ctx, 1)
	if err != nil {
		m.lookupErrors.Add(ctx, 1)
	}
	m.lookupLatency.Record(ctx, float64(duration)/float64(time.Millisecond))
}

func (m *metricsImpl) RecordRefresh(ctx context.Context, changed bool, err error) {
	m.refreshCount.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("changed", changed),
		attribute.Bool("error", err != nil),
	))
}

// nopMetrics is the default Metrics implementation.
type nopMetrics struct{}

func (nopMetrics) RecordLookup(context.Context, time.Duration, error) {}
func (nopMetrics) RecordRefresh(context.Context, bool, error)        {}
