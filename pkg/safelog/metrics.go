// pkg/safelog/metrics.go

package safelog

import (
	"context"
	"sync"
	"time"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/logpaths"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

const meterName = "github.com/CodeMonkeyCybersecurity/clio/pkg/safelog"

// Outcomes recorded on clio_appends_total.
const (
	outcomeOK        = "ok"
	outcomeRecovered = "recovered"
	outcomeFailed    = "failed"
	outcomeInvalid   = "invalid"
)

// kindUnknown labels appends through a strategy that does not report its kind.
const kindUnknown = "unknown"

type kinded interface {
	Kind() logpaths.Kind
}

func strategyKind(strategy PathStrategy) string {
	if k, ok := strategy.(kinded); ok {
		return k.Kind().String()
	}
	return kindUnknown
}

type appendMetrics struct {
	appends  metric.Int64Counter
	retries  metric.Int64Counter
	duration metric.Float64Histogram
}

var (
	metricsOnce sync.Once
	metrics     *appendMetrics
)

// instruments returns the append instruments, built on first use from the
// global meter provider.
func instruments() *appendMetrics {
	metricsOnce.Do(func() {
		m, err := newAppendMetrics(otel.Meter(meterName))
		if err != nil {
			zap.L().Warn("Append metrics disabled", zap.Error(err))
			m, _ = newAppendMetrics(noop.NewMeterProvider().Meter(meterName))
		}
		metrics = m
	})
	return metrics
}

func newAppendMetrics(meter metric.Meter) (*appendMetrics, error) {
	appends, err := meter.Int64Counter("clio_appends_total",
		metric.WithDescription("Appends attempted, by entity kind and outcome"))
	if err != nil {
		return nil, cerr.Wrap(err, "failed to create appends counter")
	}
	retries, err := meter.Int64Counter("clio_append_path_creations_total",
		metric.WithDescription("Appends that found their log path missing and created it"))
	if err != nil {
		return nil, cerr.Wrap(err, "failed to create path creation counter")
	}
	duration, err := meter.Float64Histogram("clio_append_duration_seconds",
		metric.WithDescription("Time from path resolution to the end of the append, lock wait included"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, cerr.Wrap(err, "failed to create append duration histogram")
	}
	return &appendMetrics{appends: appends, retries: retries, duration: duration}, nil
}

func (m *appendMetrics) record(ctx context.Context, kind string, temp bool, outcome string, start time.Time) {
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
		attribute.Bool("temp", temp),
	)
	m.appends.Add(ctx, 1, attrs)
	m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
}

func (m *appendMetrics) pathCreated(ctx context.Context, kind string, temp bool) {
	m.retries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("temp", temp),
	))
}
