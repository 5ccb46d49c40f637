// pkg/telemetry/telemetry.go

package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	mu       sync.Mutex
	tracer   trace.Tracer = noop.NewTracerProvider().Tracer("clio")
	shutdown              = func(context.Context) error { return nil }
)

// Init configures OpenTelemetry; call this early in main().
// When enabled, spans are appended as JSON lines to dir/telemetry.jsonl.
func Init(service string, enabled bool, dir string) error {
	mu.Lock()
	defer mu.Unlock()

	// A repeated Init replaces the provider; flush the old one first.
	_ = shutdown(context.Background())
	shutdown = func(context.Context) error { return nil }

	if !enabled {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		tracer = tp.Tracer(service)
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return cerr.Wrap(err, "failed to create telemetry directory")
	}

	file, err := os.OpenFile(filepath.Join(dir, "telemetry.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return cerr.Wrap(err, "failed to open telemetry file")
	}

	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(file),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		_ = file.Close()
		return cerr.Wrap(err, "failed to create file exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(
			sdkresource.NewWithAttributes(
				semconv.SchemaURL,
				attribute.String("service.name", service),
				attribute.String("host.name", hostname()),
			),
		),
	)

	otel.SetTracerProvider(tp)
	tracer = tp.Tracer(service)
	shutdown = func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if cerrClose := file.Close(); err == nil {
			err = cerrClose
		}
		return err
	}
	return nil
}

// Start a telemetry span with optional attributes.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	mu.Lock()
	t := tracer
	mu.Unlock()
	return t.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Shutdown flushes pending spans and closes the exporter file.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	fn := shutdown
	shutdown = func(context.Context) error { return nil }
	mu.Unlock()
	return fn(ctx)
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
