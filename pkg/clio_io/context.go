// pkg/clio_io/context.go

package clio_io

import (
	"context"
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_err"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type RuntimeContext struct {
	Ctx        context.Context
	Log        *zap.Logger
	Timestamp  time.Time
	Span       trace.Span
	Command    string
	Component  string
	Attributes map[string]string
}

// NewContext sets up tracing and a logger scoped to the calling component.
func NewContext(parent context.Context, cmdName string) *RuntimeContext {
	ctx, span := telemetry.Start(parent, cmdName)
	traceID := span.SpanContext().TraceID().String()
	if !span.SpanContext().HasTraceID() {
		traceID = logger.GenerateTraceID()
	}

	comp, _ := resolveCallContext(2)
	log := zap.L().With(
		zap.String("component", comp),
		zap.String("command", cmdName),
		zap.String("trace_id", traceID),
	).Named(comp)

	return &RuntimeContext{
		Ctx:        ctx,
		Span:       span,
		Log:        log,
		Timestamp:  time.Now(),
		Component:  comp,
		Command:    cmdName,
		Attributes: make(map[string]string),
	}
}

// HandlePanic recovers panics, logs them, and converts to an error.
func (rc *RuntimeContext) HandlePanic(errPtr *error) {
	if r := recover(); r != nil {
		*errPtr = cerr.AssertionFailedf("panic: %v", r)
		rc.Log.Error("panic recovered", zap.Any("panic", r))
	}
}

// End logs outcome, annotates the span with key attributes, and flushes.
func (rc *RuntimeContext) End(errPtr *error) {
	defer rc.Span.End()

	var err error
	if errPtr != nil {
		err = *errPtr
	}
	duration := time.Since(rc.Timestamp)

	switch {
	case err == nil:
		rc.Log.Debug("Command completed", zap.Duration("duration", duration))
	case clio_err.IsExpectedUserError(err):
		rc.Log.Warn("Command ended with user error", zap.Duration("duration", duration), zap.Error(err))
	default:
		rc.Log.Error("Command failed", zap.Duration("duration", duration), zap.Error(err))
	}

	attrs := []attribute.KeyValue{
		attribute.Bool("success", err == nil),
		attribute.Int64("duration_ms", duration.Milliseconds()),
		attribute.String("os", runtime.GOOS),
		attribute.String("version", shared.Version),
		attribute.String("error_type", classifyError(err)),
	}
	for k, v := range rc.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	rc.Span.SetAttributes(attrs...)
	if err != nil {
		rc.Span.RecordError(err)
		rc.Span.SetStatus(codes.Error, err.Error())
	}

	shared.SafeSync()
}

// LogRuntimeExecutionContext records who is writing, which matters on shared log roots.
func LogRuntimeExecutionContext(rc *RuntimeContext) {
	if u, err := user.Current(); err != nil {
		rc.Log.Debug("Failed to get current user", zap.Error(err))
	} else {
		rc.Log.Debug("User context",
			zap.String("username", u.Username),
			zap.String("uid", u.Uid),
			zap.String("gid", u.Gid),
			zap.Int("pid", os.Getpid()),
		)
	}
	if exe, err := os.Executable(); err == nil {
		rc.Log.Debug("Executing binary", zap.String("path", exe))
	}
}

func resolveCallContext(skip int) (component, action string) {
	pc, file, _, ok := runtime.Caller(skip)
	if !ok {
		return "unknown", "unknown"
	}
	parts := strings.Split(file, "/")
	if len(parts) >= 2 {
		component = parts[len(parts)-2]
	} else {
		component = strings.TrimSuffix(parts[0], ".go")
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		fields := strings.Split(fn.Name(), ".")
		action = fields[len(fields)-1]
	} else {
		action = "unknown"
	}
	return component, action
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if clio_err.IsExpectedUserError(err) {
		return "user"
	}
	return clio_err.CategoryOf(err).String()
}
