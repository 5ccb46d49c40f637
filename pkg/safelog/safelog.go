// pkg/safelog/safelog.go

package safelog

import (
	"context"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_err"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/flock"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/logpaths"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// PathStrategy resolves an entity's log path and creates its directories.
// CreatePath must be idempotent: racing retriers may call it concurrently.
type PathStrategy interface {
	ResolvePath(name string, temp bool) (string, error)
	CreatePath(name string) error
}

// StrategyFuncs adapts a pair of plain functions to PathStrategy.
type StrategyFuncs struct {
	Resolve func(name string, temp bool) (string, error)
	Create  func(name string) error
}

func (s StrategyFuncs) ResolvePath(name string, temp bool) (string, error) {
	return s.Resolve(name, temp)
}

func (s StrategyFuncs) CreatePath(name string) error {
	return s.Create(name)
}

// Target identifies the log an append goes to.
type Target struct {
	Name string
	Temp bool
}

// Logger appends to entity logs laid out by a logpaths.Layout.
type Logger struct {
	layout   logpaths.Layout
	filePerm os.FileMode
	metrics  *appendMetrics
}

// Option configures a Logger.
type Option func(*Logger)

// WithFilePerm sets the mode of log files created by an append.
func WithFilePerm(perm os.FileMode) Option {
	return func(l *Logger) {
		l.filePerm = perm
	}
}

// WithMeterProvider records append metrics on mp instead of the global
// meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(l *Logger) {
		m, err := newAppendMetrics(mp.Meter(meterName))
		if err != nil {
			zap.L().Warn("Append metrics fall back to the global meter provider", zap.Error(err))
			return
		}
		l.metrics = m
	}
}

// New returns a Logger for layout.
func New(layout logpaths.Layout, opts ...Option) *Logger {
	l := &Logger{
		layout:   layout,
		filePerm: shared.LogFilePerm,
		metrics:  instruments(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Layout returns the layout the logger resolves paths with.
func (l *Logger) Layout() logpaths.Layout {
	return l.layout
}

func (l *Logger) AppendJobLog(ctx context.Context, jobName, lines string, temp bool) error {
	return l.Append(ctx, l.layout.Strategy(logpaths.KindJob), jobName, lines, temp)
}

func (l *Logger) AppendExperimentLog(ctx context.Context, experimentName, lines string, temp bool) error {
	return l.Append(ctx, l.layout.Strategy(logpaths.KindExperiment), experimentName, lines, temp)
}

func (l *Logger) AppendExperimentJobLog(ctx context.Context, experimentJobName, lines string, temp bool) error {
	return l.Append(ctx, l.layout.Strategy(logpaths.KindExperimentJob), experimentJobName, lines, temp)
}

// AppendKind appends to the log of an entity of the given kind.
func (l *Logger) AppendKind(ctx context.Context, kind logpaths.Kind, target Target, lines string) error {
	return l.Append(ctx, l.layout.Strategy(kind), target.Name, lines, target.Temp)
}

// Append writes lines plus a single newline to the log strategy resolves for
// (name, temp). If the log's directory is missing, strategy.CreatePath is
// called and the append is retried once; a second failure is returned.
//
// An error marked ErrLinesWritten means the write succeeded and only the
// unlock or close after it failed: the lines are in the log, and appending
// them again duplicates them.
func (l *Logger) Append(ctx context.Context, strategy PathStrategy, name, lines string, temp bool) error {
	logger := otelzap.Ctx(ctx)
	start := time.Now()
	kind := strategyKind(strategy)
	record := func(outcome string) {
		l.metrics.record(ctx, kind, temp, outcome, start)
	}

	if strings.TrimSpace(name) == "" {
		record(outcomeInvalid)
		return clio_err.NewValidationError("entity name must not be empty")
	}

	path, err := strategy.ResolvePath(name, temp)
	if err != nil {
		record(outcomeInvalid)
		return cerr.Wrapf(err, "failed to resolve log path for %q", name)
	}

	err = l.appendOnce(ctx, path, lines)
	if err == nil {
		record(outcomeOK)
		logger.Debug("Appended to log",
			zap.String("entity", name),
			zap.String("path", path),
			zap.Bool("temp", temp),
			zap.Int("bytes", len(lines)+1))
		return nil
	}
	if !IsPathMissing(err) {
		record(outcomeFailed)
		logger.Error("Failed to append to log",
			zap.String("entity", name),
			zap.String("path", path),
			zap.Error(err))
		return err
	}

	logger.Warn("Log path missing, creating it and retrying once",
		zap.String("entity", name),
		zap.String("path", path))

	if err := strategy.CreatePath(name); err != nil {
		record(outcomeFailed)
		logger.Error("Failed to create log path",
			zap.String("entity", name),
			zap.String("path", path),
			zap.Error(err))
		return persistent(err, "failed to create log path for %q", name)
	}
	l.metrics.pathCreated(ctx, kind, temp)

	if err := l.appendOnce(ctx, path, lines); err != nil {
		record(outcomeFailed)
		logger.Error("Append failed after creating log path",
			zap.String("entity", name),
			zap.String("path", path),
			zap.Error(err))
		return err
	}

	record(outcomeRecovered)
	logger.Debug("Appended to log after creating its path",
		zap.String("entity", name),
		zap.String("path", path),
		zap.Bool("temp", temp))
	return nil
}

// appendOnce is one open, lock, write, unlock, close cycle. The file is
// closed on every path; a close error is reported only if nothing failed first.
func (l *Logger) appendOnce(ctx context.Context, path, lines string) (err error) {
	// No O_TRUNC: existing content is never touched. No MkdirAll: a missing
	// directory is the signal for the caller to run path creation.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, l.filePerm)
	if err != nil {
		wrapped := persistent(err, "failed to open log %s", path)
		if isPathMissing(err) {
			wrapped = cerr.Mark(wrapped, ErrPathMissing)
		}
		return wrapped
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = persistentAfterWrite(closeErr, "failed to close log %s", path)
		}
	}()

	block := make([]byte, 0, len(lines)+1)
	block = append(block, lines...)
	block = append(block, '\n')

	contended := func() {
		otelzap.Ctx(ctx).Debug("Log is locked by another writer, waiting", zap.String("path", path))
	}
	var locked, written bool
	err = flock.WithLockNotify(f, contended, func() error {
		locked = true
		if _, werr := f.Write(block); werr != nil {
			return werr
		}
		written = true
		return nil
	})
	return lockedWriteError(err, path, locked, written)
}

// lockedWriteError wraps the result of a locked write. A failure before the
// lock was taken gets the filesystem hint; one after a successful write is an
// unlock failure and is marked ErrLinesWritten.
func lockedWriteError(err error, path string, locked, written bool) error {
	switch {
	case err == nil:
		return nil
	case !locked:
		return persistent(clio_err.WrapFilesystemError(err, path), "failed to append to log %s", path)
	case written:
		return persistentAfterWrite(err, "failed to unlock log %s", path)
	default:
		return persistent(err, "failed to append to log %s", path)
	}
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(New(logpaths.Default()))
}

// Default returns the logger used by the package-level functions.
func Default() *Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the logger used by the package-level functions.
func SetDefault(l *Logger) {
	defaultLogger.Store(l)
}

// Append runs Logger.Append on the default logger.
func Append(ctx context.Context, strategy PathStrategy, name, lines string, temp bool) error {
	return Default().Append(ctx, strategy, name, lines, temp)
}

func AppendJobLog(ctx context.Context, jobName, lines string, temp bool) error {
	return Default().AppendJobLog(ctx, jobName, lines, temp)
}

func AppendExperimentLog(ctx context.Context, experimentName, lines string, temp bool) error {
	return Default().AppendExperimentLog(ctx, experimentName, lines, temp)
}

func AppendExperimentJobLog(ctx context.Context, experimentJobName, lines string, temp bool) error {
	return Default().AppendExperimentJobLog(ctx, experimentJobName, lines, temp)
}
