// pkg/logger/logger.go

package logger

import (
	"strings"
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log *zap.Logger
)

// L returns the process logger, building a console fallback on first use.
func L() *zap.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l != nil {
		return l
	}

	fallback := NewFallbackLogger()
	SetLogger(fallback)
	return fallback
}

// SetLogger installs l as the package logger and as the global logger of
// both zap and otelzap, so otelzap.Ctx(ctx) in library code reaches it.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
	zap.ReplaceGlobals(l)
	otelzap.ReplaceGlobals(otelzap.New(l))
}

// Sync flushes any buffered log entries. Should be called before the application exits.
func Sync() error {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l == nil {
		return nil
	}
	if err := l.Sync(); err != nil && !isIgnorableSyncErr(err) {
		return err
	}
	return nil
}

// ParseLogLevel maps CLIO_LOG_LEVEL values onto zap levels; unknown values mean Info.
func ParseLogLevel(level string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE", "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "FATAL":
		return zapcore.FatalLevel
	case "DPANIC":
		return zapcore.DPanicLevel
	default:
		return zapcore.InfoLevel
	}
}

// stdout and stderr are not syncable on linux terminals.
func isIgnorableSyncErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}
