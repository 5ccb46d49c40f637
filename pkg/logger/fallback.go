/* pkg/logger/fallback.go */

package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewFallbackLogger logs to stderr at the level named by CLIO_LOG_LEVEL.
func NewFallbackLogger() *zap.Logger {
	return newConsoleLogger(ParseLogLevel(os.Getenv("CLIO_LOG_LEVEL")))
}

func newConsoleLogger(lvl zapcore.Level) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()),
		zapcore.Lock(os.Stderr),
		lvl,
	)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// InitializeWithFallback tees console output with a JSON file log at path,
// or at the first writable platform path when path is empty. It logs to the
// console only when no file can be opened.
func InitializeWithFallback(level, path string) {
	lvl := ParseLogLevel(level)

	if path == "" {
		found, err := FindWritableLogPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, "No writable log path found. Logging to console only.")
			SetLogger(newConsoleLogger(lvl))
			return
		}
		path = found
	}

	writer, err := GetLogFileWriter(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Could not write to log file, logging to console only:", err)
		SetLogger(newConsoleLogger(lvl))
		return
	}

	jsonCfg := zap.NewProductionEncoderConfig()
	jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()), zapcore.Lock(os.Stderr), lvl),
		zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), writer, zapcore.DebugLevel),
	)

	l := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	SetLogger(l)
	l.Debug("Logger initialized",
		zap.String("log_level", lvl.String()),
		zap.String("log_path", path),
	)
}

func DefaultConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "T"
	cfg.LevelKey = "L"
	cfg.NameKey = "N"
	cfg.CallerKey = "C"
	cfg.MessageKey = "M"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}
