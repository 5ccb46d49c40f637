// pkg/logger/writer.go

package logger

import (
	"os"
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// GetLogFileWriter opens path for appending, creating it and its directory
// with owner-only permissions.
func GetLogFileWriter(path string) (zapcore.WriteSyncer, error) {
	if err := os.MkdirAll(filepath.Dir(path), shared.InternalLogDirPerm); err != nil {
		return nil, cerr.Wrap(err, "failed to create log directory")
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, shared.InternalLogFilePerm)
	if err != nil {
		return nil, cerr.Wrap(err, "failed to open log file")
	}

	return zapcore.Lock(zapcore.AddSync(file)), nil
}

// FindWritableLogPath returns the first platform log path that can be opened for appending.
func FindWritableLogPath() (string, error) {
	for _, path := range PlatformLogPaths() {
		if err := probeWritable(path); err == nil {
			return path, nil
		}
	}
	return "", cerr.New("no writable log path found")
}

func probeWritable(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), shared.InternalLogDirPerm); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, shared.InternalLogFilePerm)
	if err != nil {
		return err
	}
	return f.Close()
}
