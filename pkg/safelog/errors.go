// pkg/safelog/errors.go

package safelog

import (
	"errors"
	"io/fs"
	"syscall"

	cerr "github.com/cockroachdb/errors"
)

// Failure marks attached to returned errors. Match them with
// github.com/cockroachdb/errors.Is.
var (
	// ErrPathMissing marks an open that failed because the log's directory
	// does not exist. It is only returned when the retried append hits it again.
	ErrPathMissing = cerr.New("log path does not exist")

	// ErrPersistentIO marks every filesystem failure an append returns.
	ErrPersistentIO = cerr.New("log append failed")

	// ErrLinesWritten marks an ErrPersistentIO failure that happened after
	// the write succeeded, when unlocking or closing the log.
	ErrLinesWritten = cerr.New("log lines already written")
)

// isPathMissing reports whether an open error means a missing parent
// directory, as opposed to permissions or a failing disk.
func isPathMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

func persistent(err error, format string, args ...interface{}) error {
	return cerr.Mark(cerr.Wrapf(err, format, args...), ErrPersistentIO)
}

func persistentAfterWrite(err error, format string, args ...interface{}) error {
	return cerr.Mark(persistent(err, format, args...), ErrLinesWritten)
}

// IsPathMissing reports whether err carries the ErrPathMissing mark.
func IsPathMissing(err error) bool {
	return cerr.Is(err, ErrPathMissing)
}

// IsPersistentIO reports whether err carries the ErrPersistentIO mark.
func IsPersistentIO(err error) bool {
	return cerr.Is(err, ErrPersistentIO)
}

// IsLinesWritten reports whether err carries the ErrLinesWritten mark.
func IsLinesWritten(err error) bool {
	return cerr.Is(err, ErrLinesWritten)
}
