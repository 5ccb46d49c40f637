// pkg/flock/flock.go
//
// Advisory, cooperative file locking for appenders sharing a log file.
// The lock is tied to the open file description: it only excludes other
// writers that take the same lock, in this process or any other, and is
// released automatically when the descriptor is closed or the process dies.

package flock

import (
	"os"

	cerr "github.com/cockroachdb/errors"
)

// ErrUnsupported is returned on platforms without an advisory lock primitive.
var ErrUnsupported = cerr.New("advisory file locking is not supported on this platform")

// WithLock takes an exclusive lock on f, runs fn and releases the lock.
// The lock is released even when fn fails or panics; an error from fn takes
// precedence over an unlock error.
func WithLock(f *os.File, fn func() error) error {
	return WithLockNotify(f, nil, fn)
}

// WithLockNotify is WithLock, calling contended once before blocking when
// another holder has the lock.
func WithLockNotify(f *os.File, contended func(), fn func() error) (err error) {
	if err := lockNotify(f, contended); err != nil {
		return err
	}
	defer func() {
		if uerr := Unlock(f); uerr != nil && err == nil {
			err = uerr
		}
	}()
	return fn()
}

func lockNotify(f *os.File, contended func()) error {
	if contended == nil {
		return Lock(f)
	}
	ok, err := TryLock(f)
	switch {
	case err != nil:
		return err
	case ok:
		return nil
	}
	contended()
	return Lock(f)
}
