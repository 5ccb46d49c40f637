//go:build unix

// pkg/flock/flock_unix.go

package flock

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Lock blocks until an exclusive flock(2) lock on f is held.
// There is no timeout: a holder that stalls stalls every other appender.
func Lock(f *os.File) error {
	return flock(f, unix.LOCK_EX)
}

// Unlock releases a lock taken with Lock.
func Unlock(f *os.File) error {
	return flock(f, unix.LOCK_UN)
}

// TryLock takes the exclusive lock without blocking and reports whether it
// was acquired.
func TryLock(f *os.File) (bool, error) {
	err := flock(f, unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
		return false, nil
	}
	return false, err
}

func flock(f *os.File, how int) error {
	for {
		err := unix.Flock(int(f.Fd()), how)
		if err == nil {
			return nil
		}
		// Signals delivered while blocked interrupt the syscall.
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return &os.PathError{Op: "flock", Path: f.Name(), Err: err}
	}
}
