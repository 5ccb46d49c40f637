//go:build windows

// pkg/flock/flock_windows.go

package flock

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

// Whole-file range for LockFileEx.
const (
	rangeLow  = ^uint32(0)
	rangeHigh = ^uint32(0)
)

// Lock blocks until an exclusive LockFileEx lock on f is held.
func Lock(f *os.File) error {
	return lockFileEx(f, windows.LOCKFILE_EXCLUSIVE_LOCK)
}

// Unlock releases a lock taken with Lock.
func Unlock(f *os.File) error {
	ol := new(windows.Overlapped)
	if err := windows.UnlockFileEx(windows.Handle(f.Fd()), 0, rangeLow, rangeHigh, ol); err != nil {
		return &os.PathError{Op: "UnlockFileEx", Path: f.Name(), Err: err}
	}
	return nil
}

// TryLock takes the exclusive lock without blocking and reports whether it
// was acquired.
func TryLock(f *os.File) (bool, error) {
	err := lockFileEx(f, windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return false, nil
	}
	return false, err
}

func lockFileEx(f *os.File, flags uint32) error {
	ol := new(windows.Overlapped)
	if err := windows.LockFileEx(windows.Handle(f.Fd()), flags, 0, rangeLow, rangeHigh, ol); err != nil {
		return &os.PathError{Op: "LockFileEx", Path: f.Name(), Err: err}
	}
	return nil
}
