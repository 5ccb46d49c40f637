//go:build !unix && !windows

// pkg/flock/flock_other.go

package flock

import "os"

func Lock(f *os.File) error {
	return &os.PathError{Op: "lock", Path: f.Name(), Err: ErrUnsupported}
}

func Unlock(f *os.File) error {
	return &os.PathError{Op: "unlock", Path: f.Name(), Err: ErrUnsupported}
}

func TryLock(f *os.File) (bool, error) {
	return false, &os.PathError{Op: "lock", Path: f.Name(), Err: ErrUnsupported}
}
