// pkg/clio_err/wrap.go

package clio_err

import (
	cerr "github.com/cockroachdb/errors"
)

// WrapFilesystemError attaches a stack and a hint pointing at the filesystem
// holding path. Used for lock failures, which usually mean the filesystem
// does not support advisory locks.
func WrapFilesystemError(err error, path string) error {
	return cerr.WithHintf(cerr.WithStack(err), "check that %s is on a writable, lock-capable filesystem", path)
}
