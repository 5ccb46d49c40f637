// pkg/logreader/reader.go

package logreader

import (
	"bytes"
	"os"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_err"
	cerr "github.com/cockroachdb/errors"
)

// Read returns the whole log at path. A missing log is an expected user
// error: the entity may simply not have logged anything yet.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, clio_err.NewExpectedError(cerr.Newf("no log at %s", path))
		}
		return nil, clio_err.ClassifyError(err, "read log "+path)
	}
	return data, nil
}

// Tail returns the last n newline-terminated lines of the log at path, or the
// whole log when it holds fewer. n <= 0 returns everything.
func Tail(path string, n int) ([]byte, error) {
	data, err := Read(path)
	if err != nil || n <= 0 {
		return data, err
	}
	return lastLines(data, n), nil
}

func lastLines(data []byte, n int) []byte {
	end := len(data)
	// A trailing newline terminates the last line rather than starting a new one.
	search := end
	if search > 0 && data[search-1] == '\n' {
		search--
	}
	for i := 0; i < n; i++ {
		idx := bytes.LastIndexByte(data[:search], '\n')
		if idx < 0 {
			return data
		}
		if i == n-1 {
			return data[idx+1 : end]
		}
		search = idx
	}
	return data
}
