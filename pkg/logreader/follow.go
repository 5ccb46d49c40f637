// pkg/logreader/follow.go

package logreader

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_err"
	cerr "github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Follow copies the log at path to w, then keeps copying whatever is appended
// until ctx is done. The directory is watched rather than the file so a log
// that does not exist yet is picked up once an appender creates it.
func Follow(ctx context.Context, path string, w io.Writer) error {
	logger := otelzap.Ctx(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return cerr.Wrap(err, "failed to start file watcher")
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		if os.IsNotExist(err) {
			return clio_err.NewExpectedError(cerr.Newf("no log directory at %s", dir))
		}
		return cerr.Wrapf(err, "failed to watch %s", dir)
	}

	// Watch first, then copy, so nothing appended in between is lost.
	offset, err := copyFrom(path, 0, w)
	if err != nil {
		return err
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			switch {
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
				if offset, err = copyFrom(path, offset, w); err != nil {
					return err
				}
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				logger.Debug("Followed log went away, waiting for it to reappear", zap.String("path", path))
				offset = 0
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error", zap.String("path", path), zap.Error(err))
		}
	}
}

// copyFrom writes the bytes of path past offset to w and returns the new offset.
// A missing file copies nothing; a file shorter than offset was replaced and
// is copied from the start.
func copyFrom(path string, offset int64, w io.Writer) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return offset, cerr.Wrapf(err, "failed to open log %s", path)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return offset, cerr.Wrapf(err, "failed to stat log %s", path)
	}
	if info.Size() < offset {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset, cerr.Wrapf(err, "failed to seek log %s", path)
	}
	n, err := io.Copy(w, f)
	offset += n
	if err != nil {
		return offset, cerr.Wrapf(err, "failed to copy log %s", path)
	}
	return offset, nil
}
