// pkg/logpaths/layout.go

package logpaths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_err"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/shared"
	cerr "github.com/cockroachdb/errors"
)

// LogExt is the extension of every entity log file.
const LogExt = ".log"

// Layout maps entity names onto log files under a permanent and a temp root:
//
//	<LogsRoot>/<kind dir>/<seg1>/.../<segN>.log
//	<TempLogsRoot>/<kind dir>/<seg1>/.../<segN>.log
//
// where seg1..segN are the dot separated parts of the entity name.
type Layout struct {
	LogsRoot     string
	TempLogsRoot string
	DirPerm      os.FileMode
}

// NewLayout returns a Layout with the default directory permissions.
func NewLayout(logsRoot, tempLogsRoot string) Layout {
	return Layout{
		LogsRoot:     logsRoot,
		TempLogsRoot: tempLogsRoot,
		DirPerm:      shared.LogDirPerm,
	}
}

// Default returns the layout rooted at the compiled-in defaults.
func Default() Layout {
	return NewLayout(shared.DefaultLogsRoot, shared.DefaultTempLogsRoot)
}

// Root returns the temp or permanent root.
func (l Layout) Root(temp bool) string {
	if temp {
		return l.TempLogsRoot
	}
	return l.LogsRoot
}

// Resolve maps (kind, name, temp) to a log file path. It never touches the filesystem.
func (l Layout) Resolve(kind Kind, name string, temp bool) (string, error) {
	if !kind.valid() {
		return "", clio_err.NewInternalError(fmt.Sprintf("unknown entity kind %d", int(kind)), nil)
	}
	segments, err := SplitName(name)
	if err != nil {
		return "", err
	}
	root := l.Root(temp)
	if root == "" {
		return "", clio_err.NewValidationError(
			fmt.Sprintf("no log root configured for %s logs (temp=%t)", kind, temp),
			"Set logs_root and temp_logs_root in the configuration",
		)
	}

	last := len(segments) - 1
	parts := make([]string, 0, len(segments)+2)
	parts = append(parts, root, kind.Dir())
	parts = append(parts, segments[:last]...)
	parts = append(parts, segments[last]+LogExt)
	return filepath.Join(parts...), nil
}

// Create makes sure the parent directories of both the permanent and the
// temp log of an entity exist. It is idempotent and safe to call from
// racing processes. The log file itself is left to the appender.
func (l Layout) Create(kind Kind, name string) error {
	perm := l.DirPerm
	if perm == 0 {
		perm = shared.LogDirPerm
	}
	for _, temp := range []bool{false, true} {
		path, err := l.Resolve(kind, name, temp)
		if err != nil {
			return err
		}
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, perm); err != nil {
			return cerr.Wrapf(err, "failed to create %s log directory %s", kind, dir)
		}
	}
	return nil
}

func (l Layout) ResolveJobLogPath(name string, temp bool) (string, error) {
	return l.Resolve(KindJob, name, temp)
}

func (l Layout) CreateJobLogPath(name string) error {
	return l.Create(KindJob, name)
}

func (l Layout) ResolveExperimentLogPath(name string, temp bool) (string, error) {
	return l.Resolve(KindExperiment, name, temp)
}

func (l Layout) CreateExperimentLogPath(name string) error {
	return l.Create(KindExperiment, name)
}

func (l Layout) ResolveExperimentJobLogPath(name string, temp bool) (string, error) {
	return l.Resolve(KindExperimentJob, name, temp)
}

func (l Layout) CreateExperimentJobLogPath(name string) error {
	return l.Create(KindExperimentJob, name)
}

// Strategy binds the layout to one entity kind.
func (l Layout) Strategy(kind Kind) Strategy {
	return Strategy{layout: l, kind: kind}
}

// Strategy is a resolve/create pair for one entity kind.
type Strategy struct {
	layout Layout
	kind   Kind
}

func (s Strategy) Kind() Kind { return s.kind }

func (s Strategy) ResolvePath(name string, temp bool) (string, error) {
	return s.layout.Resolve(s.kind, name, temp)
}

func (s Strategy) CreatePath(name string) error {
	return s.layout.Create(s.kind, name)
}

// SplitName validates a dotted entity name and returns its segments.
func SplitName(name string) ([]string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, clio_err.NewValidationError("entity name must not be empty")
	}
	segments := strings.Split(name, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, clio_err.NewValidationError(
				fmt.Sprintf("entity name %q has an empty segment", name),
				"Names are dot separated, e.g. alice.mnist.jobs.42",
			)
		}
		if strings.ContainsAny(seg, `/\`) || strings.ContainsRune(seg, 0) {
			return nil, clio_err.NewValidationError(
				fmt.Sprintf("entity name %q contains a path separator", name),
			)
		}
	}
	return segments, nil
}

// ParseRelPath is the inverse of Resolve for a path relative to a log root.
func ParseRelPath(rel string) (Kind, string, error) {
	rel = filepath.ToSlash(filepath.Clean(rel))
	if !strings.HasSuffix(rel, LogExt) {
		return 0, "", cerr.Newf("%s is not a log file", rel)
	}
	parts := strings.Split(strings.TrimSuffix(rel, LogExt), "/")
	if len(parts) < 2 {
		return 0, "", cerr.Newf("%s is not under a kind directory", rel)
	}
	for _, k := range Kinds() {
		if parts[0] == k.Dir() {
			name := strings.Join(parts[1:], ".")
			if _, err := SplitName(name); err != nil {
				return 0, "", err
			}
			return k, name, nil
		}
	}
	return 0, "", cerr.Newf("%s is not under a kind directory", rel)
}
