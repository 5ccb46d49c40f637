// pkg/logreader/list.go

package logreader

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_err"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/logpaths"
	cerr "github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Entry describes one entity log under a root.
type Entry struct {
	Kind    string    `yaml:"kind"`
	Name    string    `yaml:"name"`
	Path    string    `yaml:"path"`
	Size    int64     `yaml:"size"`
	ModTime time.Time `yaml:"modified"`
}

// List walks root and returns every entity log under it, sorted by path.
// Files that do not map back to an entity are skipped. A missing root
// yields no entries.
func List(root string) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() || filepath.Ext(path) != logpaths.LogExt {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		kind, name, err := logpaths.ParseRelPath(rel)
		if err != nil {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		entries = append(entries, Entry{
			Kind:    kind.String(),
			Name:    name,
			Path:    filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, clio_err.ClassifyError(cerr.Wrapf(err, "failed to list logs under %s", root), "list logs")
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// MarshalYAML renders entries as a YAML document.
func MarshalYAML(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	out, err := yaml.Marshal(map[string][]Entry{"logs": entries})
	if err != nil {
		return nil, cerr.Wrap(err, "failed to encode log list")
	}
	return out, nil
}
