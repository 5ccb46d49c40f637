// pkg/logpaths/kind.go

package logpaths

import (
	"fmt"
	"strings"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_err"
)

// Kind is the type of entity a log belongs to.
type Kind int

const (
	KindJob Kind = iota
	KindExperiment
	KindExperimentJob
)

var kindNames = map[Kind]string{
	KindJob:           "job",
	KindExperiment:    "experiment",
	KindExperimentJob: "experiment-job",
}

var kindDirs = map[Kind]string{
	KindJob:           "jobs",
	KindExperiment:    "experiments",
	KindExperimentJob: "experiment_jobs",
}

// Kinds lists every entity kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindJob, KindExperiment, KindExperimentJob}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Dir is the directory under a log root holding this kind's logs.
func (k Kind) Dir() string {
	return kindDirs[k]
}

func (k Kind) valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind accepts the CLI spelling of a kind ("job", "experiment",
// "experiment-job") as well as its directory name.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds() {
		if s == k.String() || s == k.Dir() || s == strings.ReplaceAll(k.String(), "-", "_") {
			return k, nil
		}
	}
	return 0, clio_err.NewValidationError(
		fmt.Sprintf("unknown entity kind %q", s),
		"Use one of: job, experiment, experiment-job",
	)
}
