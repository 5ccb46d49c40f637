package logpaths

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_err"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout(t *testing.T) Layout {
	t.Helper()
	dir := t.TempDir()
	return NewLayout(filepath.Join(dir, "logs"), filepath.Join(dir, "tmp"))
}

func TestResolve(t *testing.T) {
	t.Parallel()
	l := NewLayout("/srv/logs", "/srv/tmp")

	tests := []struct {
		name   string
		kind   Kind
		entity string
		temp   bool
		want   string
	}{
		{"job permanent", KindJob, "alice.mnist.jobs.42", false, "/srv/logs/jobs/alice/mnist/jobs/42.log"},
		{"job temp", KindJob, "alice.mnist.jobs.42", true, "/srv/tmp/jobs/alice/mnist/jobs/42.log"},
		{"experiment", KindExperiment, "alice.mnist.7", false, "/srv/logs/experiments/alice/mnist/7.log"},
		{"experiment job", KindExperimentJob, "alice.mnist.7.3", true, "/srv/tmp/experiment_jobs/alice/mnist/7/3.log"},
		{"single segment", KindJob, "job-42", false, "/srv/logs/jobs/job-42.log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := l.Resolve(tt.kind, tt.entity, tt.temp)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestResolveIsPure(t *testing.T) {
	t.Parallel()
	l := testLayout(t)

	_, err := l.ResolveJobLogPath("job-42", false)
	require.NoError(t, err)

	_, err = os.Stat(l.LogsRoot)
	assert.True(t, os.IsNotExist(err), "resolving must not create anything")
}

func TestResolveRejectsBadNames(t *testing.T) {
	t.Parallel()
	l := NewLayout("/srv/logs", "/srv/tmp")

	for _, name := range []string{"", "   ", ".", "..", "a..b", ".a", "a.", "a/b", `a\b`, "../../etc/passwd"} {
		_, err := l.Resolve(KindJob, name, false)
		require.Error(t, err, "name %q", name)
		assert.Equal(t, clio_err.CategoryValidation, clio_err.CategoryOf(err), "name %q", name)
	}
}

func TestResolveWithoutRoot(t *testing.T) {
	t.Parallel()
	l := NewLayout("/srv/logs", "")

	_, err := l.Resolve(KindJob, "job-42", true)
	require.Error(t, err)
	assert.Equal(t, clio_err.CategoryValidation, clio_err.CategoryOf(err))
}

func TestCreateBothVariants(t *testing.T) {
	t.Parallel()
	l := testLayout(t)

	require.NoError(t, l.CreateExperimentJobLogPath("alice.mnist.7.3"))

	for _, temp := range []bool{false, true} {
		path, err := l.ResolveExperimentJobLogPath("alice.mnist.7.3", temp)
		require.NoError(t, err)
		info, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err), "the log file itself is created by the appender")
	}
}

func TestCreateIsIdempotentUnderRace(t *testing.T) {
	t.Parallel()
	l := testLayout(t)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- l.CreateJobLogPath("alice.mnist.jobs.42")
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	require.NoError(t, l.CreateJobLogPath("alice.mnist.jobs.42"))
}

func TestCreateFailsWhenRootIsAFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "logs")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0644))

	l := NewLayout(blocker, filepath.Join(dir, "tmp"))
	assert.Error(t, l.CreateJobLogPath("job-42"))
}

func TestStrategy(t *testing.T) {
	t.Parallel()
	l := testLayout(t)
	s := l.Strategy(KindExperiment)

	assert.Equal(t, KindExperiment, s.Kind())

	want, err := l.ResolveExperimentLogPath("alice.mnist.7", false)
	require.NoError(t, err)
	got, err := s.ResolvePath("alice.mnist.7", false)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, s.CreatePath("alice.mnist.7"))
	_, err = os.Stat(filepath.Dir(got))
	assert.NoError(t, err)
}

func TestParseKind(t *testing.T) {
	t.Parallel()
	tests := map[string]Kind{
		"job":             KindJob,
		"jobs":            KindJob,
		"Experiment":      KindExperiment,
		"experiment-job":  KindExperimentJob,
		"experiment_job":  KindExperimentJob,
		"experiment_jobs": KindExperimentJob,
	}
	for in, want := range tests {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("pipeline")
	assert.Error(t, err)
}

func TestParseRelPath(t *testing.T) {
	t.Parallel()
	l := NewLayout("/srv/logs", "/srv/tmp")

	for _, kind := range Kinds() {
		path, err := l.Resolve(kind, "alice.mnist.7", false)
		require.NoError(t, err)
		rel, err := filepath.Rel(l.LogsRoot, path)
		require.NoError(t, err)

		gotKind, gotName, err := ParseRelPath(rel)
		require.NoError(t, err)
		assert.Equal(t, kind, gotKind)
		assert.Equal(t, "alice.mnist.7", gotName)
	}

	_, _, err := ParseRelPath("jobs/readme.txt")
	assert.Error(t, err)
	_, _, err = ParseRelPath("other/a.log")
	assert.Error(t, err)
}
