package safelog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_err"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/logpaths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStrategy wraps a layout strategy and counts collaborator calls.
type countingStrategy struct {
	inner    PathStrategy
	resolves atomic.Int32
	creates  atomic.Int32
}

func (s *countingStrategy) ResolvePath(name string, temp bool) (string, error) {
	s.resolves.Add(1)
	return s.inner.ResolvePath(name, temp)
}

func (s *countingStrategy) CreatePath(name string) error {
	s.creates.Add(1)
	return s.inner.CreatePath(name)
}

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	dir := t.TempDir()
	return New(logpaths.NewLayout(filepath.Join(dir, "logs"), filepath.Join(dir, "tmp")))
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestAppendFreshFilesystem(t *testing.T) {
	t.Parallel()
	l := newTestLogger(t)
	s := &countingStrategy{inner: l.Layout().Strategy(logpaths.KindJob)}

	err := l.Append(context.Background(), s, "job-42", "epoch 1 loss=0.31", false)
	require.NoError(t, err)

	assert.Equal(t, int32(1), s.creates.Load(), "path creation runs exactly once")

	path, err := l.Layout().ResolveJobLogPath("job-42", false)
	require.NoError(t, err)
	assert.Equal(t, "epoch 1 loss=0.31\n", readLog(t, path))
}

func TestAppendKeepsExistingContent(t *testing.T) {
	t.Parallel()
	l := newTestLogger(t)
	ctx := context.Background()

	path, err := l.Layout().ResolveExperimentLogPath("alice.mnist.7", false)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	prior := "started\nno trailing newline"
	require.NoError(t, os.WriteFile(path, []byte(prior), 0644))

	s := &countingStrategy{inner: l.Layout().Strategy(logpaths.KindExperiment)}
	require.NoError(t, l.Append(ctx, s, "alice.mnist.7", "step 2", false))

	assert.Equal(t, int32(0), s.creates.Load(), "existing path needs no creation")
	assert.Equal(t, prior+"step 2\n", readLog(t, path))
}

func TestSequentialAppendsPreserveOrder(t *testing.T) {
	t.Parallel()
	l := newTestLogger(t)
	ctx := context.Background()

	require.NoError(t, l.AppendExperimentJobLog(ctx, "alice.mnist.7.3", "line A", false))
	require.NoError(t, l.AppendExperimentJobLog(ctx, "alice.mnist.7.3", "line B", false))

	path, err := l.Layout().ResolveExperimentJobLogPath("alice.mnist.7.3", false)
	require.NoError(t, err)
	assert.Equal(t, "line A\nline B\n", readLog(t, path))
}

func TestAppendWritesLinesVerbatim(t *testing.T) {
	t.Parallel()
	l := newTestLogger(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		lines string
		want  string
	}{
		{"empty", "", "\n"},
		{"multi line block", "a\nb", "a\nb\n"},
		{"trailing newline kept", "a\n", "a\n\n"},
		{"unicode", "λ=0.5 ✓", "λ=0.5 ✓\n"},
	}

	for i, tt := range tests {
		name := fmt.Sprintf("job-%d", i)
		require.NoError(t, l.AppendJobLog(ctx, name, tt.lines, false), tt.name)
		path, err := l.Layout().ResolveJobLogPath(name, false)
		require.NoError(t, err)
		assert.Equal(t, tt.want, readLog(t, path), tt.name)
	}
}

func TestTempAndPermanentAreSeparate(t *testing.T) {
	t.Parallel()
	l := newTestLogger(t)
	ctx := context.Background()

	require.NoError(t, l.AppendJobLog(ctx, "job-42", "staging", true))
	require.NoError(t, l.AppendJobLog(ctx, "job-42", "final", false))

	tempPath, err := l.Layout().ResolveJobLogPath("job-42", true)
	require.NoError(t, err)
	permPath, err := l.Layout().ResolveJobLogPath("job-42", false)
	require.NoError(t, err)

	assert.NotEqual(t, tempPath, permPath)
	assert.Equal(t, "staging\n", readLog(t, tempPath))
	assert.Equal(t, "final\n", readLog(t, permPath))
}

func TestConcurrentAppendsDoNotInterleave(t *testing.T) {
	t.Parallel()
	l := newTestLogger(t)
	ctx := context.Background()

	const writers = 32
	// Large payloads make torn writes visible if locking were broken.
	payload := func(i int) string {
		return fmt.Sprintf("writer-%02d:%s", i, strings.Repeat(string(rune('a'+i%26)), 16*1024))
	}

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- l.AppendExperimentLog(ctx, "alice.mnist.9", payload(i), false)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	path, err := l.Layout().ResolveExperimentLogPath("alice.mnist.9", false)
	require.NoError(t, err)
	got := strings.Split(strings.TrimSuffix(readLog(t, path), "\n"), "\n")
	require.Len(t, got, writers)

	want := make(map[string]bool, writers)
	for i := 0; i < writers; i++ {
		want[payload(i)] = true
	}
	for _, line := range got {
		assert.True(t, want[line], "line is not an intact payload (len %d)", len(line))
		delete(want, line)
	}
	assert.Empty(t, want)
}

func TestSecondFailurePropagates(t *testing.T) {
	t.Parallel()
	l := newTestLogger(t)

	// Creation "succeeds" without creating anything, so the retry fails the same way.
	var creates atomic.Int32
	s := StrategyFuncs{
		Resolve: func(name string, temp bool) (string, error) {
			return l.Layout().ResolveJobLogPath(name, temp)
		},
		Create: func(string) error {
			creates.Add(1)
			return nil
		},
	}

	err := l.Append(context.Background(), s, "job-42", "lost", false)
	require.Error(t, err)
	assert.Equal(t, int32(1), creates.Load(), "no retry beyond the first")
	assert.True(t, IsPathMissing(err))
	assert.True(t, IsPersistentIO(err))
}

func TestNonMissingFailureIsNotRetried(t *testing.T) {
	t.Parallel()
	l := newTestLogger(t)

	// The resolved log path is a directory: open fails with EISDIR.
	path, err := l.Layout().ResolveJobLogPath("job-42", false)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(path, 0755))

	s := &countingStrategy{inner: l.Layout().Strategy(logpaths.KindJob)}
	err = l.Append(context.Background(), s, "job-42", "lost", false)
	require.Error(t, err)

	assert.Equal(t, int32(0), s.creates.Load())
	assert.False(t, IsPathMissing(err))
	assert.True(t, IsPersistentIO(err))
}

func TestNotADirectoryIsTreatedAsMissing(t *testing.T) {
	t.Parallel()
	l := newTestLogger(t)

	// A regular file sits where the kind directory should be.
	require.NoError(t, os.MkdirAll(l.Layout().LogsRoot, 0755))
	blocker := filepath.Join(l.Layout().LogsRoot, logpaths.KindJob.Dir())
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	s := &countingStrategy{inner: l.Layout().Strategy(logpaths.KindJob)}
	err := l.Append(context.Background(), s, "alice.jobs.1", "lost", false)
	require.Error(t, err)

	assert.Equal(t, int32(1), s.creates.Load(), "ENOTDIR qualifies for one creation attempt")
	assert.True(t, IsPersistentIO(err))
}

func TestCreateFailurePropagates(t *testing.T) {
	t.Parallel()
	l := newTestLogger(t)
	boom := fmt.Errorf("read-only filesystem")

	s := StrategyFuncs{
		Resolve: func(name string, temp bool) (string, error) {
			return l.Layout().ResolveJobLogPath(name, temp)
		},
		Create: func(string) error { return boom },
	}

	err := l.Append(context.Background(), s, "job-42", "lost", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, IsPersistentIO(err))
}

func TestResolveFailurePropagates(t *testing.T) {
	t.Parallel()
	l := newTestLogger(t)

	var creates atomic.Int32
	s := StrategyFuncs{
		Resolve: func(string, bool) (string, error) { return "", fmt.Errorf("no such project") },
		Create: func(string) error {
			creates.Add(1)
			return nil
		},
	}

	err := l.Append(context.Background(), s, "job-42", "lost", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such project")
	assert.Equal(t, int32(0), creates.Load())
}

func TestEmptyNameIsRejected(t *testing.T) {
	t.Parallel()
	l := newTestLogger(t)
	s := &countingStrategy{inner: l.Layout().Strategy(logpaths.KindJob)}

	err := l.Append(context.Background(), s, "  ", "lost", false)
	require.Error(t, err)
	assert.Equal(t, clio_err.CategoryValidation, clio_err.CategoryOf(err))
	assert.Equal(t, int32(0), s.resolves.Load())

	_, statErr := os.Stat(l.Layout().LogsRoot)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAppendKind(t *testing.T) {
	t.Parallel()
	l := newTestLogger(t)
	ctx := context.Background()

	for _, kind := range logpaths.Kinds() {
		require.NoError(t, l.AppendKind(ctx, kind, Target{Name: "alice.mnist.1", Temp: true}, kind.String()))
		path, err := l.Layout().Resolve(kind, "alice.mnist.1", true)
		require.NoError(t, err)
		assert.Equal(t, kind.String()+"\n", readLog(t, path))
	}
}

func TestWithFilePerm(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	l := New(logpaths.NewLayout(filepath.Join(dir, "logs"), filepath.Join(dir, "tmp")), WithFilePerm(0600))

	require.NoError(t, l.AppendJobLog(context.Background(), "job-42", "secret", false))
	path, err := l.Layout().ResolveJobLogPath("job-42", false)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	// umask can only remove bits.
	assert.Zero(t, info.Mode().Perm()&0077)
}

// Not parallel: swaps the package default.
func TestPackageLevelFunctions(t *testing.T) {
	l := newTestLogger(t)
	prev := Default()
	SetDefault(l)
	t.Cleanup(func() { SetDefault(prev) })

	ctx := context.Background()
	require.NoError(t, AppendJobLog(ctx, "job-1", "j", false))
	require.NoError(t, AppendExperimentLog(ctx, "exp-1", "e", false))
	require.NoError(t, AppendExperimentJobLog(ctx, "exp-1.1", "ej", true))
	require.NoError(t, Append(ctx, l.Layout().Strategy(logpaths.KindJob), "job-1", "j2", false))

	path, err := l.Layout().ResolveJobLogPath("job-1", false)
	require.NoError(t, err)
	assert.Equal(t, "j\nj2\n", readLog(t, path))

	path, err = l.Layout().ResolveExperimentLogPath("exp-1", false)
	require.NoError(t, err)
	assert.Equal(t, "e\n", readLog(t, path))

	path, err = l.Layout().ResolveExperimentJobLogPath("exp-1.1", true)
	require.NoError(t, err)
	assert.Equal(t, "ej\n", readLog(t, path))
}
