package clio_err

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"validation", NewValidationError("bad name"), 2},
		{"internal", NewInternalError("bug", nil), 3},
		{"permission literal", &ClassifiedError{Category: CategoryPermission, Message: "denied"}, 1},
		{"permission", NewPermissionError("/srv/logs", "write", nil), 1},
		{"expected user error", NewExpectedError(errors.New("no log")), 0},
		{"expected validation error", NewExpectedError(NewValidationError("bad name")), 0},
		{"wrapped validation", cerr.Wrap(NewValidationError("bad name"), "append"), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ClassifyError(nil, "append"))

	perm := &os.PathError{Op: "open", Path: "/srv/logs/a.log", Err: fs.ErrPermission}
	got := ClassifyError(perm, "append")
	assert.Equal(t, CategoryPermission, CategoryOf(got))
	assert.ErrorIs(t, got, fs.ErrPermission)

	missing := fmt.Errorf("read: %w", fs.ErrNotExist)
	got = ClassifyError(missing, "read")
	assert.Equal(t, CategorySystem, CategoryOf(got))
	assert.Contains(t, got.Error(), "resource not found")

	already := NewValidationError("bad name")
	assert.Same(t, already, ClassifyError(already, "append"))

	got = ClassifyError(errors.New("disk on fire"), "append")
	assert.Contains(t, got.Error(), "append failed")
}

func TestClassifiedErrorMessage(t *testing.T) {
	t.Parallel()
	err := &ClassifiedError{
		Category:    CategorySystem,
		Message:     "cannot append",
		Cause:       errors.New("no space left on device"),
		Remediation: []string{"Free space", "Retry"},
	}

	msg := err.Error()
	assert.Contains(t, msg, "cannot append")
	assert.Contains(t, msg, "Cause: no space left on device")
	assert.Contains(t, msg, "1. Free space")
	assert.Contains(t, msg, "2. Retry")
}

func TestExpectedError(t *testing.T) {
	t.Parallel()
	assert.Nil(t, NewExpectedError(nil))

	base := errors.New("no log")
	err := NewExpectedError(base)
	require.Error(t, err)
	assert.True(t, IsExpectedUserError(err))
	assert.True(t, IsExpectedUserError(cerr.Wrap(err, "read")))
	assert.ErrorIs(t, err, base)
	assert.False(t, IsExpectedUserError(base))
}

func TestWrapFilesystemError(t *testing.T) {
	t.Parallel()
	base := errors.New("bad")

	f := WrapFilesystemError(base, "/srv/logs")
	assert.ErrorIs(t, f, base)
	assert.Contains(t, cerr.FlattenHints(f), "/srv/logs")
}

func TestCategoryString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "validation", CategoryValidation.String())
	assert.Equal(t, "permission", CategoryPermission.String())
	assert.Equal(t, "system", CategorySystem.String())
}
