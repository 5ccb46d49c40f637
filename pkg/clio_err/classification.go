// pkg/clio_err/classification.go
//
// Error classification with exit codes.

package clio_err

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrorCategory classifies errors for appropriate handling
type ErrorCategory int

const (
	// CategorySystem - OS/filesystem issues (exit 1)
	CategorySystem ErrorCategory = iota
	// CategoryValidation - Input validation failures (exit 2)
	CategoryValidation
	// CategoryInternal - Bugs in clio itself (exit 3)
	CategoryInternal
	// CategoryPermission - Permission denied (exit 1)
	CategoryPermission
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryInternal:
		return "internal"
	case CategoryPermission:
		return "permission"
	default:
		return "system"
	}
}

// ClassifiedError wraps an error with category and remediation info
type ClassifiedError struct {
	Category    ErrorCategory
	Message     string
	Cause       error
	Remediation []string
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Message)

	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(fmt.Sprintf("\n\nCause: %v", e.Cause))
	}

	if len(e.Remediation) > 0 {
		sb.WriteString("\n\nHow to fix:")
		for i, step := range e.Remediation {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	return sb.String()
}

// Unwrap returns the underlying error
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error category
func (e *ClassifiedError) ExitCode() int {
	switch e.Category {
	case CategoryValidation:
		return 2
	case CategoryInternal:
		return 3
	default:
		return 1
	}
}

// GetExitCode extracts exit code from any error.
// Returns 0 for nil and for expected user errors, the category code for
// classified errors, 1 for anything else.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	// Expected user errors never fail the program, even when classified.
	if IsExpectedUserError(err) {
		return 0
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.ExitCode()
	}

	return 1
}

// NewValidationError creates an error for input validation failures
func NewValidationError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryValidation,
		Message:     message,
		Remediation: remediation,
	}
}

// NewFilesystemError creates an error for filesystem issues
func NewFilesystemError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategorySystem,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewPermissionError creates an error for permission issues
func NewPermissionError(resource, operation string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryPermission,
		Message:     fmt.Sprintf("Permission denied: cannot %s %s", operation, resource),
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewInternalError creates an error for clio bugs
func NewInternalError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryInternal,
		Message:  message,
		Cause:    cause,
		Remediation: []string{
			"This is likely a bug in clio",
			"Include this error message and steps to reproduce when reporting it",
		},
	}
}

// ClassifyError attaches a category to an unclassified error using the
// fs sentinel errors it wraps.
func ClassifyError(err error, context string) error {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return err
	}

	switch {
	case errors.Is(err, fs.ErrPermission):
		return NewPermissionError(context, "access", err,
			"Check ownership and mode of the log directory",
			"Run as the service account that owns the log root")

	case errors.Is(err, fs.ErrNotExist):
		return NewFilesystemError(
			fmt.Sprintf("%s: resource not found", context),
			err,
			"Check that the path or resource exists",
			"Verify spelling and case sensitivity",
		)

	default:
		return NewFilesystemError(fmt.Sprintf("%s failed", context), err)
	}
}

// CategoryOf returns the category of a classified error, or CategorySystem.
func CategoryOf(err error) ErrorCategory {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category
	}
	return CategorySystem
}
