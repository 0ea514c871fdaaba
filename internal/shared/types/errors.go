package types

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNoHTMLInArchive    = errors.New("archive contains no HTML document")
	ErrRepoNotFound       = errors.New("repository not found")
	ErrStorage            = errors.New("storage failure")
	ErrImportFormat       = errors.New("invalid import format")
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrAppNotFound        = errors.New("app not found")
	ErrNothingToLaunch    = errors.New("app has nothing to launch")
	ErrInvalidLayout      = errors.New("invalid frame layout")
	ErrInvalidSlot        = errors.New("invalid frame slot")
)

// ValidationError names the field and the constraint it violated
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Constraint)
}

// Unwrap lets errors.Is match ErrValidation
func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError
func NewValidationError(field, constraint string) *ValidationError {
	return &ValidationError{Field: field, Constraint: constraint}
}

// RepoNotFoundError reports a non-success response from the repository endpoint
type RepoNotFoundError struct {
	Owner  string
	Repo   string
	Status int
}

func (e *RepoNotFoundError) Error() string {
	return fmt.Sprintf("repository %s/%s not found (status %d)", e.Owner, e.Repo, e.Status)
}

func (e *RepoNotFoundError) Unwrap() error { return ErrRepoNotFound }

// StorageError wraps a persistence failure with the operation that caused it
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

// Unwrap returns both the sentinel and the cause
func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// NewStorageError wraps err, returning nil for a nil err
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
