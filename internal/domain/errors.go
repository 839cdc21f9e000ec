package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrStorage          = errors.New("storage failure")
	ErrUnauthorized     = errors.New("unauthorized") // request carries no owner identity

	// ErrValidation is the input-shape flavour of ErrInvalidOperation
	// (empty names, malformed identifiers). errors.Is(err, ErrInvalidOperation)
	// holds for both.
	ErrValidation = fmt.Errorf("%w: validation failed", ErrInvalidOperation)

	// ErrTooLarge rejects uploads above the configured size limit
	ErrTooLarge = fmt.Errorf("%w: content too large", ErrValidation)
)

// InvalidOperationError indicates a structurally illegal request, such as a
// move that would create a cycle
type InvalidOperationError struct {
	Message string
}

func (e *InvalidOperationError) Error() string { return e.Message }

func (e *InvalidOperationError) StatusCode() int { return http.StatusUnprocessableEntity }

func (e *InvalidOperationError) Is(target error) bool { return target == ErrInvalidOperation }

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (folder, file)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// StorageError wraps a failure of the namespace store or the content store.
// It matches ErrStorage and unwraps to the driver error, so callers can still
// detect context.Canceled or a specific driver condition.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err as a storage failure for operation op
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func (e *StorageError) StatusCode() int { return http.StatusServiceUnavailable }
