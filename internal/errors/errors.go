package errors

import (
	"errors"
	"fmt"

	"github.com/wallet-sync/internal/types"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// CategoryAuthorization represents missing-identity errors
	CategoryAuthorization ErrorCategory = "authorization"
	// CategoryRemote represents remote ledger rejections and transport failures
	CategoryRemote ErrorCategory = "remote"
	// CategoryValidation represents input validation errors
	CategoryValidation ErrorCategory = "validation"
	// CategoryStore represents durable local store errors
	CategoryStore ErrorCategory = "store"
)

// CategorizedError represents an error carrying category, code and details
type CategorizedError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

// ToServiceError converts to a ServiceError
func (e *CategorizedError) ToServiceError() *types.ServiceError {
	return &types.ServiceError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// NewUnauthenticatedError creates an error for an operation that requires
// an authenticated identity
func NewUnauthenticatedError(operation string) *CategorizedError {
	return &CategorizedError{
		Category: CategoryAuthorization,
		Code:     "UNAUTHENTICATED",
		Message:  fmt.Sprintf("operation '%s' requires an authenticated user", operation),
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewRemoteRejectedError creates an error for a non-success remote response.
// body is the server's response body when available.
func NewRemoteRejectedError(table string, status int, body string) *CategorizedError {
	message := body
	if message == "" {
		message = fmt.Sprintf("remote ledger rejected the request (status %d)", status)
	}
	return &CategorizedError{
		Category: CategoryRemote,
		Code:     "REMOTE_REJECTED",
		Message:  message,
		Details: map[string]interface{}{
			"table":  table,
			"status": status,
		},
	}
}

// NewTransportError creates an error for a failed network round trip
func NewTransportError(table string, cause error) *CategorizedError {
	return &CategorizedError{
		Category: CategoryRemote,
		Code:     "TRANSPORT_ERROR",
		Message:  fmt.Sprintf("remote ledger unreachable for table '%s'", table),
		Cause:    cause,
		Details: map[string]interface{}{
			"table": table,
		},
	}
}

// NewValidationError creates an invalid parameter error
func NewValidationError(param string, reason string) *CategorizedError {
	return &CategorizedError{
		Category: CategoryValidation,
		Code:     "INVALID_PARAMETER",
		Message:  fmt.Sprintf("invalid parameter '%s': %s", param, reason),
		Details: map[string]interface{}{
			"parameter": param,
			"reason":    reason,
		},
	}
}

// NewStoreError creates a durable local store error
func NewStoreError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category: CategoryStore,
		Code:     "STORE_ERROR",
		Message:  fmt.Sprintf("local store error during %s", operation),
		Cause:    cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// IsUnauthenticated reports whether err is a missing-identity error
func IsUnauthenticated(err error) bool {
	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr.Code == "UNAUTHENTICATED"
	}
	return false
}

// IsRemoteRejected reports whether err is a remote ledger rejection
func IsRemoteRejected(err error) bool {
	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr.Code == "REMOTE_REJECTED"
	}
	return false
}

// Categorize wraps an arbitrary error into a CategorizedError
func Categorize(err error) *CategorizedError {
	if err == nil {
		return nil
	}
	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr
	}
	return &CategorizedError{
		Category: CategoryRemote,
		Code:     "UNEXPECTED_ERROR",
		Message:  "unexpected error",
		Cause:    err,
	}
}
