// Package apperr classifies the failures the client can run into so callers
// can decide between falling back, rolling back, or reporting to the user.
package apperr

import (
	"errors"
	"fmt"
)

// Type is the category of an AppError.
type Type int

const (
	// TypeRemote covers transport failures and success:false replies alike.
	TypeRemote Type = iota
	TypeStorage
	TypeInvalidInput
	TypeNotFound
	TypePermission
	TypeTimeout
)

func (t Type) String() string {
	switch t {
	case TypeRemote:
		return "remote"
	case TypeStorage:
		return "storage"
	case TypeInvalidInput:
		return "invalid_input"
	case TypeNotFound:
		return "not_found"
	case TypePermission:
		return "permission"
	case TypeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// AppError is a categorised error with optional context for logs.
type AppError struct {
	Type    Type
	Message string
	Code    string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError with the same type and code.
func (e *AppError) Is(target error) bool {
	if other, ok := target.(*AppError); ok {
		return e.Type == other.Type && e.Code == other.Code
	}
	return false
}

// WithContext attaches a key/value for logging.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewRemoteError reports a failed RemoteStore call.
func NewRemoteError(operation string, cause error) *AppError {
	return &AppError{
		Type:    TypeRemote,
		Message: fmt.Sprintf("remote %s failed", operation),
		Code:    "REMOTE_FAILED",
		Cause:   cause,
		Context: map[string]interface{}{"operation": operation},
	}
}

// NewStorageError reports a failed local storage read or write.
func NewStorageError(operation string, cause error) *AppError {
	return &AppError{
		Type:    TypeStorage,
		Message: fmt.Sprintf("local storage %s failed", operation),
		Code:    "STORAGE_FAILED",
		Cause:   cause,
		Context: map[string]interface{}{"operation": operation},
	}
}

// NewInvalidInputError reports a bad argument.
func NewInvalidInputError(field string, value interface{}, reason string) *AppError {
	return &AppError{
		Type:    TypeInvalidInput,
		Message: fmt.Sprintf("invalid input for %s: %s", field, reason),
		Code:    "INVALID_INPUT",
		Context: map[string]interface{}{
			"field":  field,
			"value":  value,
			"reason": reason,
		},
	}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(resource, identifier string) *AppError {
	return &AppError{
		Type:    TypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:    "NOT_FOUND",
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewPermissionError reports a refused notification channel or similar.
func NewPermissionError(operation, resource string, cause error) *AppError {
	return &AppError{
		Type:    TypePermission,
		Message: fmt.Sprintf("permission denied for %s on %s", operation, resource),
		Code:    "PERMISSION_DENIED",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
			"resource":  resource,
		},
	}
}

// NewTimeoutError reports an operation that exceeded its deadline.
func NewTimeoutError(operation string, cause error) *AppError {
	return &AppError{
		Type:    TypeTimeout,
		Message: fmt.Sprintf("operation timed out: %s", operation),
		Code:    "TIMEOUT",
		Cause:   cause,
		Context: map[string]interface{}{"operation": operation},
	}
}

// AsAppError extracts an AppError from err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of type t.
func IsType(err error, t Type) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Type == t
	}
	return false
}

// UserMessage renders err for people rather than logs.
func UserMessage(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return err.Error()
	}
	switch appErr.Type {
	case TypeRemote:
		return "Could not reach the journal service. Your change was not saved."
	case TypeStorage:
		return "Local storage is unavailable; working without the offline cache."
	case TypeTimeout:
		return "The journal service took too long to answer. Please try again."
	default:
		return appErr.Message
	}
}
