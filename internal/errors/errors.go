package errors

import (
	"fmt"
)

// ErrorKind identifies the closed set of failure categories that can cross
// the wire boundary. Every underlying failure is wrapped into one of these
// before crossing it.
type ErrorKind string

const (
	KindMissingFile ErrorKind = "missing_file"
	KindRead        ErrorKind = "read"
	KindCompression ErrorKind = "compression"
	KindValidation  ErrorKind = "validation"
	KindInternal    ErrorKind = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewMissingFileError reports an absent or empty upload field
func NewMissingFileError(message string, cause error) *AppError {
	return &AppError{Kind: KindMissingFile, Message: message, Cause: cause}
}

// NewReadError reports a failure reading a materialized upload
func NewReadError(message string, cause error) *AppError {
	return &AppError{Kind: KindRead, Message: message, Cause: cause}
}

// NewCompressionError reports a re-encoder rejection
func NewCompressionError(message string, cause error) *AppError {
	return &AppError{Kind: KindCompression, Message: message, Cause: cause}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Cause: cause}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Cause: cause}
}

// IsKind checks if the error carries a specific kind
func IsKind(err error, kind ErrorKind) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Kind == kind
	}
	return false
}

// KindOf extracts the kind from an error, defaulting to internal
func KindOf(err error) ErrorKind {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf extracts the human-readable message, falling back to Error()
func MessageOf(err error) string {
	if appErr, ok := err.(*AppError); ok {
		if appErr.Cause != nil {
			return fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
		}
		return appErr.Message
	}
	return err.Error()
}
