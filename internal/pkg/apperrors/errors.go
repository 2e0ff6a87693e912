package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceAlreadyExists = errors.New("resource already exists")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Workspace errors
var (
	ErrWorkspaceNotFound  = errors.New("workspace not found")
	ErrInvalidWorkspaceID = errors.New("invalid workspace ID")
)

// Image errors
var (
	ErrImageNotFound    = errors.New("image not found")
	ErrInvalidImageRef  = errors.New("invalid image reference")
	ErrEmptyImageUpload = errors.New("image upload is empty")
)

// Scan result errors
var (
	ErrProcessingInProgress = errors.New("processing already in progress for this workspace")
	ErrNoResults            = errors.New("no results to export")
	ErrGradingFailed        = errors.New("grading failed")
)

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError wraps ErrValidationFailed with field level details
func NewValidationError(message string, details map[string]interface{}) error {
	return NewCustomError(ErrValidationFailed, message).WithDetails(details)
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
