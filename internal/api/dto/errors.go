package dto

import "time"

// APIError is the body of every error response.
// Error carries the raw cause and is only filled in development mode.
type APIError struct {
	Success   bool   `json:"success"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Common error codes
const (
	ErrCodeNotFound      = "not_found"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeInternalError = "internal_error"
)

// InternalErrorMessage is the sanitized message of every 500 response.
const InternalErrorMessage = "Internal Server Error"

// NewAPIError creates a new APIError with the given code and message.
func NewAPIError(code, message string) APIError {
	return APIError{
		Code:    code,
		Message: message,
	}
}

// NotFoundError creates a not found error response.
func NotFoundError(resource string) APIError {
	return NewAPIError(ErrCodeNotFound, resource+" not found")
}

// BadRequestError creates a bad request error response.
func BadRequestError(message string) APIError {
	return NewAPIError(ErrCodeBadRequest, message)
}

// UnauthorizedError creates an authentication failure response.
func UnauthorizedError(message string) APIError {
	return NewAPIError(ErrCodeUnauthorized, message)
}

// InternalError creates an internal server error response stamped at now.
// The cause is included only when expose is set.
func InternalError(cause error, expose bool, now time.Time) APIError {
	e := NewAPIError(ErrCodeInternalError, InternalErrorMessage)
	e.Timestamp = now.UTC().Format(isoLayout)
	if expose && cause != nil {
		e.Error = cause.Error()
	}
	return e
}
