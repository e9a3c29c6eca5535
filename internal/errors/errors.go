// Package errors provides custom error types for the Pocketwatch API.
// All service-layer errors should use AppError so responses stay consistent
// and never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrDuplicatePhone = &AppError{Code: "DUPLICATE_PHONE", Message: "A user with this phone number already exists", StatusCode: http.StatusConflict}
	ErrUnknownSender  = &AppError{Code: "UNKNOWN_SENDER", Message: "No user is linked to this phone number", StatusCode: http.StatusNotFound}
)

// Recurring template errors.
var (
	ErrTemplateNotFound = &AppError{Code: "TEMPLATE_NOT_FOUND", Message: "Recurring template not found", StatusCode: http.StatusNotFound}
	ErrInvalidRule      = &AppError{Code: "INVALID_RULE", Message: "Invalid recurrence rule", StatusCode: http.StatusBadRequest}
)

// Pending instance errors.
var (
	ErrInstanceNotFound = &AppError{Code: "INSTANCE_NOT_FOUND", Message: "Pending expense not found", StatusCode: http.StatusNotFound}
	ErrPendingExists    = &AppError{Code: "PENDING_EXISTS", Message: "A pending expense is already awaiting confirmation for this template", StatusCode: http.StatusConflict}
	ErrAlreadyTriggered = &AppError{Code: "ALREADY_TRIGGERED", Message: "This billing period was already reminded", StatusCode: http.StatusConflict}
	ErrNothingPending   = &AppError{Code: "NOTHING_PENDING", Message: "There are no pending expenses awaiting confirmation", StatusCode: http.StatusConflict}
)

// Budget errors.
var (
	ErrBudgetNotFound = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
)
