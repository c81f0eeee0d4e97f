package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents the categories of failure a scan can surface
type ErrorType string

const (
	ErrorTypeInvalidImage          ErrorType = "invalid_image"
	ErrorTypeInsufficientStaveData ErrorType = "insufficient_stave_data"
	ErrorTypePitchOutOfRange       ErrorType = "pitch_out_of_range"
	ErrorTypeTemplateLoad          ErrorType = "template_load"
	ErrorTypeValidation            ErrorType = "validation"
	ErrorTypeInternal              ErrorType = "internal"
)

// Sentinels for errors.Is comparisons. Matching is by Type only, so any
// AppError of the same type satisfies errors.Is against these.
var (
	ErrInvalidImage          = &AppError{Type: ErrorTypeInvalidImage, Message: "invalid image"}
	ErrInsufficientStaveData = &AppError{Type: ErrorTypeInsufficientStaveData, Message: "insufficient stave data"}
	ErrPitchOutOfRange       = &AppError{Type: ErrorTypePitchOutOfRange, Message: "pitch out of range"}
	ErrTemplateLoad          = &AppError{Type: ErrorTypeTemplateLoad, Message: "template load failed"}
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError of the same type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInvalidImageError is returned when an image cannot be decoded or has zero area
func NewInvalidImageError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidImage,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewInsufficientStaveDataError is returned when fewer than five stave lines are found
func NewInsufficientStaveDataError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInsufficientStaveData,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewPitchOutOfRangeError is returned when a pitch ordinal falls outside A0..C8
func NewPitchOutOfRangeError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypePitchOutOfRange,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewTemplateLoadError marks a broken template catalog. It is a packaging
// defect rather than a condition callers can recover from.
func NewTemplateLoadError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTemplateLoad,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// IsType checks if the error, or any error it wraps, is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// TypeOf returns the type of the first AppError in err's chain, or
// ErrorTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
