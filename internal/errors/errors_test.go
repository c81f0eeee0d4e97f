package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Is(t *testing.T) {
	err := NewInsufficientStaveDataError("found 3 peaks", nil)
	wrapped := fmt.Errorf("scan failed: %w", err)

	if !stderrors.Is(wrapped, ErrInsufficientStaveData) {
		t.Error("wrapped error should match ErrInsufficientStaveData")
	}
	if stderrors.Is(wrapped, ErrInvalidImage) {
		t.Error("wrapped error should not match ErrInvalidImage")
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("unexpected EOF")
	err := NewInvalidImageError("failed to decode image", cause)

	if !stderrors.Is(err, cause) {
		t.Error("AppError should unwrap to its cause")
	}
	want := "invalid_image: failed to decode image (caused by: unexpected EOF)"
	if err.Error() != want {
		t.Errorf("Error(): got %q, want %q", err.Error(), want)
	}
}

func TestTypeOfAndStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantType   ErrorType
		wantStatus int
	}{
		{"invalid image", NewInvalidImageError("x", nil), ErrorTypeInvalidImage, http.StatusUnprocessableEntity},
		{"stave", fmt.Errorf("wrap: %w", NewInsufficientStaveDataError("x", nil)), ErrorTypeInsufficientStaveData, http.StatusUnprocessableEntity},
		{"pitch", NewPitchOutOfRangeError("x", nil), ErrorTypePitchOutOfRange, http.StatusUnprocessableEntity},
		{"template", NewTemplateLoadError("x", nil), ErrorTypeTemplateLoad, http.StatusInternalServerError},
		{"validation", NewValidationError("x", nil), ErrorTypeValidation, http.StatusBadRequest},
		{"plain", stderrors.New("boom"), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeOf(tt.err); got != tt.wantType {
				t.Errorf("TypeOf: got %s, want %s", got, tt.wantType)
			}
			if got := GetStatusCode(tt.err); got != tt.wantStatus {
				t.Errorf("GetStatusCode: got %d, want %d", got, tt.wantStatus)
			}
			if !IsType(tt.err, tt.wantType) && tt.wantType != ErrorTypeInternal {
				t.Errorf("IsType(%s) should be true", tt.wantType)
			}
		})
	}
}
