package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "Bookable not found",
			},
			expected: "NOT_FOUND: Bookable not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "Failed to store booking",
				Err:     errors.New("connection reset"),
			},
			expected: "INTERNAL_ERROR: Failed to store booking (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	if errors.Unwrap(appErr) != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestRejected(t *testing.T) {
	err := Rejected(ReasonCapacityExceeded, "Kapazität überschritten")

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
	if got := ReasonOf(err); got != ReasonCapacityExceeded {
		t.Errorf("ReasonOf() = %q, want %q", got, ReasonCapacityExceeded)
	}
}

func TestReasonOf_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("item 2: %w", Rejected(ReasonChildConflict, "child booked"))

	if got := ReasonOf(wrapped); got != ReasonChildConflict {
		t.Errorf("ReasonOf() = %q, want %q", got, ReasonChildConflict)
	}
	if ReasonOf(errors.New("plain")) != "" {
		t.Errorf("ReasonOf() should be empty for non-app errors")
	}
	if ReasonOf(NotFoundWithID("Bookable", "x")) != "" {
		t.Errorf("ReasonOf() should be empty when no reason is attached")
	}
}

func TestWithDetails_Merges(t *testing.T) {
	err := Rejected(ReasonEventSoldOut, "sold out").WithDetails(map[string]any{"event_id": "e1"})

	if err.Details["reason"] != string(ReasonEventSoldOut) {
		t.Errorf("reason detail was overwritten: %v", err.Details)
	}
	if err.Details["event_id"] != "e1" {
		t.Errorf("expected event_id detail, got %v", err.Details["event_id"])
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Coupon", "SUMMER")

	if err.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, err.Code)
	}
	if err.Details["id"] != "SUMMER" {
		t.Errorf("expected id 'SUMMER', got %v", err.Details["id"])
	}
	if err.Message != "Coupon not found" {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestReferenceExhausted(t *testing.T) {
	err := ReferenceExhausted(10)

	if err.Code != CodeReferenceExhausted {
		t.Errorf("expected code %s, got %s", CodeReferenceExhausted, err.Code)
	}
	if err.HTTPStatus != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, err.HTTPStatus)
	}
	if err.Details["attempts"] != 10 {
		t.Errorf("expected attempts detail 10, got %v", err.Details["attempts"])
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("slot locked")
	regularErr := errors.New("regular error")

	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}
	if AsAppError(fmt.Errorf("ctx: %w", appErr)) != appErr {
		t.Errorf("AsAppError() should unwrap wrapped AppError")
	}

	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestHasCode(t *testing.T) {
	if !HasCode(Timeout("slow"), CodeTimeout) {
		t.Errorf("HasCode() should match timeout code")
	}
	if HasCode(errors.New("x"), CodeTimeout) {
		t.Errorf("HasCode() should not match plain errors")
	}
	if !IsAppError(Forbidden("no")) {
		t.Errorf("IsAppError() should be true for AppError")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	body := string(NotFoundWithID("Bookable", "room-1").ToJSON())

	if !strings.Contains(body, "NOT_FOUND") {
		t.Errorf("ToJSON() should contain error code, got %s", body)
	}
	if !strings.Contains(body, "room-1") {
		t.Errorf("ToJSON() should contain details, got %s", body)
	}
}
