package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "Hotel not found"},
			expected: "NOT_FOUND: Hotel not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
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

func TestConstructors_StatusTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("RoomType"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("Invalid interval", nil), CodeValidation, http.StatusBadRequest},
		{"no availability", NoAvailability("No rooms available for these dates.", nil), CodeNoAvailability, http.StatusBadRequest},
		{"invalid input", InvalidInput("bad body"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("missing token"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("not yours"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("busy"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Kafka"), CodeUnavailable, http.StatusServiceUnavailable},
		{"rate limited", RateLimited("slow down"), CodeRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Hotel", "12345")

	if err.Message != "Hotel not found" {
		t.Errorf("expected message 'Hotel not found', got %s", err.Message)
	}
	if err.Details["id"] != "12345" {
		t.Errorf("expected id '12345', got %v", err.Details["id"])
	}
	if err.Details["resource"] != "Hotel" {
		t.Errorf("expected resource 'Hotel', got %v", err.Details["resource"])
	}
}

func TestUnavailable_Message(t *testing.T) {
	err := Unavailable("Payment Service")
	if err.Message != "Payment Service is temporarily unavailable" {
		t.Errorf("expected message to contain service name, got %s", err.Message)
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Booking")
	regularErr := errors.New("regular error")

	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}

	wrapped := fmt.Errorf("transaction failed: %w", appErr)
	if AsAppError(wrapped) != appErr {
		t.Errorf("AsAppError() should find an AppError through wrapping")
	}

	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestIsAppErrorAndHasCode(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Conflict("busy"))

	if !IsAppError(wrapped) {
		t.Errorf("IsAppError() should see through wrapping")
	}
	if IsAppError(errors.New("plain")) {
		t.Errorf("IsAppError() should return false for regular error")
	}
	if !HasCode(wrapped, CodeConflict) {
		t.Errorf("HasCode() should match CONFLICT")
	}
	if HasCode(wrapped, CodeNotFound) {
		t.Errorf("HasCode() should not match NOT_FOUND")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	err := NoAvailability("No rooms available for these dates.", map[string]any{"available": 0})

	var body map[string]any
	if jsonErr := json.Unmarshal(err.ToJSON(), &body); jsonErr != nil {
		t.Fatalf("ToJSON() produced invalid JSON: %v", jsonErr)
	}

	if body["success"] != false {
		t.Errorf("expected success=false, got %v", body["success"])
	}
	if body["message"] != "No rooms available for these dates." {
		t.Errorf("unexpected message %v", body["message"])
	}
	if body["code"] != CodeNoAvailability {
		t.Errorf("unexpected code %v", body["code"])
	}
	data, ok := body["data"].(map[string]any)
	if !ok || data["available"] != float64(0) {
		t.Errorf("expected data.available=0, got %v", body["data"])
	}
}

func TestStatusCode_FallsBackToCode(t *testing.T) {
	if got := (&AppError{Code: CodeConflict}).StatusCode(); got != http.StatusConflict {
		t.Errorf("StatusCode() = %d, want 409", got)
	}
	if got := (&AppError{Code: "SOMETHING_ELSE"}).StatusCode(); got != http.StatusInternalServerError {
		t.Errorf("StatusCode() = %d, want 500", got)
	}
}
