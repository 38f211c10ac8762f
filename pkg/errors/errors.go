package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound       = "NOT_FOUND"
	CodeValidation     = "VALIDATION_ERROR"
	CodeNoAvailability = "NO_AVAILABILITY"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeConflict       = "CONFLICT"
	CodeInternal       = "INTERNAL_ERROR"
	CodeTimeout        = "TIMEOUT"
	CodeUnavailable    = "SERVICE_UNAVAILABLE"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeRateLimited    = "RATE_LIMITED"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	if e.HTTPStatus == 0 {
		if status, ok := defaultStatus[e.Code]; ok {
			return status
		}
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

// ErrorResponse is the wire shape of every failed request.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func (e *AppError) Response() ErrorResponse {
	return ErrorResponse{
		Success: false,
		Code:    e.Code,
		Message: e.Message,
		Data:    e.Details,
	}
}

func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(e.Response())
	return data
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

var defaultStatus = map[string]int{
	CodeNotFound:       http.StatusNotFound,
	CodeValidation:     http.StatusBadRequest,
	CodeNoAvailability: http.StatusBadRequest,
	CodeInvalidInput:   http.StatusBadRequest,
	CodeUnauthorized:   http.StatusUnauthorized,
	CodeForbidden:      http.StatusForbidden,
	CodeConflict:       http.StatusConflict,
	CodeRateLimited:    http.StatusTooManyRequests,
	CodeInternal:       http.StatusInternalServerError,
	CodeTimeout:        http.StatusGatewayTimeout,
	CodeUnavailable:    http.StatusServiceUnavailable,
}

func withCode(code, message string) *AppError {
	return New(code, message, defaultStatus[code])
}

func NotFound(resource string) *AppError {
	return withCode(CodeNotFound, resource+" not found")
}

func NotFoundWithID(resource, id string) *AppError {
	return NotFound(resource).WithDetails(map[string]any{"resource": resource, "id": id})
}

func Validation(message string, details map[string]any) *AppError {
	return withCode(CodeValidation, message).WithDetails(details)
}

// NoAvailability reports exhausted inventory. The request cannot succeed without changing its parameters.
func NoAvailability(message string, details map[string]any) *AppError {
	return withCode(CodeNoAvailability, message).WithDetails(details)
}

func InvalidInput(message string) *AppError { return withCode(CodeInvalidInput, message) }

func Unauthorized(message string) *AppError { return withCode(CodeUnauthorized, message) }

func Forbidden(message string) *AppError { return withCode(CodeForbidden, message) }

func Conflict(message string) *AppError { return withCode(CodeConflict, message) }

func Timeout(message string) *AppError { return withCode(CodeTimeout, message) }

func RateLimited(message string) *AppError { return withCode(CodeRateLimited, message) }

func Internal(message string, err error) *AppError {
	return Wrap(err, CodeInternal, message, defaultStatus[CodeInternal])
}

func Unavailable(service string) *AppError {
	return withCode(CodeUnavailable, service+" is temporarily unavailable")
}

// IsAppError reports whether err, or anything it wraps, is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
