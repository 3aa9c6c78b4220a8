package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error represents a structured error returned by the storefront backend.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// wireError matches the two body shapes the backend uses for failures:
// a flat {"message": "..."} and a wrapped {"error": {"code", "message"}}.
type wireError struct {
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FromResponse builds an Error from a non-2xx response body.
func FromResponse(statusCode int, body []byte) *Error {
	e := &Error{
		StatusCode: statusCode,
		Code:       codeForStatus(statusCode),
		Message:    http.StatusText(statusCode),
	}

	var wire wireError
	if err := json.Unmarshal(body, &wire); err != nil {
		return e
	}
	if wire.Error != nil {
		if wire.Error.Code != "" {
			e.Code = wire.Error.Code
		}
		if wire.Error.Message != "" {
			e.Message = wire.Error.Message
		}
		return e
	}
	if wire.Message != "" {
		e.Message = wire.Message
	}
	return e
}

func codeForStatus(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	default:
		if statusCode >= 500 {
			return "INTERNAL_ERROR"
		}
		return "API_ERROR"
	}
}

// Unauthorized creates a 401 error for client-side short circuits.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
	}
}

// IsUnauthorized reports whether err is an API error with status 401.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsNotFound reports whether err is an API error with status 404.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func hasStatus(err error, statusCode int) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == statusCode
	}
	return false
}
