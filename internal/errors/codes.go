package errors

import "net/http"

// ErrorCode is the machine-readable error kind carried in every API error body.
type ErrorCode string

const (
	ErrNotFound         ErrorCode = "NOT_FOUND"
	ErrUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrForbidden        ErrorCode = "FORBIDDEN"
	ErrPermissionDenied ErrorCode = "PERMISSION_DENIED"
	ErrConflict         ErrorCode = "CONFLICT"
	ErrDuplicate        ErrorCode = "DUPLICATE"
	ErrValidation       ErrorCode = "VALIDATION_ERROR"
	ErrBadRequest       ErrorCode = "BAD_REQUEST"
	ErrInternalError    ErrorCode = "INTERNAL_ERROR"
	ErrRateLimited      ErrorCode = "RATE_LIMITED"
	ErrServiceUnavail   ErrorCode = "SERVICE_UNAVAILABLE"
)

// StatusCodeMap maps ErrorCode to HTTP status code
var StatusCodeMap = map[ErrorCode]int{
	ErrNotFound:         http.StatusNotFound,
	ErrUnauthorized:     http.StatusUnauthorized,
	ErrForbidden:        http.StatusForbidden,
	ErrPermissionDenied: http.StatusForbidden,
	ErrConflict:         http.StatusConflict,
	ErrDuplicate:        http.StatusConflict,
	ErrValidation:       http.StatusUnprocessableEntity,
	ErrBadRequest:       http.StatusBadRequest,
	ErrInternalError:    http.StatusInternalServerError,
	ErrRateLimited:      http.StatusTooManyRequests,
	ErrServiceUnavail:   http.StatusServiceUnavailable,
}

// StatusCode returns the HTTP status code for this error code
func (e ErrorCode) StatusCode() int {
	if code, ok := StatusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
