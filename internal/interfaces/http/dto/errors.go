package dto

import (
	"net/http"

	"github.com/stockroom/backend/internal/domain/shared"
)

// Domain error codes pass through to clients unchanged
const (
	ErrCodeNotFound            = shared.CodeNotFound
	ErrCodeInvalidInput        = shared.CodeInvalidInput
	ErrCodeValidation          = shared.CodeValidation
	ErrCodeInvalidState        = shared.CodeInvalidState
	ErrCodeQuantityExceeded    = shared.CodeQuantityExceeded
	ErrCodeConcurrencyConflict = shared.CodeConcurrencyConflict
	ErrCodeDuplicateRequest    = shared.CodeDuplicateRequest
	ErrCodeUnauthorized        = shared.CodeUnauthorized
)

// Transport error codes
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "INVALID_TOKEN"
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeQuantityExceeded:    http.StatusUnprocessableEntity,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeTokenExpired:        http.StatusUnauthorized,
	ErrCodeTokenInvalid:        http.StatusUnauthorized,
	ErrCodePayloadTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeInternal:            http.StatusInternalServerError,
}

// GetHTTPStatus returns the status for code, 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
