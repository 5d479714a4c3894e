package dto

import (
	"net/http"

	"github.com/wms/backend/internal/domain/shared"
)

// Codes produced by the HTTP layer itself. Domain codes are passed through
// unchanged.
const (
	// ErrCodeInternal is used for unexpected failures
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeValidation is used when request binding fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeRequestTooLarge is used when the body exceeds the limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeTokenExpired is used when the bearer token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the bearer token cannot be verified
	ErrCodeTokenInvalid = "INVALID_TOKEN"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Lookups -> 404
	shared.CodeNotFound:         http.StatusNotFound,
	shared.CodeCustomerNotFound: http.StatusNotFound,
	shared.CodePartNotFound:     http.StatusNotFound,
	shared.CodePONotFound:       http.StatusNotFound,
	shared.CodeItemNotFound:     http.StatusNotFound,
	shared.CodeInvalidScanCode:  http.StatusNotFound, // names no item, code kept for the scanner UI

	shared.CodeInactiveCustomer: http.StatusForbidden,

	// Input -> 400
	shared.CodeInvalidQuantity:      http.StatusBadRequest,
	shared.CodeInvalidInput:         http.StatusBadRequest,
	shared.CodePOPartMismatch:       http.StatusBadRequest,
	shared.CodeInvalidStatusRequest: http.StatusBadRequest,
	ErrCodeValidation:               http.StatusBadRequest,
	ErrCodeBadRequest:               http.StatusBadRequest,

	// Auth -> 401
	shared.CodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeTokenInvalid:     http.StatusUnauthorized,

	// Conflicts with stored state -> 409
	shared.CodeDuplicateKey:        http.StatusConflict,
	shared.CodePOInUse:             http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,

	// Business rules -> 422
	shared.CodePOCancelled:         http.StatusUnprocessableEntity,
	shared.CodeOverDelivery:        http.StatusUnprocessableEntity,
	shared.CodeInvalidTransition:   http.StatusUnprocessableEntity,
	shared.CodeInvalidScanOutState: http.StatusUnprocessableEntity,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	shared.CodeGenerationExhausted: http.StatusServiceUnavailable,

	shared.CodeStorage: http.StatusInternalServerError,
	ErrCodeInternal:    http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
