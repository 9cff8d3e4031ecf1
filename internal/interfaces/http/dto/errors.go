package dto

import (
	"net/http"
	"strings"
)

// General error codes used by the HTTP layer itself
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request body validation fails
	ErrCodeValidation = "VALIDATION_FAILED"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Lookups
	"NOT_FOUND":         http.StatusNotFound,
	"ACCOUNT_NOT_FOUND": http.StatusNotFound,

	// Business rule violations
	"INSUFFICIENT_FUNDS":     http.StatusUnprocessableEntity,
	"INVALID_PAYMENT_AMOUNT": http.StatusUnprocessableEntity,
	"ALREADY_RETURNED":       http.StatusUnprocessableEntity,
	"ACCOUNT_INACTIVE":       http.StatusUnprocessableEntity,
	"INVALID_STATE":          http.StatusUnprocessableEntity,
	"SAME_ACCOUNT_TRANSFER":  http.StatusUnprocessableEntity,

	// Conflicts
	"CONCURRENT_MODIFICATION": http.StatusConflict,
	"DUPLICATE_REQUEST":       http.StatusConflict,
	"RECEIVABLE_EXISTS":       http.StatusConflict,
	"PAYABLE_EXISTS":          http.StatusConflict,

	// Collaborators
	"EXTERNAL_COLLABORATOR_FAILURE": http.StatusBadGateway,

	// HTTP layer
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for a domain error code. Codes
// starting with INVALID_ are input problems and map to 400; anything
// unknown is treated as an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
