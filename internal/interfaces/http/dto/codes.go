package dto

import (
	"net/http"
	"strings"
)

// Wire error codes. Clients switch on these, so they never change once shipped.
const (
	ErrCodeInternal        = "ERR_INTERNAL"
	ErrCodeUnavailable     = "ERR_UNAVAILABLE"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeInvalidInput        = "ERR_INVALID_INPUT"
)

var wireStatus = map[string]int{
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeUnavailable:         http.StatusServiceUnavailable,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodeTokenExpired:        http.StatusUnauthorized,
	ErrCodeTokenInvalid:        http.StatusUnauthorized,
	ErrCodeTokenRevoked:        http.StatusUnauthorized,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeInvalidInput:        http.StatusBadRequest,
}

// generic domain codes are sent in their ERR_ form
var aliases = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"TOKEN_EXPIRED":        ErrCodeTokenExpired,
	"INVALID_TOKEN":        ErrCodeTokenInvalid,
	"TOKEN_REVOKED":        ErrCodeTokenRevoked,
	"RATE_LIMITED":         ErrCodeRateLimited,
}

// specific domain codes keep their name on the wire
var domainStatus = map[string]int{
	"INVALID_CREDENTIALS":   http.StatusUnauthorized,
	"REFRESH_LIMIT":         http.StatusUnauthorized,
	"ACCOUNT_DEACTIVATED":   http.StatusForbidden,
	"SELF_ACTION_FORBIDDEN": http.StatusForbidden,
	"EMAIL_EXISTS":          http.StatusConflict,
	"SLUG_EXISTS":           http.StatusConflict,
	"ALREADY_ACTIVE":        http.StatusUnprocessableEntity,
	"ALREADY_DEACTIVATED":   http.StatusUnprocessableEntity,
	"AUDIT_NOT_COMPLETED":   http.StatusUnprocessableEntity,
	"NO_ITEMS":              http.StatusUnprocessableEntity,
	"CONSENT_REQUIRED":      http.StatusBadRequest,
	"CONTACT_REQUIRED":      http.StatusBadRequest,
	"BATCH_TOO_LARGE":       http.StatusBadRequest,
	"EMPTY_BATCH":           http.StatusBadRequest,
	"EMPTY_BODY":            http.StatusBadRequest,
	"EMPTY_GENERATION":      http.StatusBadGateway,
	"PASSWORD_HASH_ERROR":   http.StatusInternalServerError,
}

// Resolve maps an error code raised anywhere in the app to the code sent to
// clients and its HTTP status. Unlisted INVALID_* codes are 400, anything
// else unknown is 500.
func Resolve(code string) (wire string, status int) {
	if alias, ok := aliases[code]; ok {
		code = alias
	}
	if s, ok := wireStatus[code]; ok {
		return code, s
	}
	if s, ok := domainStatus[code]; ok {
		return code, s
	}
	if strings.HasPrefix(code, "INVALID_") {
		return code, http.StatusBadRequest
	}
	return code, http.StatusInternalServerError
}
