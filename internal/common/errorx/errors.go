package errorx

import (
	"errors"
	"fmt"
	"net/http"
)

// Category classifies an API error
type Category string

const (
	CategoryValidation     Category = "validation"
	CategoryAuthentication Category = "authentication"
	CategoryAuthorization  Category = "authorization"
	CategoryNotFound       Category = "not_found"
	CategoryConflict       Category = "conflict"
	CategoryLockout        Category = "lockout"
	CategoryInternal       Category = "internal"
)

// APIError represents a structured API error
type APIError struct {
	Code       string         `json:"code"`
	Message    string         `json:"error"`
	Category   Category       `json:"category"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Category, e.Message)
}

// WithDetail returns a copy of the error carrying an extra detail entry.
// The receiver is not mutated so the package-level sentinels stay shared.
func (e *APIError) WithDetail(key string, value any) *APIError {
	clone := *e
	clone.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	clone.Details[key] = value
	return &clone
}

// WithMessage returns a copy of the error with a different message
func (e *APIError) WithMessage(format string, args ...any) *APIError {
	clone := *e
	clone.Message = fmt.Sprintf(format, args...)
	return &clone
}

// Is lets errors.Is match any instance derived from the same sentinel
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

var (
	// Validation errors (E1xxx)
	ErrInvalidInput = &APIError{
		Code:       "E1001",
		Message:    "invalid input provided",
		Category:   CategoryValidation,
		HTTPStatus: http.StatusBadRequest,
	}
	ErrMissingField = &APIError{
		Code:       "E1002",
		Message:    "required field is missing",
		Category:   CategoryValidation,
		HTTPStatus: http.StatusBadRequest,
	}
	ErrPasswordMismatch = &APIError{
		Code:       "E1003",
		Message:    "passwords do not match",
		Category:   CategoryValidation,
		HTTPStatus: http.StatusBadRequest,
	}
	ErrInvalidIncidentKind = &APIError{
		Code:       "E1004",
		Message:    `invalid incident type, use "hardware" or "software"`,
		Category:   CategoryValidation,
		HTTPStatus: http.StatusBadRequest,
	}

	// Authentication errors (E2xxx)
	ErrInvalidCredentials = &APIError{
		Code:       "E2001",
		Message:    "invalid username or password",
		Category:   CategoryAuthentication,
		HTTPStatus: http.StatusUnauthorized,
	}
	ErrUnauthorized = &APIError{
		Code:       "E2002",
		Message:    "unauthorized",
		Category:   CategoryAuthentication,
		HTTPStatus: http.StatusUnauthorized,
	}
	ErrAccountDisabled = &APIError{
		Code:       "E2003",
		Message:    "user account is disabled",
		Category:   CategoryAuthentication,
		HTTPStatus: http.StatusForbidden,
	}

	// Lockout (E25xx), reported distinctly from invalid credentials
	ErrAccountLocked = &APIError{
		Code:       "E2501",
		Message:    "account locked, try again later",
		Category:   CategoryLockout,
		HTTPStatus: http.StatusForbidden,
	}

	// Authorization errors (E3xxx)
	ErrForbidden = &APIError{
		Code:       "E3001",
		Message:    "access denied",
		Category:   CategoryAuthorization,
		HTTPStatus: http.StatusForbidden,
	}
	ErrReadOnly = &APIError{
		Code:       "E3002",
		Message:    "read-only access, modification not allowed",
		Category:   CategoryAuthorization,
		HTTPStatus: http.StatusForbidden,
	}

	// Not-found errors (E4xxx)
	ErrNotFound = &APIError{
		Code:       "E4001",
		Message:    "resource not found",
		Category:   CategoryNotFound,
		HTTPStatus: http.StatusNotFound,
	}
	ErrIncidentNotFound = &APIError{
		Code:       "E4002",
		Message:    "incident not found",
		Category:   CategoryNotFound,
		HTTPStatus: http.StatusNotFound,
	}
	ErrEquipmentNotFound = &APIError{
		Code:       "E4003",
		Message:    "equipment not found",
		Category:   CategoryNotFound,
		HTTPStatus: http.StatusNotFound,
	}
	ErrUserNotFound = &APIError{
		Code:       "E4004",
		Message:    "user not found",
		Category:   CategoryNotFound,
		HTTPStatus: http.StatusNotFound,
	}
	ErrReportNotFound = &APIError{
		Code:       "E4005",
		Message:    "report not found",
		Category:   CategoryNotFound,
		HTTPStatus: http.StatusNotFound,
	}

	// Conflict errors (E5xxx)
	ErrConflict = &APIError{
		Code:       "E5001",
		Message:    "conflicting concurrent update",
		Category:   CategoryConflict,
		HTTPStatus: http.StatusConflict,
	}
	ErrSelfDelete = &APIError{
		Code:       "E5002",
		Message:    "you cannot delete your own account",
		Category:   CategoryConflict,
		HTTPStatus: http.StatusBadRequest,
	}

	// Internal errors (E9xxx)
	ErrInternal = &APIError{
		Code:       "E9001",
		Message:    "internal server error",
		Category:   CategoryInternal,
		HTTPStatus: http.StatusInternalServerError,
	}
)
