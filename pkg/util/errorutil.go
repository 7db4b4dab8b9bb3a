package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

// NewTokenMissing signals a protected request without an authorization header.
func NewTokenMissing() error {
	return NewDomainError("TOKEN_MISSING", "token is not provided", http.StatusForbidden, nil)
}

// NewInvalidToken covers bad signatures and expired tokens alike.
func NewInvalidToken() error {
	return NewDomainError("INVALID_TOKEN", "invalid token", http.StatusForbidden, nil)
}

// NewRoleNotFound signals a live token referencing a role that no longer exists.
// This is a data-integrity fault, not a caller mistake.
func NewRoleNotFound(roleID string) error {
	return NewDomainError("ROLE_NOT_FOUND", "role not found", http.StatusInternalServerError,
		map[string]any{"role_id": roleID})
}

func NewInvalidCredentials(message string) error {
	return NewDomainError("INVALID_CREDENTIALS", message, http.StatusUnauthorized, nil)
}

// NewInvalidPermission rejects revoking a permission the user's role never granted.
func NewInvalidPermission(permission string) error {
	return NewDomainError("INVALID_PERMISSION", "invalid permission", http.StatusBadRequest,
		map[string]any{"permission": permission})
}

// NewPermissionNotRevoked rejects restoring a permission that is not revoked.
func NewPermissionNotRevoked(permission string) error {
	return NewDomainError("PERMISSION_NOT_REVOKED", "permission not revoked", http.StatusBadRequest,
		map[string]any{"permission": permission})
}

func NewDuplicateUsername(username string) error {
	return NewDomainError("DUPLICATE_USERNAME", "username already exists", http.StatusConflict,
		map[string]any{"username": username})
}

func NewRateLimited(message string) error {
	return NewDomainError("RATE_LIMITED", message, http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// CodeOf returns the machine-readable code for an error, if any.
func CodeOf(err error) string {
	if de := ToDomainError(err); de != nil {
		return de.Code
	}
	return ""
}
