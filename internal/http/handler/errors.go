package handler

import (
	"errors"
	"net/http"

	apperrors "alumni-portal/pkg/errors"
	"alumni-portal/pkg/rbac"

	"github.com/labstack/echo/v4"
)

// MapToPublicError maps internal errors to public-facing HTTP status codes and messages
// This prevents information disclosure by providing consistent, generic error messages
func MapToPublicError(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, apperrors.ErrForbidden), errors.Is(err, rbac.ErrDenied):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "resource conflict"
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, rbac.ErrInvalidRole):
		return http.StatusBadRequest, msgInvalidRole
	case errors.Is(err, rbac.ErrInvalidPermission):
		return http.StatusBadRequest, msgInvalidPermission
	default:
		// Never expose internal errors to clients
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondWithMappedError responds with a mapped error, preventing information disclosure
func RespondWithMappedError(c echo.Context, err error) error {
	status, msg := MapToPublicError(err)
	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("request failed: %v", err)
	}
	return respondError(c, status, msg)
}
