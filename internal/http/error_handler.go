package http

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "alumni-portal/pkg/errors"
	"alumni-portal/pkg/rbac"

	"github.com/labstack/echo/v4"
)

const (
	unknownRequestID   = "unknown"
	internalErrMessage = "Internal server error"
)

type errorStatus struct {
	targets []error
	code    int
	message string
}

// errorStatuses is checked in order; the first target matched with
// errors.Is wins.
var errorStatuses = []errorStatus{
	{[]error{apperrors.ErrNotFound}, http.StatusNotFound, "Resource not found"},
	{[]error{apperrors.ErrUnauthorized, rbac.ErrUnauthenticated}, http.StatusUnauthorized, "Unauthorized"},
	{[]error{apperrors.ErrInvalidCredentials}, http.StatusUnauthorized, "Invalid credentials"},
	{[]error{apperrors.ErrForbidden, rbac.ErrDenied}, http.StatusForbidden, "Forbidden"},
	{[]error{apperrors.ErrBadRequest}, http.StatusBadRequest, "Bad request"},
	{[]error{apperrors.ErrValidation}, http.StatusBadRequest, "Validation error"},
	{[]error{rbac.ErrInvalidRole, rbac.ErrInvalidPermission}, http.StatusBadRequest, "Unknown role or permission"},
	{[]error{apperrors.ErrConflict}, http.StatusConflict, "Resource already exists"},
	{[]error{apperrors.ErrRateLimited}, http.StatusTooManyRequests, "Too many requests"},
}

// statusFor resolves err to a response code and client-safe message.
func statusFor(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, fmt.Sprintf("%v", httpErr.Message)
	}

	code, message := http.StatusInternalServerError, internalErrMessage
	for _, s := range errorStatuses {
		if matchesAny(err, s.targets) {
			code, message = s.code, s.message
			break
		}
	}

	var appErr *apperrors.AppError
	if code < http.StatusInternalServerError && errors.As(err, &appErr) {
		message = appErr.Message
	}
	return code, message
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// CustomHTTPErrorHandler renders every error escaping a handler as
// {"error", "request_id"} JSON. Server errors never leak their detail.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, message := statusFor(err)

	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	if requestID == "" {
		requestID = unknownRequestID
	}

	fields := []interface{}{"request_id", requestID, "status", code, "path", c.Path(), "error", err.Error()}
	if code >= http.StatusInternalServerError {
		c.Logger().Error(append([]interface{}{"internal_server_error"}, fields...)...)
		message = internalErrMessage
	} else {
		c.Logger().Warn(append([]interface{}{"client_error"}, fields...)...)
	}

	if err := c.JSON(code, map[string]string{
		"error":      message,
		"request_id": requestID,
	}); err != nil {
		c.Logger().Error(err)
	}
}
