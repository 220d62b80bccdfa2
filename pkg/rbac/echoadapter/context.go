package echoadapter

import (
	"fmt"

	"alumni-portal/pkg/rbac"

	"github.com/labstack/echo/v4"
)

// Context keys used by the authentication middleware.
const (
	ContextKeyAuthSubject = "auth_subject"
)

// ExtractAuthSubject reads the subject stored by the authentication
// middleware. A request without a stored subject is anonymous. It takes a
// checker because role validation is config-driven.
func ExtractAuthSubject(c echo.Context, checker *rbac.Checker) (rbac.AuthSubject, error) {
	raw := c.Get(ContextKeyAuthSubject)
	if raw == nil {
		return rbac.Anonymous(), nil
	}

	subject, ok := raw.(rbac.AuthSubject)
	if !ok {
		return rbac.Anonymous(), fmt.Errorf("auth subject in context is %T, not rbac.AuthSubject", raw)
	}
	if !subject.Authenticated {
		return subject, nil
	}

	if _, err := checker.ValidateRole(string(subject.Role)); err != nil {
		return rbac.Anonymous(), err
	}
	return subject, nil
}

// GetAuthSubject returns the stored subject without validation, or the
// anonymous subject.
func GetAuthSubject(c echo.Context) rbac.AuthSubject {
	if subject, ok := c.Get(ContextKeyAuthSubject).(rbac.AuthSubject); ok {
		return subject
	}
	return rbac.Anonymous()
}

// SetAuthSubject stores an AuthSubject in the Echo context.
func SetAuthSubject(c echo.Context, subject rbac.AuthSubject) {
	c.Set(ContextKeyAuthSubject, subject)
}
