package auth

import (
	"strings"

	"alumni-portal/internal/repository"
	apperrors "alumni-portal/pkg/errors"
	"alumni-portal/pkg/rbac"
	"alumni-portal/pkg/rbac/echoadapter"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Middleware struct {
	jwtService  *JWTService
	revocations *Revocations
	users       repository.UserLookup
	checker     *rbac.Checker
	cookieName  string
}

func NewMiddleware(jwtService *JWTService, revocations *Revocations, users repository.UserLookup, checker *rbac.Checker, cookieName string) *Middleware {
	return &Middleware{
		jwtService:  jwtService,
		revocations: revocations,
		users:       users,
		checker:     checker,
		cookieName:  cookieName,
	}
}

// Authenticate restores the request's subject from a bearer token or the
// session cookie. It never rejects: requests without a usable token proceed
// as anonymous and the guards decide.
func (m *Middleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			echoadapter.SetAuthSubject(c, rbac.Anonymous())

			token, source := m.extractToken(c)
			if token == "" {
				return next(c)
			}

			claims, err := m.jwtService.Verify(token)
			if err != nil {
				c.Logger().Debugf(msgSubjectRejectedFmt, err)
				return next(c)
			}
			if m.revocations.IsRevoked(claims.ID) {
				c.Logger().Debugf(msgSubjectRejectedFmt, msgTokenRevoked)
				return next(c)
			}

			subject, err := m.restore(c, claims)
			if err != nil {
				c.Logger().Warnf(msgSubjectRestoreFailedFmt, claims.UserID, err)
				return next(c)
			}

			c.Set(ContextKeyClaims, claims)
			c.Set(ContextKeyTokenSource, source)
			echoadapter.SetAuthSubject(c, subject)
			return next(c)
		}
	}
}

func (m *Middleware) restore(c echo.Context, claims *JWTClaims) (rbac.AuthSubject, error) {
	u, err := m.users.GetByID(c.Request().Context(), claims.UserID)
	if err != nil {
		return rbac.Anonymous(), err
	}

	role, err := m.checker.ValidateRole(string(u.Role))
	if err != nil {
		return rbac.Anonymous(), err
	}

	return m.checker.Subject(u.ID.String(), u.Email, role, u.Permissions), nil
}

func (m *Middleware) extractToken(c echo.Context) (string, TokenSource) {
	if token := extractBearerToken(c); token != "" {
		return token, TokenSourceBearer
	}
	if m.cookieName == "" {
		return "", ""
	}
	cookie, err := c.Cookie(m.cookieName)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(cookie.Value), TokenSourceCookie
}

func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(headerAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != bearerScheme {
		return ""
	}

	return parts[1]
}

// GetClaims returns the verified claims of the current session.
func GetClaims(c echo.Context) (*JWTClaims, error) {
	raw := c.Get(ContextKeyClaims)
	if raw == nil {
		return nil, apperrors.Unauthorized(msgUserNotAuthenticated)
	}

	claims, ok := raw.(*JWTClaims)
	if !ok {
		return nil, apperrors.InternalServer(msgInvalidClaimsCtx, nil)
	}

	return claims, nil
}

// GetTokenSource reports how the current session token was presented, or
// "" for anonymous requests.
func GetTokenSource(c echo.Context) TokenSource {
	source, _ := c.Get(ContextKeyTokenSource).(TokenSource)
	return source
}

func GetUserID(c echo.Context) (uuid.UUID, error) {
	claims, err := GetClaims(c)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}
