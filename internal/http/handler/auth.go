package handler

import (
	"net/http"
	"strings"
	"time"

	"alumni-portal/internal/audit"
	"alumni-portal/internal/auth"
	"alumni-portal/pkg/password"
	"alumni-portal/pkg/rbac"
	"alumni-portal/pkg/rbac/echoadapter"
	"alumni-portal/pkg/rbac/guard"
	"alumni-portal/pkg/session"

	"github.com/labstack/echo/v4"
)

// Pre-computed bcrypt hash (cost 12) used to equalize timing on failed lookups.
// The actual plaintext is irrelevant; it only keeps response time constant.
const dummyBcryptHash = "$2a$12$dWR5CQpS4zNHLavLSIr4o.P6QDQEUJKv7mJ7WekUHHqyRSRMJzH0S"

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	users   UserGetter
	tokens  TokenIssuer
	revoker TokenRevoker
	csrf    CSRFTokenManager
	checker *rbac.Checker
	audit   AuditLogger
	cookie  CookieConfig
	home    string
}

// NewAuthHandler creates the session handler. Signed-in visitors of the
// login page are sent to homePath, or guard.DefaultFallbackPath when empty.
func NewAuthHandler(users UserGetter, tokens TokenIssuer, revoker TokenRevoker, csrf CSRFTokenManager, checker *rbac.Checker, auditLogger AuditLogger, cookie CookieConfig, homePath string) *AuthHandler {
	if homePath == "" {
		homePath = guard.DefaultFallbackPath
	}
	return &AuthHandler{
		users:   users,
		tokens:  tokens,
		revoker: revoker,
		csrf:    csrf,
		checker: checker,
		audit:   auditLogger,
		cookie:  cookie,
		home:    homePath,
	}
}

type LoginResponse struct {
	Token   string          `json:"token"`
	Session SessionResponse `json:"session"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		password.Verify("", dummyBcryptHash)
		return h.loginFailed(c, req.Email)
	}

	u, err := h.users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		// Run bcrypt against a dummy hash to prevent timing oracle.
		// Without this, "user not found" returns in ~1ms while
		// "wrong password" takes ~200ms, leaking email existence.
		password.Verify(req.Password, dummyBcryptHash)
		return h.loginFailed(c, req.Email)
	}

	if !password.Verify(req.Password, u.PasswordHash) {
		return h.loginFailed(c, req.Email)
	}

	role, err := h.checker.ValidateRole(string(u.Role))
	if err != nil {
		c.Logger().Errorf("user %s has unknown role %q", u.ID, u.Role)
		return h.loginFailed(c, req.Email)
	}

	issued, err := h.tokens.Issue(u.ID, u.Email, role)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgGenerateTokenFail)
	}

	subject := h.checker.Subject(u.ID.String(), u.Email, role, u.Permissions)
	csrfToken, err := h.csrf.GetOrCreateToken(issued.ID)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgCSRFTokenFail)
	}

	c.SetCookie(h.sessionCookie(issued.Token, issued.ExpiresAt))
	echoadapter.SetAuthSubject(c, subject)
	_ = h.audit.LogFromContext(c, audit.ResourceTypeSession, "", audit.ActionLogin, audit.StatusSuccess, nil)

	resp := newSessionResponse(session.Settled(subject))
	resp.CSRFToken = csrfToken
	return c.JSON(http.StatusOK, LoginResponse{
		Token:   issued.Token,
		Session: resp,
	})
}

func (h *AuthHandler) loginFailed(c echo.Context, email string) error {
	_ = h.audit.LogFromContext(c, audit.ResourceTypeSession, "", audit.ActionLogin, audit.StatusFailure, map[string]any{
		"email": email,
	})
	return respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
}

// Logout ends the current session. It succeeds for anonymous callers so
// clients can always clear local state.
func (h *AuthHandler) Logout(c echo.Context) error {
	if claims, err := auth.GetClaims(c); err == nil {
		var expires time.Time
		if claims.ExpiresAt != nil {
			expires = claims.ExpiresAt.Time
		} else {
			expires = time.Now().Add(h.tokens.Expiry())
		}
		h.revoker.Revoke(claims.ID, expires)
		h.csrf.Revoke(claims.ID)
		_ = h.audit.LogFromContext(c, audit.ResourceTypeSession, "", audit.ActionLogout, audit.StatusSuccess, nil)
	}

	expired := h.sessionCookie("", time.Unix(0, 0))
	expired.MaxAge = -1
	c.SetCookie(expired)
	echoadapter.SetAuthSubject(c, rbac.Anonymous())

	return respondMessage(c, http.StatusOK, msgLoggedOut)
}

// Session reports the restored subject and its predicates.
func (h *AuthHandler) Session(c echo.Context) error {
	subject := echoadapter.GetAuthSubject(c)
	resp := newSessionResponse(session.Settled(subject))

	claims, err := auth.GetClaims(c)
	if subject.Authenticated && err == nil && auth.GetTokenSource(c) == auth.TokenSourceCookie {
		token, err := h.csrf.GetOrCreateToken(claims.ID)
		if err != nil {
			return respondError(c, http.StatusInternalServerError, msgCSRFTokenFail)
		}
		resp.CSRFToken = token
	}

	return c.JSON(http.StatusOK, resp)
}

// LoginPage is the landing target of unauthenticated redirects.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if echoadapter.GetAuthSubject(c).Authenticated {
		return c.Redirect(http.StatusFound, h.home)
	}
	return c.JSON(http.StatusOK, PageResponse{Page: "login", Title: "Sign in"})
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
