package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"alumni-portal/internal/auth"
	"alumni-portal/pkg/rbac"
	"alumni-portal/pkg/rbac/echoadapter"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRequestIDGenerated(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, RequestID()(okHandler)(c))
	id := rec.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, GetRequestID(c))
}

func TestRequestIDPropagatedWhenSafe(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "trace-abc.123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, RequestID()(okHandler)(c))
	assert.Equal(t, "trace-abc.123", rec.Header().Get(RequestIDHeader))
}

func TestRequestIDReplacesUnsafeValues(t *testing.T) {
	for _, bad := range []string{"has space", "line\nbreak", strings.Repeat("x", 65)} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, bad)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, RequestID()(okHandler)(c))
		assert.NotEqual(t, bad, rec.Header().Get(RequestIDHeader))
	}
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, SecurityHeaders(false)(okHandler)(c))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, SecurityHeaders(true)(okHandler)(c))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func csrfContext(method string, source auth.TokenSource, sessionID, token string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/api/admin/users/x/role", nil)
	if token != "" {
		req.Header.Set(CSRFHeaderName, token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if source != "" {
		c.Set(auth.ContextKeyTokenSource, source)
	}
	if sessionID != "" {
		echoadapter.SetAuthSubject(c, rbac.AuthSubject{ID: "u-1", Authenticated: true})
		c.Set(auth.ContextKeyClaims, &auth.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{ID: sessionID}})
	}
	return c, rec
}

func TestCSRFMiddleware(t *testing.T) {
	m := NewCSRFMiddleware(context.Background())
	defer m.Stop()

	token, err := m.GetOrCreateToken("s-1")
	require.NoError(t, err)
	again, err := m.GetOrCreateToken("s-1")
	require.NoError(t, err)
	assert.Equal(t, token, again, "tokens are reused until expiry")

	tests := []struct {
		name    string
		method  string
		source  auth.TokenSource
		session string
		token   string
		want    int
	}{
		{"safe method", http.MethodGet, auth.TokenSourceCookie, "s-1", "", http.StatusOK},
		{"bearer exempt", http.MethodPut, auth.TokenSourceBearer, "s-1", "", http.StatusOK},
		{"anonymous exempt", http.MethodPost, "", "", "", http.StatusOK},
		{"cookie without token", http.MethodPut, auth.TokenSourceCookie, "s-1", "", http.StatusForbidden},
		{"cookie wrong token", http.MethodPut, auth.TokenSourceCookie, "s-1", "nope", http.StatusForbidden},
		{"other session's token", http.MethodPut, auth.TokenSourceCookie, "s-2", token, http.StatusForbidden},
		{"cookie valid token", http.MethodPut, auth.TokenSourceCookie, "s-1", token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := csrfContext(tt.method, tt.source, tt.session, tt.token)
			require.NoError(t, m.Middleware()(okHandler)(c))
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	m.Revoke("s-1")
	c, rec := csrfContext(http.MethodPut, auth.TokenSourceCookie, "s-1", token)
	require.NoError(t, m.Middleware()(okHandler)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code, "revoked tokens are rejected")
}

func TestCSRFRevokeLeavesOtherSessions(t *testing.T) {
	m := NewCSRFMiddleware(context.Background())
	defer m.Stop()

	laptop, err := m.GetOrCreateToken("s-laptop")
	require.NoError(t, err)
	phone, err := m.GetOrCreateToken("s-phone")
	require.NoError(t, err)
	assert.NotEqual(t, laptop, phone)

	m.Revoke("s-laptop")

	c, rec := csrfContext(http.MethodPost, auth.TokenSourceCookie, "s-phone", phone)
	require.NoError(t, m.Middleware()(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = csrfContext(http.MethodPost, auth.TokenSourceCookie, "s-laptop", laptop)
	require.NoError(t, m.Middleware()(okHandler)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFTokenExpiry(t *testing.T) {
	m := NewCSRFMiddleware(context.Background())
	defer m.Stop()

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	first, err := m.GetOrCreateToken("s-1")
	require.NoError(t, err)

	clock = clock.Add(csrfTokenTTL + time.Second)
	assert.Equal(t, msgCSRFExpired, m.check("s-1", first))

	second, err := m.GetOrCreateToken("s-1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "an expired token is replaced")
	assert.Empty(t, m.check("s-1", second))
}

func TestCSRFSweepDropsExpired(t *testing.T) {
	m := NewCSRFMiddleware(context.Background())
	defer m.Stop()

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	_, err := m.GetOrCreateToken("old")
	require.NoError(t, err)
	clock = clock.Add(csrfTokenTTL / 2)
	_, err = m.GetOrCreateToken("fresh")
	require.NoError(t, err)

	clock = clock.Add(csrfTokenTTL/2 + time.Minute)
	m.sweep()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.NotContains(t, m.entries, "old")
	assert.Contains(t, m.entries, "fresh")
}
