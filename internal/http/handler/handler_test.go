package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"alumni-portal/internal/audit"
	"alumni-portal/internal/auth"
	"alumni-portal/internal/domain/user"
	"alumni-portal/internal/repository/memory"
	"alumni-portal/pkg/password"
	"alumni-portal/pkg/rbac"
	"alumni-portal/pkg/rbac/echoadapter"
	"alumni-portal/pkg/rbac/presets"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct-horse-battery"

type stubTokens struct {
	issued []uuid.UUID
}

func (s *stubTokens) Issue(userID uuid.UUID, _ string, _ rbac.Role) (auth.Issued, error) {
	s.issued = append(s.issued, userID)
	return auth.Issued{
		Token:     "token-" + userID.String(),
		ID:        "sid-" + userID.String(),
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (s *stubTokens) Expiry() time.Duration { return time.Hour }

type stubRevoker struct {
	revoked []string
}

func (s *stubRevoker) Revoke(id string, _ time.Time) { s.revoked = append(s.revoked, id) }

type stubCSRF struct {
	tokens  map[string]string
	revoked []string
}

func newStubCSRF() *stubCSRF { return &stubCSRF{tokens: map[string]string{}} }

func (s *stubCSRF) GetOrCreateToken(sessionID string) (string, error) {
	if tok, ok := s.tokens[sessionID]; ok {
		return tok, nil
	}
	tok := "csrf-" + sessionID
	s.tokens[sessionID] = tok
	return tok, nil
}

func (s *stubCSRF) Revoke(sessionID string) {
	delete(s.tokens, sessionID)
	s.revoked = append(s.revoked, sessionID)
}

type fixture struct {
	e       *echo.Echo
	checker *rbac.Checker
	users   *memory.UserRepository
	audit   *audit.Logger
	tokens  *stubTokens
	revoker *stubRevoker
	csrf    *stubCSRF
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		e:       echo.New(),
		checker: rbac.MustNew(presets.AlumniNetwork()),
		users:   memory.NewUserRepository(),
		audit:   audit.NewLogger(io.Discard, 50),
		tokens:  &stubTokens{},
		revoker: &stubRevoker{},
		csrf:    newStubCSRF(),
	}
}

func (f *fixture) authHandler() *AuthHandler {
	return NewAuthHandler(f.users, f.tokens, f.revoker, f.csrf, f.checker, f.audit, CookieConfig{Name: "portal_session"}, "")
}

func (f *fixture) adminHandler() *AdminHandler {
	return NewAdminHandler(f.users, f.checker, f.audit, f.audit)
}

func (f *fixture) createUser(t *testing.T, email string, role rbac.Role, grants ...rbac.Permission) *user.User {
	t.Helper()
	hash, err := password.HashWithCost(testPassword, password.MinCost)
	require.NoError(t, err)
	u, err := f.users.Create(context.Background(), user.CreateUserInput{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Permissions:  grants,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) subject(u *user.User) rbac.AuthSubject {
	return f.checker.Subject(u.ID.String(), u.Email, u.Role, u.Permissions)
}

// request builds a context for method and target. A non-nil body is encoded
// as JSON.
func (f *fixture) request(method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return f.e.NewContext(req, rec), rec
}

func (f *fixture) as(c echo.Context, u *user.User) echo.Context {
	echoadapter.SetAuthSubject(c, f.subject(u))
	return c
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames(paramID)
	c.SetParamValues(id)
	return c
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)[jsonKeyError]
}

func ptr[T any](v T) *T { return &v }
