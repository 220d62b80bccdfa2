package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"alumni-portal/internal/auth"
	"alumni-portal/pkg/rbac/echoadapter"
	"alumni-portal/pkg/token"

	"github.com/labstack/echo/v4"
)

const (
	// CSRFHeaderName carries the token on unsafe cookie-authenticated requests.
	CSRFHeaderName = "X-CSRF-Token"

	csrfTokenLength = 32
	csrfTokenTTL    = 24 * time.Hour
	sweepInterval   = time.Hour
)

const (
	msgCSRFNotIssued = "CSRF token not found"
	msgCSRFExpired   = "CSRF token expired"
	msgCSRFMissing   = "CSRF token required"
	msgCSRFMismatch  = "invalid CSRF token"
)

type csrfEntry struct {
	value     string
	expiresAt time.Time
}

func (e csrfEntry) live(now time.Time) bool { return now.Before(e.expiresAt) }

// CSRFMiddleware protects cookie-authenticated state changes. Tokens are
// per session, so ending one session leaves the user's others usable.
// Bearer requests are exempt because browsers never attach the header on
// their own.
type CSRFMiddleware struct {
	mu      sync.Mutex
	entries map[string]csrfEntry // session (token ID) -> token
	now     func() time.Time

	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewCSRFMiddleware starts a sweeper that drops expired tokens until ctx is
// done or Stop is called.
func NewCSRFMiddleware(ctx context.Context) *CSRFMiddleware {
	sweepCtx, cancel := context.WithCancel(ctx)
	m := &CSRFMiddleware{
		entries: make(map[string]csrfEntry),
		now:     time.Now,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go m.sweepLoop(sweepCtx)
	return m
}

// Stop ends the sweeper and waits for it to exit.
func (m *CSRFMiddleware) Stop() {
	m.cancel()
	<-m.stopped
}

func (m *CSRFMiddleware) sweepLoop(ctx context.Context) {
	defer close(m.stopped)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *CSRFMiddleware) sweep() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if !e.live(now) {
			delete(m.entries, id)
		}
	}
}

// GetOrCreateToken returns the session's live token, issuing a fresh one
// when none exists or the previous one expired.
func (m *CSRFMiddleware) GetOrCreateToken(sessionID string) (string, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[sessionID]; ok && e.live(now) {
		return e.value, nil
	}

	value, err := token.URLSafe(csrfTokenLength)
	if err != nil {
		return "", err
	}
	m.entries[sessionID] = csrfEntry{value: value, expiresAt: now.Add(csrfTokenTTL)}
	return value, nil
}

// Revoke forgets the session's token, typically on logout.
func (m *CSRFMiddleware) Revoke(sessionID string) {
	m.mu.Lock()
	delete(m.entries, sessionID)
	m.mu.Unlock()
}

// check returns the denial message for provided, or "" when it matches the
// session's live token.
func (m *CSRFMiddleware) check(sessionID, provided string) string {
	m.mu.Lock()
	e, ok := m.entries[sessionID]
	m.mu.Unlock()

	switch {
	case !ok:
		return msgCSRFNotIssued
	case !e.live(m.now()):
		return msgCSRFExpired
	case provided == "":
		return msgCSRFMissing
	case !token.Equal(provided, e.value):
		return msgCSRFMismatch
	}
	return ""
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Middleware enforces the token on unsafe methods of cookie sessions.
// It must run after authentication.
func (m *CSRFMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if safeMethod(c.Request().Method) || auth.GetTokenSource(c) != auth.TokenSourceCookie {
				return next(c)
			}

			if !echoadapter.GetAuthSubject(c).Authenticated {
				return next(c)
			}

			sessionID := ""
			if claims, err := auth.GetClaims(c); err == nil {
				sessionID = claims.ID
			}
			if msg := m.check(sessionID, c.Request().Header.Get(CSRFHeaderName)); msg != "" {
				return c.JSON(http.StatusForbidden, map[string]string{"error": msg})
			}
			return next(c)
		}
	}
}
