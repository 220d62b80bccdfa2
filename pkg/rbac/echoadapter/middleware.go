package echoadapter

import (
	"log"
	"net/http"

	"alumni-portal/pkg/rbac"
	"alumni-portal/pkg/rbac/guard"
	"alumni-portal/pkg/session"

	"github.com/labstack/echo/v4"
)

// Observer is told about every decision a guard middleware makes.
type Observer interface {
	ObserveDecision(c echo.Context, d rbac.Decision)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(c echo.Context, d rbac.Decision)

func (f ObserverFunc) ObserveDecision(c echo.Context, d rbac.Decision) { f(c, d) }

func notify(observers []Observer, c echo.Context, d rbac.Decision) {
	for _, o := range observers {
		o.ObserveDecision(c, d)
	}
}

func subjectOrAnonymous(c echo.Context, checker *rbac.Checker) rbac.AuthSubject {
	subject, err := ExtractAuthSubject(c, checker)
	if err != nil {
		log.Printf("rbac: auth extraction failed: %v", err)
		return rbac.Anonymous()
	}
	return subject
}

// RouteGuard creates middleware for page navigation. Denied requests are
// redirected: unauthenticated ones to the login path, the rest to the
// fallback path.
func RouteGuard(checker *rbac.Checker, g guard.Route, observers ...Observer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject := subjectOrAnonymous(c, checker)

			res := g.Decide(session.Settled(subject))
			notify(observers, c, res.Decision)

			switch res.Outcome {
			case guard.OutcomeRender:
				return next(c)
			case guard.OutcomeRedirect:
				log.Printf("rbac: route %s denied (%s): %s", c.Request().URL.Path, res.Decision.Reason, res.Decision.Detail)
				return c.Redirect(http.StatusFound, res.Location)
			default:
				// Request-scoped subjects are always settled.
				return c.JSON(http.StatusServiceUnavailable, map[string]string{
					"error": "Session not ready",
				})
			}
		}
	}
}

// RequireQuery creates middleware for JSON API routes.
// Returns 401 Unauthorized for anonymous subjects and 403 Forbidden when the
// query denies.
func RequireQuery(checker *rbac.Checker, q rbac.Query, observers ...Observer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject := subjectOrAnonymous(c, checker)

			d := checker.Evaluate(rbac.ModeRoute, subject, q)
			notify(observers, c, d)

			if d.Allowed {
				return next(c)
			}

			log.Printf("rbac: authorization denied: %v", d.Err())
			if d.Reason == rbac.ReasonUnauthenticated {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "Unauthorized",
				})
			}
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "Forbidden",
			})
		}
	}
}

// RequireRequirements is RequireQuery for guard-style requirements.
func RequireRequirements(checker *rbac.Checker, r guard.Requirements, observers ...Observer) echo.MiddlewareFunc {
	return RequireQuery(checker, r.Query(), observers...)
}

// RequireAuthenticated rejects anonymous requests with 401.
func RequireAuthenticated(checker *rbac.Checker, observers ...Observer) echo.MiddlewareFunc {
	return RequireQuery(checker, rbac.AllOf{}, observers...)
}
