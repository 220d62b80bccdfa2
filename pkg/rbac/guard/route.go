package guard

import (
	"context"

	"alumni-portal/pkg/rbac"
	"alumni-portal/pkg/session"
)

// Outcome is what a route guard tells the presentation layer to do.
type Outcome int

const (
	// OutcomeLoading means the session is not settled yet; show a neutral
	// loading state and decide later.
	OutcomeLoading Outcome = iota
	OutcomeRender
	OutcomeRedirect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeRender:
		return "render"
	case OutcomeRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// RouteResult is the outcome of a route guard for one snapshot.
type RouteResult struct {
	Outcome  Outcome
	Location string
	Decision rbac.Decision
	Version  uint64
}

// Route guards navigation to a view.
type Route struct {
	Requirements
	// FallbackPath receives subjects that fail a permission, role or flag
	// check. Defaults to DefaultFallbackPath.
	FallbackPath string
	// LoginPath receives unauthenticated subjects. Defaults to
	// DefaultLoginPath.
	LoginPath string
}

func (g Route) fallbackPath() string {
	if g.FallbackPath == "" {
		return DefaultFallbackPath
	}
	return g.FallbackPath
}

func (g Route) loginPath() string {
	if g.LoginPath == "" {
		return DefaultLoginPath
	}
	return g.LoginPath
}

// Decide evaluates the guard against one snapshot without blocking.
func (g Route) Decide(snap session.Snapshot) RouteResult {
	if snap.Loading {
		return RouteResult{Outcome: OutcomeLoading, Version: snap.Version}
	}

	d := rbac.Evaluate(rbac.ModeRoute, snap.Subject, g.Query())
	res := RouteResult{Decision: d, Version: snap.Version}
	switch {
	case d.Allowed:
		res.Outcome = OutcomeRender
	case d.Reason == rbac.ReasonUnauthenticated:
		res.Outcome = OutcomeRedirect
		res.Location = g.loginPath()
	default:
		res.Outcome = OutcomeRedirect
		res.Location = g.fallbackPath()
	}
	return res
}

// Await blocks until the source is settled and returns a decision that is
// still current at return time. If the session moves (for example a logout)
// between evaluation and commit, the stale result is discarded and the
// guard is evaluated again against the newer snapshot.
func (g Route) Await(ctx context.Context, src session.Source) (RouteResult, error) {
	for {
		// Subscribe before reading so a transition in between is not missed.
		changed := src.Changed()
		snap := src.Snapshot()

		if !snap.Loading {
			res := g.Decide(snap)
			if src.Snapshot().Version == res.Version {
				return res, nil
			}
			continue
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return RouteResult{Outcome: OutcomeLoading, Version: snap.Version}, ctx.Err()
		}
	}
}
