package guard

import "alumni-portal/pkg/rbac"

// Inline guards an in-page fragment of type T. It never redirects.
type Inline[T any] struct {
	Requirements
	// Fallback is rendered in place of the children on denial.
	Fallback T
	// HideFallback suppresses the fallback so a denial renders nothing.
	// Fallbacks are shown by default.
	HideFallback bool
}

// Render returns the content to show for subject and whether anything
// should be shown at all. Authentication is assumed to be settled upstream.
func (g Inline[T]) Render(subject rbac.AuthSubject, children T) (T, bool) {
	if g.Allows(subject) {
		return children, true
	}
	if g.HideFallback {
		var zero T
		return zero, false
	}
	return g.Fallback, true
}

// Allows reports whether the children would be rendered for subject.
func (g Inline[T]) Allows(subject rbac.AuthSubject) bool {
	return g.Decide(subject).Allowed
}

// Decide exposes the underlying decision for logging.
func (g Inline[T]) Decide(subject rbac.AuthSubject) rbac.Decision {
	return rbac.Evaluate(rbac.ModeInline, subject, g.Query())
}
