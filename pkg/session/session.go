// Package session holds the authoritative authentication state for one
// client: the current subject, whether it is still being established, and a
// version that moves on every transition.
package session

import (
	"sync"

	"alumni-portal/pkg/rbac"
)

// Snapshot is an immutable view of the session at one version.
type Snapshot struct {
	Subject rbac.AuthSubject
	Loading bool
	Version uint64
}

// Settled returns a non-loading snapshot for subject. Request-scoped callers
// that already resolved the subject synchronously use it directly.
func Settled(subject rbac.AuthSubject) Snapshot {
	return Snapshot{Subject: subject}
}

// IsAuthenticated reports whether the snapshot carries a logged-in subject.
func (s Snapshot) IsAuthenticated() bool {
	return !s.Loading && s.Subject.Authenticated
}

// HasPermission reports whether the subject holds p.
func (s Snapshot) HasPermission(p rbac.Permission) bool {
	return s.allows(rbac.RequirePermission{Name: p})
}

// HasRole reports whether the subject has exactly role r.
func (s Snapshot) HasRole(r rbac.Role) bool {
	return s.HasAnyRole(r)
}

// HasAnyRole reports whether the subject's role is one of roles.
func (s Snapshot) HasAnyRole(roles ...rbac.Role) bool {
	return s.allows(rbac.AnyOfRoles{Roles: roles})
}

// IsAdmin is true for admins and super admins.
func (s Snapshot) IsAdmin() bool {
	return s.allows(rbac.LegacyFlag{Flag: rbac.FlagAdminOnly})
}

func (s Snapshot) IsSuperAdmin() bool {
	return s.allows(rbac.LegacyFlag{Flag: rbac.FlagSuperAdminOnly})
}

func (s Snapshot) IsAlumni() bool {
	return s.allows(rbac.LegacyFlag{Flag: rbac.FlagAlumniOnly})
}

func (s Snapshot) IsStudent() bool {
	return s.allows(rbac.LegacyFlag{Flag: rbac.FlagStudentOnly})
}

func (s Snapshot) allows(q rbac.Query) bool {
	if !s.IsAuthenticated() {
		return false
	}
	return rbac.Evaluate(rbac.ModeInline, s.Subject, q).Allowed
}

// Source is anything that can report the current session and signal when it
// changes. Store implements it.
type Source interface {
	Snapshot() Snapshot
	// Changed returns a channel that is closed at the next transition after
	// the call.
	Changed() <-chan struct{}
}

// Store is a concurrency-safe session holder. The zero value is an
// unauthenticated, settled session.
type Store struct {
	mu      sync.Mutex
	current Snapshot
	changed chan struct{}
}

// NewStore returns a store in the loading state, as at application start
// before stored credentials have been checked.
func NewStore() *Store {
	s := &Store{}
	s.current.Loading = true
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Changed returns a channel closed at the next transition.
func (s *Store) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.changed == nil {
		s.changed = make(chan struct{})
	}
	return s.changed
}

// Begin marks the session as being established (login or restore in flight).
// The previous subject is cleared so nothing can be decided against it.
func (s *Store) Begin() {
	s.transition(func(snap *Snapshot) bool {
		snap.Subject = rbac.Anonymous()
		snap.Loading = true
		return true
	})
}

// Establish settles the session on subject.
func (s *Store) Establish(subject rbac.AuthSubject) {
	s.transition(func(snap *Snapshot) bool {
		snap.Subject = subject
		snap.Loading = false
		return true
	})
}

// Refresh replaces the permission set of the current subject. It is a no-op
// for an unauthenticated session.
func (s *Store) Refresh(perms rbac.PermissionSet) {
	s.transition(func(snap *Snapshot) bool {
		if !snap.Subject.Authenticated {
			return false
		}
		snap.Subject.Permissions = perms
		return true
	})
}

// Logout settles the session as unauthenticated.
func (s *Store) Logout() {
	s.transition(func(snap *Snapshot) bool {
		snap.Subject = rbac.Anonymous()
		snap.Loading = false
		return true
	})
}

func (s *Store) transition(apply func(*Snapshot) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !apply(&s.current) {
		return
	}
	s.current.Version++

	if s.changed != nil {
		close(s.changed)
		s.changed = nil
	}
}
