package rbac

import "sort"

// Role represents a member's role in the alumni network
type Role string

// Built-in roles. The decision engine only knows these four; legacy flags
// are defined in terms of them.
const (
	RoleStudent    Role = "student"
	RoleAlumni     Role = "alumni"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Permission represents a named, fine-grained capability (e.g. "create_events")
type Permission string

// PermissionSet is an immutable set of permissions. The zero value and nil
// are both the empty set.
type PermissionSet struct {
	perms map[Permission]struct{}
}

// NewPermissionSet builds a set from the given permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	if len(perms) == 0 {
		return PermissionSet{}
	}
	m := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		if p == "" {
			continue
		}
		m[p] = struct{}{}
	}
	return PermissionSet{perms: m}
}

// Has reports whether p is in the set.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s.perms[p]
	return ok
}

// Len returns the number of permissions in the set.
func (s PermissionSet) Len() int {
	return len(s.perms)
}

// Union returns a new set containing the permissions of both sets.
func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	out := make([]Permission, 0, s.Len()+other.Len())
	out = append(out, s.List()...)
	out = append(out, other.List()...)
	return NewPermissionSet(out...)
}

// List returns the permissions in sorted order.
func (s PermissionSet) List() []Permission {
	out := make([]Permission, 0, len(s.perms))
	for p := range s.perms {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AuthSubject is the evaluated identity for a single request or render.
// ID and Email are carried for logging only.
type AuthSubject struct {
	ID            string
	Email         string
	Role          Role
	Permissions   PermissionSet
	Authenticated bool
}

// Anonymous returns the unauthenticated subject.
func Anonymous() AuthSubject {
	return AuthSubject{}
}

// Mode selects which consumption context a decision is made for.
type Mode int

const (
	// ModeRoute checks authentication before any other rule.
	ModeRoute Mode = iota
	// ModeInline assumes authentication was established upstream.
	ModeInline
)

// Flag is one of the legacy boolean guard categories.
type Flag string

const (
	FlagAdminOnly      Flag = "admin_only"
	FlagSuperAdminOnly Flag = "super_admin_only"
	FlagAlumniOnly     Flag = "alumni_only"
	FlagStudentOnly    Flag = "student_only"
)

// Query is the capability being checked. The set of implementations is
// closed: RequirePermission, AnyOfRoles, LegacyFlag and AllOf.
type Query interface {
	query()
}

// RequirePermission allows iff Name is in the subject's permission set.
type RequirePermission struct {
	Name Permission
}

// AnyOfRoles allows iff the subject's role is one of Roles.
type AnyOfRoles struct {
	Roles []Role
}

// LegacyFlag allows iff the role predicate for Flag holds.
type LegacyFlag struct {
	Flag Flag
}

// AllOf allows iff every query allows. An empty AllOf carries no
// constraints and allows.
type AllOf []Query

func (RequirePermission) query() {}
func (AnyOfRoles) query()        {}
func (LegacyFlag) query()        {}
func (AllOf) query()             {}

// RoleDefinition defines a role, its privilege level and the permissions
// every holder of the role is granted.
type RoleDefinition struct {
	Name        Role
	Level       int
	Permissions []Permission
}
