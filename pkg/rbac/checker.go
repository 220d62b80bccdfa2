package rbac

import "fmt"

// Checker evaluates queries against subjects built from a validated Config.
// It is safe for concurrent use: all state is read-only after New.
type Checker struct {
	config Config

	roleIndex    map[Role]int
	roleGrants   map[Role]PermissionSet
	validPerms   map[Permission]bool
	validRoles   map[Role]bool
	orderedRoles []Role
}

// New creates a Checker from a validated Config.
func New(cfg Config) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rc := &Checker{config: cfg}
	rc.buildLookups()
	return rc, nil
}

// MustNew creates a Checker and panics on invalid config.
// Use this with known-good presets at init time.
func MustNew(cfg Config) *Checker {
	rc, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf(errMustNewPanicFmt, err))
	}
	return rc
}

func (rc *Checker) buildLookups() {
	cfg := rc.config

	rc.roleIndex = make(map[Role]int, len(cfg.Roles))
	rc.validRoles = make(map[Role]bool, len(cfg.Roles))
	rc.roleGrants = make(map[Role]PermissionSet, len(cfg.Roles))
	rc.orderedRoles = make([]Role, 0, len(cfg.Roles))
	for _, rd := range cfg.Roles {
		rc.roleIndex[rd.Name] = rd.Level
		rc.validRoles[rd.Name] = true
		rc.roleGrants[rd.Name] = NewPermissionSet(rd.Permissions...)
		rc.orderedRoles = append(rc.orderedRoles, rd.Name)
	}

	rc.validPerms = make(map[Permission]bool, len(cfg.Permissions))
	for _, p := range cfg.Permissions {
		rc.validPerms[p] = true
	}
}

// Evaluate runs the decision engine. It exists so callers holding a
// Checker do not need a second import path for the pure function.
func (rc *Checker) Evaluate(mode Mode, subject AuthSubject, query Query) Decision {
	return Evaluate(mode, subject, query)
}

// Subject builds an authenticated subject whose permissions are the role's
// default grants plus the explicit grants.
func (rc *Checker) Subject(id, email string, role Role, grants []Permission) AuthSubject {
	return AuthSubject{
		ID:            id,
		Email:         email,
		Role:          role,
		Permissions:   rc.roleGrants[role].Union(NewPermissionSet(grants...)),
		Authenticated: true,
	}
}

// Roles returns the configured roles in declaration order.
func (rc *Checker) Roles() []Role {
	out := make([]Role, len(rc.orderedRoles))
	copy(out, rc.orderedRoles)
	return out
}

// DefaultPermissions returns the permissions granted to every holder of role.
func (rc *Checker) DefaultPermissions(role Role) PermissionSet {
	return rc.roleGrants[role]
}

// IsRoleElevated checks if role1 has equal or higher privilege than role2.
func (rc *Checker) IsRoleElevated(role1, role2 Role) bool {
	level1, exists1 := rc.roleIndex[role1]
	level2, exists2 := rc.roleIndex[role2]
	if !exists1 || !exists2 {
		return false
	}
	return level1 >= level2
}

// CanAssignRole reports whether a holder of actor may grant target to
// another member. Roles can only be assigned up to the actor's own level.
func (rc *Checker) CanAssignRole(actor, target Role) bool {
	return rc.IsRoleElevated(actor, target)
}

// ValidateRole validates a role string against configured roles.
func (rc *Checker) ValidateRole(role string) (Role, error) {
	r := Role(role)
	if rc.validRoles[r] {
		return r, nil
	}
	return "", fmt.Errorf(errInvalidRoleFmt, ErrInvalidRole, role)
}

// ValidatePermissions validates explicit grants against configured values.
// An empty list is valid.
func (rc *Checker) ValidatePermissions(permissions []Permission) error {
	for _, perm := range permissions {
		if !rc.validPerms[perm] {
			return fmt.Errorf(errInvalidPermissionFmt, ErrInvalidPermission, perm)
		}
	}
	return nil
}
