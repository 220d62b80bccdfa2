package rbac_test

import (
	"errors"
	"testing"

	"alumni-portal/pkg/rbac"
	"alumni-portal/pkg/rbac/presets"
)

func newChecker(t *testing.T) *rbac.Checker {
	t.Helper()
	rc, err := rbac.New(presets.AlumniNetwork())
	if err != nil {
		t.Fatalf("failed to create checker: %v", err)
	}
	return rc
}

// ============================================================================
// Role Hierarchy Tests
// ============================================================================

func TestIsRoleElevated(t *testing.T) {
	checker := newChecker(t)

	tests := []struct {
		name     string
		role1    rbac.Role
		role2    rbac.Role
		expected bool
	}{
		{"SuperAdmin >= Admin", rbac.RoleSuperAdmin, rbac.RoleAdmin, true},
		{"Admin >= Admin", rbac.RoleAdmin, rbac.RoleAdmin, true},
		{"Admin >= Alumni", rbac.RoleAdmin, rbac.RoleAlumni, true},
		{"Admin >= Student", rbac.RoleAdmin, rbac.RoleStudent, true},
		{"Admin < SuperAdmin", rbac.RoleAdmin, rbac.RoleSuperAdmin, false},
		{"Alumni >= Student", rbac.RoleAlumni, rbac.RoleStudent, true},
		{"Student < Alumni", rbac.RoleStudent, rbac.RoleAlumni, false},
		{"Invalid role1", rbac.Role("invalid"), rbac.RoleStudent, false},
		{"Invalid role2", rbac.RoleSuperAdmin, rbac.Role("invalid"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checker.IsRoleElevated(tt.role1, tt.role2)
			if result != tt.expected {
				t.Errorf("IsRoleElevated(%s, %s) = %v, expected %v", tt.role1, tt.role2, result, tt.expected)
			}
		})
	}
}

func TestCanAssignRole(t *testing.T) {
	checker := newChecker(t)

	tests := []struct {
		actor    rbac.Role
		target   rbac.Role
		expected bool
	}{
		{rbac.RoleSuperAdmin, rbac.RoleSuperAdmin, true},
		{rbac.RoleSuperAdmin, rbac.RoleAdmin, true},
		{rbac.RoleAdmin, rbac.RoleAdmin, true},
		{rbac.RoleAdmin, rbac.RoleAlumni, true},
		{rbac.RoleAdmin, rbac.RoleSuperAdmin, false},
		{rbac.RoleAlumni, rbac.RoleAdmin, false},
		{"invalid", rbac.RoleStudent, false},
		{rbac.RoleAdmin, "invalid", false},
	}

	for _, tt := range tests {
		if got := checker.CanAssignRole(tt.actor, tt.target); got != tt.expected {
			t.Errorf("CanAssignRole(%s, %s) = %v, expected %v", tt.actor, tt.target, got, tt.expected)
		}
	}
}

func TestValidateRole(t *testing.T) {
	checker := newChecker(t)

	tests := []struct {
		name      string
		role      string
		expected  rbac.Role
		shouldErr bool
	}{
		{"Valid student", "student", rbac.RoleStudent, false},
		{"Valid alumni", "alumni", rbac.RoleAlumni, false},
		{"Valid admin", "admin", rbac.RoleAdmin, false},
		{"Valid super admin", "super_admin", rbac.RoleSuperAdmin, false},
		{"Invalid role", "superuser", "", true},
		{"Wrong case", "Admin", "", true},
		{"Empty role", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := checker.ValidateRole(tt.role)
			if tt.shouldErr {
				if err == nil {
					t.Errorf("ValidateRole(%s) expected error, got nil", tt.role)
				}
				if !errors.Is(err, rbac.ErrInvalidRole) {
					t.Errorf("ValidateRole(%s) error should wrap ErrInvalidRole, got: %v", tt.role, err)
				}
			} else {
				if err != nil {
					t.Errorf("ValidateRole(%s) unexpected error: %v", tt.role, err)
				}
				if result != tt.expected {
					t.Errorf("ValidateRole(%s) = %s, expected %s", tt.role, result, tt.expected)
				}
			}
		})
	}
}

// ============================================================================
// Permission Tests
// ============================================================================

func TestValidatePermissions(t *testing.T) {
	checker := newChecker(t)

	tests := []struct {
		name        string
		permissions []rbac.Permission
		shouldErr   bool
	}{
		{"Valid permissions", []rbac.Permission{"create_events", "create_news"}, false},
		{"Empty grants", []rbac.Permission{}, false},
		{"Nil grants", nil, false},
		{"Invalid permission", []rbac.Permission{"create_events", "launch_rockets"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checker.ValidatePermissions(tt.permissions)
			if tt.shouldErr {
				if !errors.Is(err, rbac.ErrInvalidPermission) {
					t.Errorf("ValidatePermissions(%v) error should wrap ErrInvalidPermission, got: %v", tt.permissions, err)
				}
			} else if err != nil {
				t.Errorf("ValidatePermissions(%v) unexpected error: %v", tt.permissions, err)
			}
		})
	}
}

// ============================================================================
// Subject Tests
// ============================================================================

func TestSubjectMergesRoleGrants(t *testing.T) {
	checker := newChecker(t)

	admin := checker.Subject("u1", "a@example.edu", rbac.RoleAdmin, nil)
	if !admin.Authenticated {
		t.Error("Subject should be authenticated")
	}
	if !admin.Permissions.Has(presets.PermissionManageUsers) {
		t.Error("admin should inherit manage_users from the role")
	}
	if admin.Permissions.Has(presets.PermissionManageRoles) {
		t.Error("admin should not hold manage_roles by default")
	}

	granted := checker.Subject("u1", "a@example.edu", rbac.RoleAdmin, []rbac.Permission{presets.PermissionManageRoles})
	if !granted.Permissions.Has(presets.PermissionManageRoles) || !granted.Permissions.Has(presets.PermissionManageUsers) {
		t.Error("explicit grants should be added to role grants")
	}

	alumni := checker.Subject("u2", "b@example.edu", rbac.RoleAlumni, []rbac.Permission{presets.PermissionCreateEvents})
	if alumni.Permissions.Len() != 1 {
		t.Errorf("alumni should only hold the explicit grant, got %v", alumni.Permissions.List())
	}
}

func TestCheckerEvaluate(t *testing.T) {
	checker := newChecker(t)
	s := checker.Subject("u1", "", rbac.RoleAdmin, nil)

	d := checker.Evaluate(rbac.ModeRoute, s, rbac.AllOf{
		rbac.LegacyFlag{Flag: rbac.FlagAdminOnly},
		rbac.RequirePermission{Name: presets.PermissionManageUsers},
	})
	if !d.Allowed {
		t.Errorf("admin should reach user management: %+v", d)
	}
}

func TestRolesOrder(t *testing.T) {
	checker := newChecker(t)
	roles := checker.Roles()
	want := []rbac.Role{rbac.RoleStudent, rbac.RoleAlumni, rbac.RoleAdmin, rbac.RoleSuperAdmin}
	if len(roles) != len(want) {
		t.Fatalf("Roles() = %v, expected %v", roles, want)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Errorf("Roles()[%d] = %s, expected %s", i, roles[i], want[i])
		}
	}
	roles[0] = "mutated"
	if checker.Roles()[0] != rbac.RoleStudent {
		t.Error("Roles() must return a copy")
	}
}

func TestMustNewPanicsOnInvalidConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNew should panic on an invalid config")
		}
	}()
	rbac.MustNew(rbac.Config{})
}
