// Package guard implements the two ways an authorization decision is
// consumed: route guards that redirect on denial, and inline guards that
// swap in fallback content. Both compile their requirements to one
// rbac.Query and call rbac.Evaluate.
package guard

import "alumni-portal/pkg/rbac"

const (
	DefaultFallbackPath = "/"
	DefaultLoginPath    = "/login"
)

// Requirements are the capability parameters shared by both guard kinds.
// Every supplied requirement must pass.
type Requirements struct {
	AdminOnly          bool
	SuperAdminOnly     bool
	AlumniOnly         bool
	StudentOnly        bool
	RequiredPermission rbac.Permission
	RequiredRoles      []rbac.Role
}

// Query compiles the requirements into a single conjunctive query,
// evaluated permission first, then the role list, then legacy flags. The
// first failing part is the reported one.
func (r Requirements) Query() rbac.Query {
	q := rbac.AllOf{}
	if r.RequiredPermission != "" {
		q = append(q, rbac.RequirePermission{Name: r.RequiredPermission})
	}
	if len(r.RequiredRoles) > 0 {
		q = append(q, rbac.AnyOfRoles{Roles: r.RequiredRoles})
	}
	if r.AdminOnly {
		q = append(q, rbac.LegacyFlag{Flag: rbac.FlagAdminOnly})
	}
	if r.SuperAdminOnly {
		q = append(q, rbac.LegacyFlag{Flag: rbac.FlagSuperAdminOnly})
	}
	if r.AlumniOnly {
		q = append(q, rbac.LegacyFlag{Flag: rbac.FlagAlumniOnly})
	}
	if r.StudentOnly {
		q = append(q, rbac.LegacyFlag{Flag: rbac.FlagStudentOnly})
	}
	return q
}
