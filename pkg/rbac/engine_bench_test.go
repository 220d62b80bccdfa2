package rbac_test

import (
	"fmt"
	"testing"

	"alumni-portal/pkg/rbac"
	"alumni-portal/pkg/rbac/presets"
)

func benchQueries() []rbac.Query {
	return []rbac.Query{
		rbac.RequirePermission{Name: presets.PermissionManageUsers},
		rbac.AnyOfRoles{Roles: []rbac.Role{rbac.RoleAlumni, rbac.RoleStudent}},
		rbac.LegacyFlag{Flag: rbac.FlagAdminOnly},
		rbac.AllOf{
			rbac.LegacyFlag{Flag: rbac.FlagAdminOnly},
			rbac.RequirePermission{Name: presets.PermissionManageRoles},
		},
	}
}

// BenchmarkEvaluate measures a single decision per iteration
func BenchmarkEvaluate(b *testing.B) {
	checker := rbac.MustNew(presets.AlumniNetwork())
	s := checker.Subject("u", "u@example.com", rbac.RoleAdmin, nil)
	queries := benchQueries()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		checker.Evaluate(rbac.ModeRoute, s, queries[i%len(queries)])
	}
}

// BenchmarkEvaluateParallel measures decisions from many goroutines sharing
// one checker
func BenchmarkEvaluateParallel(b *testing.B) {
	checker := rbac.MustNew(presets.AlumniNetwork())
	subjects := make([]rbac.AuthSubject, len(allRoles))
	for i, role := range allRoles {
		subjects[i] = checker.Subject(fmt.Sprintf("u-%d", i), "u@example.com", role, nil)
	}
	queries := benchQueries()

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			checker.Evaluate(rbac.ModeInline, subjects[i%len(subjects)], queries[i%len(queries)])
			i++
		}
	})
}

// BenchmarkSubject measures building a subject from role defaults and grants,
// which happens once per authenticated request
func BenchmarkSubject(b *testing.B) {
	checker := rbac.MustNew(presets.AlumniNetwork())
	grants := []rbac.Permission{presets.PermissionCreateEvents, presets.PermissionCreateNews}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		checker.Subject("u", "u@example.com", rbac.RoleAlumni, grants)
	}
}
