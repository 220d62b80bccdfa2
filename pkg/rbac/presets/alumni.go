package presets

import "alumni-portal/pkg/rbac"

const (
	PermissionManageUsers       rbac.Permission = "manage_users"
	PermissionManageRoles       rbac.Permission = "manage_roles"
	PermissionCreateEvents      rbac.Permission = "create_events"
	PermissionManageEvents      rbac.Permission = "manage_events"
	PermissionCreateNews        rbac.Permission = "create_news"
	PermissionManageNews        rbac.Permission = "manage_news"
	PermissionCreateCampaigns   rbac.Permission = "create_campaigns"
	PermissionManageDonations   rbac.Permission = "manage_donations"
	PermissionManageMentorship  rbac.Permission = "manage_mentorship"
	PermissionViewAnalytics     rbac.Permission = "view_analytics"
	PermissionSendAnnouncements rbac.Permission = "send_announcements"
)

func allPermissions() []rbac.Permission {
	return []rbac.Permission{
		PermissionManageUsers,
		PermissionManageRoles,
		PermissionCreateEvents,
		PermissionManageEvents,
		PermissionCreateNews,
		PermissionManageNews,
		PermissionCreateCampaigns,
		PermissionManageDonations,
		PermissionManageMentorship,
		PermissionViewAnalytics,
		PermissionSendAnnouncements,
	}
}

func adminPermissions() []rbac.Permission {
	return []rbac.Permission{
		PermissionManageUsers,
		PermissionCreateEvents,
		PermissionManageEvents,
		PermissionCreateNews,
		PermissionManageNews,
		PermissionCreateCampaigns,
		PermissionManageDonations,
		PermissionManageMentorship,
		PermissionViewAnalytics,
		PermissionSendAnnouncements,
	}
}

// AlumniNetwork returns the RBAC configuration for the alumni portal.
// Students and alumni get no default grants; anything they may create is
// granted explicitly by an administrator.
func AlumniNetwork() rbac.Config {
	return rbac.Config{
		Roles: []rbac.RoleDefinition{
			{Name: rbac.RoleStudent, Level: 1},
			{Name: rbac.RoleAlumni, Level: 2},
			{Name: rbac.RoleAdmin, Level: 3, Permissions: adminPermissions()},
			{Name: rbac.RoleSuperAdmin, Level: 4, Permissions: allPermissions()},
		},
		Permissions: allPermissions(),
	}
}

// Chapter is the configuration for a self-run alumni chapter, where alumni
// organise events and post news without an explicit grant.
func Chapter() rbac.Config {
	cfg := AlumniNetwork()
	cfg.Roles[1].Permissions = []rbac.Permission{
		PermissionCreateEvents,
		PermissionCreateNews,
	}
	return cfg
}
