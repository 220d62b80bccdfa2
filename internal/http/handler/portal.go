package handler

import (
	"net/http"

	"alumni-portal/pkg/rbac"
	"alumni-portal/pkg/rbac/echoadapter"
	"alumni-portal/pkg/rbac/guard"
	"alumni-portal/pkg/rbac/presets"
	"alumni-portal/pkg/session"

	"github.com/labstack/echo/v4"
)

type PageResponse struct {
	Page    string           `json:"page"`
	Title   string           `json:"title"`
	Subject *SubjectResponse `json:"subject,omitempty"`
}

type NavItem struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

type NavigationResponse struct {
	Items []NavItem `json:"items"`
}

// Action is a dashboard quick action. Disabled actions are fallbacks shown
// to members who lack the permission.
type Action struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Href     string `json:"href,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

type ActionsResponse struct {
	Actions []Action `json:"actions"`
}

type navEntry struct {
	item  NavItem
	guard guard.Inline[NavItem]
	// members entries are hidden from anonymous visitors.
	members bool
}

type actionEntry struct {
	action Action
	guard  guard.Inline[Action]
}

func defaultNavigation() []navEntry {
	hidden := func(r guard.Requirements) guard.Inline[NavItem] {
		return guard.Inline[NavItem]{Requirements: r, HideFallback: true}
	}

	return []navEntry{
		{item: NavItem{"Home", "/"}},
		{item: NavItem{"Directory", "/directory"}, members: true},
		{item: NavItem{"Events", "/events"}, members: true},
		{item: NavItem{"New event", "/events/new"}, members: true,
			guard: hidden(guard.Requirements{RequiredPermission: presets.PermissionCreateEvents})},
		{item: NavItem{"News", "/news"}, members: true},
		{item: NavItem{"Donations", "/donations"}, members: true},
		{item: NavItem{"New campaign", "/campaigns/new"}, members: true,
			guard: hidden(guard.Requirements{RequiredPermission: presets.PermissionCreateCampaigns})},
		{item: NavItem{"Mentorship", "/mentorship"}, members: true,
			guard: hidden(guard.Requirements{RequiredRoles: []rbac.Role{rbac.RoleAlumni, rbac.RoleStudent}})},
		{item: NavItem{"Messages", "/messages"}, members: true},
		{item: NavItem{"Admin", "/admin"}, members: true,
			guard: hidden(guard.Requirements{AdminOnly: true})},
		{item: NavItem{"Users", "/admin/users"}, members: true,
			guard: hidden(guard.Requirements{AdminOnly: true, RequiredPermission: presets.PermissionManageUsers})},
		{item: NavItem{"Roles", "/admin/roles"}, members: true,
			guard: hidden(guard.Requirements{AdminOnly: true, RequiredPermission: presets.PermissionManageRoles})},
		{item: NavItem{"System", "/admin/system"}, members: true,
			guard: hidden(guard.Requirements{SuperAdminOnly: true})},
	}
}

func defaultActions() []actionEntry {
	return []actionEntry{
		{
			action: Action{ID: "create_event", Label: "Create event", Href: "/events/new"},
			guard: guard.Inline[Action]{
				Requirements: guard.Requirements{RequiredPermission: presets.PermissionCreateEvents},
				Fallback:     Action{ID: "create_event", Label: "Ask an organiser to create an event", Disabled: true},
			},
		},
		{
			action: Action{ID: "post_news", Label: "Post news", Href: "/news"},
			guard: guard.Inline[Action]{
				Requirements: guard.Requirements{RequiredPermission: presets.PermissionCreateNews},
				Fallback:     Action{ID: "post_news", Label: "Suggest a story", Href: "/messages"},
			},
		},
		{
			action: Action{ID: "start_campaign", Label: "Start campaign", Href: "/campaigns/new"},
			guard: guard.Inline[Action]{
				Requirements: guard.Requirements{RequiredPermission: presets.PermissionCreateCampaigns},
				HideFallback: true,
			},
		},
		{
			action: Action{ID: "mentorship", Label: "Mentorship", Href: "/mentorship"},
			guard: guard.Inline[Action]{
				Requirements: guard.Requirements{RequiredRoles: []rbac.Role{rbac.RoleAlumni, rbac.RoleStudent}},
				HideFallback: true,
			},
		},
		{
			action: Action{ID: "announce", Label: "Send announcement", Href: "/messages"},
			guard: guard.Inline[Action]{
				Requirements: guard.Requirements{RequiredPermission: presets.PermissionSendAnnouncements},
				HideFallback: true,
			},
		},
		{
			action: Action{ID: "analytics", Label: "View analytics", Href: "/admin"},
			guard: guard.Inline[Action]{
				Requirements: guard.Requirements{AdminOnly: true, RequiredPermission: presets.PermissionViewAnalytics},
				Fallback:     Action{ID: "analytics", Label: "Analytics are available to administrators", Disabled: true},
			},
		},
		{
			action: Action{ID: "system", Label: "System settings", Href: "/admin/system"},
			guard: guard.Inline[Action]{
				Requirements: guard.Requirements{SuperAdminOnly: true},
				HideFallback: true,
			},
		},
	}
}

type PortalHandler struct {
	navigation []navEntry
	actions    []actionEntry
	login      NavItem
}

// NewPortalHandler creates the portal handler. Anonymous visitors get a
// sign-in entry pointing at loginPath, or guard.DefaultLoginPath when empty.
func NewPortalHandler(loginPath string) *PortalHandler {
	if loginPath == "" {
		loginPath = guard.DefaultLoginPath
	}
	return &PortalHandler{
		navigation: defaultNavigation(),
		actions:    defaultActions(),
		login:      NavItem{Label: "Sign in", Href: loginPath},
	}
}

// Page returns a handler describing a view. Access is decided by the route
// guard in front of it.
func (h *PortalHandler) Page(page, title string) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp := PageResponse{Page: page, Title: title}
		if subject := echoadapter.GetAuthSubject(c); subject.Authenticated {
			resp.Subject = newSessionResponse(session.Settled(subject)).Subject
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// Navigation lists the menu entries visible to the caller.
func (h *PortalHandler) Navigation(c echo.Context) error {
	subject := echoadapter.GetAuthSubject(c)
	signedIn := session.Settled(subject).IsAuthenticated()

	items := make([]NavItem, 0, len(h.navigation)+1)
	for _, entry := range h.navigation {
		if entry.members && !signedIn {
			continue
		}
		if item, ok := entry.guard.Render(subject, entry.item); ok {
			items = append(items, item)
		}
	}
	if !signedIn {
		items = append(items, h.login)
	}

	return c.JSON(http.StatusOK, NavigationResponse{Items: items})
}

// DashboardActions lists quick actions, with fallbacks where configured.
func (h *PortalHandler) DashboardActions(c echo.Context) error {
	subject := echoadapter.GetAuthSubject(c)

	actions := make([]Action, 0, len(h.actions))
	for _, entry := range h.actions {
		if action, ok := entry.guard.Render(subject, entry.action); ok {
			actions = append(actions, action)
		}
	}

	return c.JSON(http.StatusOK, ActionsResponse{Actions: actions})
}
