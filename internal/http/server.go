package http

import (
	"context"
	stdhttp "net/http"

	"alumni-portal/internal/audit"
	"alumni-portal/internal/auth"
	"alumni-portal/internal/config"
	"alumni-portal/internal/http/handler"
	"alumni-portal/internal/http/middleware"
	"alumni-portal/internal/repository/memory"
	"alumni-portal/pkg/metrics"
	"alumni-portal/pkg/profiling"
	"alumni-portal/pkg/rbac"
	"alumni-portal/pkg/rbac/echoadapter"
	"alumni-portal/pkg/rbac/guard"
	"alumni-portal/pkg/rbac/presets"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	jsonKeyStatus    = "status"
	statusOK         = "ok"
	requestBodyLimit = "1M"
)

type ServerDependencies struct {
	Config         *config.Config
	Checker        *rbac.Checker
	Users          *memory.UserRepository
	JWTService     *auth.JWTService
	Revocations    *auth.Revocations
	AuthMiddleware *auth.Middleware
	CSRFMiddleware *middleware.CSRFMiddleware
	AuditLogger    *audit.Logger
	Metrics        *metrics.Metrics
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

// page describes a guarded view.
type page struct {
	path  string
	name  string
	title string
	req   guard.Requirements
	// public pages skip the route guard entirely.
	public bool
}

var pages = []page{
	{path: "/", name: "home", title: "Home", public: true},
	{path: "/directory", name: "directory", title: "Alumni directory"},
	{path: "/events", name: "events", title: "Events"},
	{path: "/events/new", name: "event_new", title: "New event", req: guard.Requirements{RequiredPermission: presets.PermissionCreateEvents}},
	{path: "/news", name: "news", title: "News"},
	{path: "/donations", name: "donations", title: "Donations"},
	{path: "/campaigns/new", name: "campaign_new", title: "New campaign", req: guard.Requirements{RequiredPermission: presets.PermissionCreateCampaigns}},
	{path: "/mentorship", name: "mentorship", title: "Mentorship", req: guard.Requirements{RequiredRoles: []rbac.Role{rbac.RoleAlumni, rbac.RoleStudent}}},
	{path: "/messages", name: "messages", title: "Messages"},
	{path: "/admin", name: "admin", title: "Administration", req: guard.Requirements{AdminOnly: true}},
	{path: "/admin/users", name: "admin_users", title: "Users", req: guard.Requirements{AdminOnly: true, RequiredPermission: presets.PermissionManageUsers}},
	{path: "/admin/roles", name: "admin_roles", title: "Roles", req: guard.Requirements{AdminOnly: true, RequiredPermission: presets.PermissionManageRoles}},
	{path: "/admin/system", name: "admin_system", title: "System", req: guard.Requirements{SuperAdminOnly: true}},
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Set custom HTTP error handler
	e.HTTPErrorHandler = CustomHTTPErrorHandler

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID middleware (first, so all logs have request ID)
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders(deps.Config.Session.CookieSecure))
	e.Use(echomiddleware.Logger())
	// Outside Recover so panics are still counted as 500s.
	e.Use(deps.Metrics.Middleware())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(requestBodyLimit))

	// Restores the subject for every request; never rejects.
	e.Use(deps.AuthMiddleware.Authenticate())

	// Global rate limiting, keyed per member once authenticated
	globalRateLimiter := middleware.NewRateLimiter(deps.Config.RateLimit.RequestsPerSecond, deps.Config.RateLimit.Burst)
	e.Use(globalRateLimiter.Middleware())

	// Strict rate limiting for login attempts
	strictRateLimiter := middleware.NewStrictRateLimiter()

	checker := deps.Checker
	observers := []echoadapter.Observer{deps.AuditLogger, deps.Metrics}

	authHandler := handler.NewAuthHandler(deps.Users, deps.JWTService, deps.Revocations, deps.CSRFMiddleware, checker, deps.AuditLogger,
		handler.CookieConfig{Name: deps.Config.Session.CookieName, Secure: deps.Config.Session.CookieSecure},
		deps.Config.Guard.FallbackPath)
	adminHandler := handler.NewAdminHandler(deps.Users, checker, deps.AuditLogger, deps.AuditLogger)
	portalHandler := handler.NewPortalHandler(deps.Config.Guard.LoginPath)

	e.GET("/health", healthCheck)
	e.GET(deps.Config.Guard.LoginPath, authHandler.LoginPage)

	authGroup := e.Group("/auth")
	authGroup.POST("/login", authHandler.Login, strictRateLimiter.IPMiddleware())
	authGroup.POST("/logout", authHandler.Logout, deps.CSRFMiddleware.Middleware())
	authGroup.GET("/session", authHandler.Session)

	for _, p := range pages {
		h := portalHandler.Page(p.name, p.title)
		if p.public {
			e.GET(p.path, h)
			continue
		}
		e.GET(p.path, h, echoadapter.RouteGuard(checker, guard.Route{
			Requirements: p.req,
			LoginPath:    deps.Config.Guard.LoginPath,
			FallbackPath: deps.Config.Guard.FallbackPath,
		}, observers...))
	}

	api := e.Group("/api")
	api.Use(deps.CSRFMiddleware.Middleware())

	api.GET("/navigation", portalHandler.Navigation)
	api.GET("/dashboard/actions", portalHandler.DashboardActions, echoadapter.RequireAuthenticated(checker, observers...))

	manageUsers := echoadapter.RequireQuery(checker, rbac.RequirePermission{Name: presets.PermissionManageUsers}, observers...)
	manageRoles := echoadapter.RequireRequirements(checker, guard.Requirements{AdminOnly: true, RequiredPermission: presets.PermissionManageRoles}, observers...)
	viewAudit := echoadapter.RequireRequirements(checker, guard.Requirements{AdminOnly: true, RequiredPermission: presets.PermissionViewAnalytics}, observers...)

	admin := api.Group("/admin")
	admin.GET("/users", adminHandler.ListUsers, manageUsers)
	admin.POST("/users", adminHandler.CreateUser, manageUsers)
	admin.GET("/users/:id", adminHandler.GetUser, manageUsers)
	admin.PUT("/users/:id/role", adminHandler.UpdateRole, manageRoles)
	admin.PUT("/users/:id/permissions", adminHandler.UpdatePermissions, manageRoles)
	admin.GET("/audit", adminHandler.AuditEvents, viewAudit)

	adminOnly := echoadapter.RequireQuery(checker, rbac.LegacyFlag{Flag: rbac.FlagAdminOnly}, observers...)
	e.GET("/metrics/requests", deps.Metrics.Handler, adminOnly)
	e.GET("/metrics/memory", profiling.MemoryHandler, adminOnly)

	if deps.Config.Server.EnableProfiling {
		debug := e.Group("/debug")
		debug.Use(echoadapter.RequireQuery(checker, rbac.LegacyFlag{Flag: rbac.FlagSuperAdminOnly}, observers...))
		debug.Use(deps.CSRFMiddleware.Middleware())
		profiling.RegisterPprofRoutes(debug.Group("/pprof"))
		debug.POST("/gc", profiling.GCHandler)
	}

	return &Server{
		echo: e,
		deps: deps,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() stdhttp.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{
		jsonKeyStatus: statusOK,
	})
}
