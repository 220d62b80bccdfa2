package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"alumni-portal/internal/audit"
	"alumni-portal/internal/domain/user"
	apperrors "alumni-portal/pkg/errors"
	"alumni-portal/pkg/password"
	"alumni-portal/pkg/rbac"
	"alumni-portal/pkg/rbac/echoadapter"
	"alumni-portal/pkg/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AdminHandler manages the member directory. Routes are expected to sit
// behind a guard requiring manage_users or manage_roles; the handler adds
// the level checks that depend on the target member.
type AdminHandler struct {
	users   UserRepository
	checker *rbac.Checker
	audit   AuditLogger
	events  AuditQuerier
}

func NewAdminHandler(users UserRepository, checker *rbac.Checker, auditLogger AuditLogger, events AuditQuerier) *AdminHandler {
	return &AdminHandler{
		users:   users,
		checker: checker,
		audit:   auditLogger,
		events:  events,
	}
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

type AuditEventsResponse struct {
	Events []*audit.Event `json:"events"`
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Failed to list users: %v", err)
		return respondError(c, http.StatusInternalServerError, msgListUsersFail)
	}

	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = newUserResponse(h.checker, u)
	}
	return c.JSON(http.StatusOK, UserListResponse{Users: out})
}

func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidUserID)
	}

	u, err := h.users.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return respondError(c, http.StatusNotFound, msgUserNotFound)
		}
		return RespondWithMappedError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResponse(h.checker, u))
}

func (h *AdminHandler) CreateUser(c echo.Context) error {
	actor := echoadapter.GetAuthSubject(c)

	var req CreateUserRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Email(req.Email); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if err := validator.DisplayName(req.Name); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if err := validator.Password(req.Password); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	role, err := h.parseRole(req.Role)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidRole)
	}
	if !h.checker.CanAssignRole(actor.Role, role) {
		return respondError(c, http.StatusForbidden, msgCannotAssignRole)
	}

	grants, status, msg := h.parseGrants(actor, req.Permissions)
	if status != 0 {
		return respondError(c, status, msg)
	}

	passwordHash, err := password.Hash(req.Password)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgPasswordProcessFail)
	}

	u, err := h.users.Create(c.Request().Context(), user.CreateUserInput{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: passwordHash,
		Role:         role,
		Permissions:  grants,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return respondError(c, http.StatusConflict, msgEmailAlreadyExists)
		}
		_ = h.audit.LogError(c, audit.ResourceTypeUser, req.Email, audit.ActionCreate, err)
		c.Logger().Errorf("Failed to create user: %v", err)
		return respondError(c, http.StatusInternalServerError, msgCreateUserFail)
	}

	_ = h.audit.LogFromContext(c, audit.ResourceTypeUser, u.ID.String(), audit.ActionCreate, audit.StatusSuccess, map[string]any{
		"role": string(u.Role),
	})
	return c.JSON(http.StatusCreated, newUserResponse(h.checker, u))
}

func (h *AdminHandler) UpdateRole(c echo.Context) error {
	actor := echoadapter.GetAuthSubject(c)

	id, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidUserID)
	}

	var req UpdateRoleRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	role, err := h.parseRole(req.Role)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidRole)
	}

	if id.String() == actor.ID {
		return respondError(c, http.StatusForbidden, msgCannotChangeOwnRole)
	}

	target, status, msg := h.loadManageable(c, actor, id)
	if status != 0 {
		return respondError(c, status, msg)
	}
	if !h.checker.CanAssignRole(actor.Role, role) {
		return respondError(c, http.StatusForbidden, msgCannotAssignRole)
	}

	updated, err := h.users.UpdateRole(c.Request().Context(), user.UpdateRoleInput{ID: id, Role: role})
	if err != nil {
		return h.updateFailed(c, id, audit.ActionUpdateRole, err)
	}

	_ = h.audit.LogFromContext(c, audit.ResourceTypeUser, id.String(), audit.ActionUpdateRole, audit.StatusSuccess, map[string]any{
		"from": string(target.Role),
		"to":   string(updated.Role),
	})
	return c.JSON(http.StatusOK, newUserResponse(h.checker, updated))
}

func (h *AdminHandler) UpdatePermissions(c echo.Context) error {
	actor := echoadapter.GetAuthSubject(c)

	id, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidUserID)
	}

	var req UpdatePermissionsRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	grants, status, msg := h.parseGrants(actor, req.Permissions)
	if status != 0 {
		return respondError(c, status, msg)
	}

	if _, status, msg := h.loadManageable(c, actor, id); status != 0 {
		return respondError(c, status, msg)
	}

	updated, err := h.users.UpdatePermissions(c.Request().Context(), user.UpdatePermissionsInput{ID: id, Permissions: grants})
	if err != nil {
		return h.updateFailed(c, id, audit.ActionUpdatePermissions, err)
	}

	_ = h.audit.LogFromContext(c, audit.ResourceTypeUser, id.String(), audit.ActionUpdatePermissions, audit.StatusSuccess, map[string]any{
		"permissions": req.Permissions,
	})
	return c.JSON(http.StatusOK, newUserResponse(h.checker, updated))
}

// AuditEvents returns recent audit events. Supported filters: actor, action,
// status, resource_type and limit.
func (h *AdminHandler) AuditEvents(c echo.Context) error {
	filter := audit.QueryFilter{ActorID: c.QueryParam("actor")}
	if v := c.QueryParam("action"); v != "" {
		action := audit.Action(v)
		filter.Action = &action
	}
	if v := c.QueryParam("status"); v != "" {
		status := audit.Status(v)
		filter.Status = &status
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := audit.ResourceType(v)
		filter.ResourceType = &rt
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return respondError(c, http.StatusBadRequest, msgInvalidLimit)
		}
		filter.Limit = limit
	}

	return c.JSON(http.StatusOK, AuditEventsResponse{Events: h.events.Query(filter)})
}

func (h *AdminHandler) parseRole(raw string) (rbac.Role, error) {
	raw = strings.TrimSpace(raw)
	if err := validator.Identifier("role", raw); err != nil {
		return "", err
	}
	return h.checker.ValidateRole(raw)
}

// parseGrants validates explicit grants. A status of 0 means the grants are
// acceptable.
func (h *AdminHandler) parseGrants(actor rbac.AuthSubject, raw []string) ([]rbac.Permission, int, string) {
	grants := make([]rbac.Permission, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if err := validator.Identifier("permission", p); err != nil {
			return nil, http.StatusBadRequest, msgInvalidPermission
		}
		grants = append(grants, rbac.Permission(p))
	}
	if err := h.checker.ValidatePermissions(grants); err != nil {
		return nil, http.StatusBadRequest, msgInvalidPermission
	}
	for _, p := range grants {
		if !actor.Permissions.Has(p) {
			return nil, http.StatusForbidden, msgCannotGrantPermission
		}
	}
	return grants, 0, ""
}

// loadManageable fetches the target and checks the actor is at or above its
// level.
func (h *AdminHandler) loadManageable(c echo.Context, actor rbac.AuthSubject, id uuid.UUID) (*user.User, int, string) {
	target, err := h.users.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, http.StatusNotFound, msgUserNotFound
		}
		c.Logger().Errorf("Failed to load user %s: %v", id, err)
		return nil, http.StatusInternalServerError, msgUpdateUserFail
	}
	if !h.checker.CanAssignRole(actor.Role, target.Role) {
		return nil, http.StatusForbidden, msgCannotManageUser
	}
	return target, 0, ""
}

func (h *AdminHandler) updateFailed(c echo.Context, id uuid.UUID, action audit.Action, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return respondError(c, http.StatusNotFound, msgUserNotFound)
	}
	_ = h.audit.LogError(c, audit.ResourceTypeUser, id.String(), action, err)
	c.Logger().Errorf("Failed to update user %s: %v", id, err)
	return respondError(c, http.StatusInternalServerError, msgUpdateUserFail)
}
