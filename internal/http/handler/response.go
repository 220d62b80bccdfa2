package handler

import (
	"net/http"
	"time"

	"alumni-portal/internal/domain/user"
	"alumni-portal/pkg/rbac"
	"alumni-portal/pkg/session"

	"github.com/labstack/echo/v4"
)

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyError: message})
}

func respondMessage(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyMessage: message})
}

func handleHTTPError(c echo.Context, err error) error {
	if he, ok := err.(*echo.HTTPError); ok {
		msg, _ := he.Message.(string)
		if msg == "" {
			msg = http.StatusText(he.Code)
		}
		return respondError(c, he.Code, msg)
	}

	return respondError(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// SubjectResponse describes the signed-in member to the client.
type SubjectResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// FlagsResponse mirrors the session predicate surface.
type FlagsResponse struct {
	IsAdmin      bool `json:"is_admin"`
	IsSuperAdmin bool `json:"is_super_admin"`
	IsAlumni     bool `json:"is_alumni"`
	IsStudent    bool `json:"is_student"`
}

type SessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	Loading       bool             `json:"loading"`
	Subject       *SubjectResponse `json:"subject,omitempty"`
	Flags         FlagsResponse    `json:"flags"`
	CSRFToken     string           `json:"csrf_token,omitempty"`
}

func permissionStrings(set rbac.PermissionSet) []string {
	list := set.List()
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = string(p)
	}
	return out
}

func newSessionResponse(snap session.Snapshot) SessionResponse {
	resp := SessionResponse{
		Authenticated: snap.IsAuthenticated(),
		Loading:       snap.Loading,
		Flags: FlagsResponse{
			IsAdmin:      snap.IsAdmin(),
			IsSuperAdmin: snap.IsSuperAdmin(),
			IsAlumni:     snap.IsAlumni(),
			IsStudent:    snap.IsStudent(),
		},
	}
	if resp.Authenticated {
		s := snap.Subject
		resp.Subject = &SubjectResponse{
			ID:          s.ID,
			Email:       s.Email,
			Role:        string(s.Role),
			Permissions: permissionStrings(s.Permissions),
		}
	}
	return resp
}

type UserResponse struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	Name                 string    `json:"name,omitempty"`
	Role                 string    `json:"role"`
	Permissions          []string  `json:"permissions"`
	EffectivePermissions []string  `json:"effective_permissions"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func newUserResponse(checker *rbac.Checker, u *user.User) UserResponse {
	grants := make([]string, len(u.Permissions))
	for i, p := range u.Permissions {
		grants[i] = string(p)
	}
	effective := checker.Subject(u.ID.String(), u.Email, u.Role, u.Permissions).Permissions
	return UserResponse{
		ID:                   u.ID.String(),
		Email:                u.Email,
		Name:                 u.Name,
		Role:                 string(u.Role),
		Permissions:          grants,
		EffectivePermissions: permissionStrings(effective),
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}
