package handler

import (
	"context"
	"time"

	"alumni-portal/internal/audit"
	"alumni-portal/internal/auth"
	"alumni-portal/internal/domain/user"
	"alumni-portal/pkg/rbac"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Consumer-side interfaces defined by handlers
// Each interface contains only the methods needed by the specific handler

// AuthHandler interfaces
type UserGetter interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

type TokenIssuer interface {
	Issue(userID uuid.UUID, email string, role rbac.Role) (auth.Issued, error)
	Expiry() time.Duration
}

type TokenRevoker interface {
	Revoke(id string, expiresAt time.Time)
}

// CSRFTokenManager keys tokens by session (token ID).
type CSRFTokenManager interface {
	GetOrCreateToken(sessionID string) (string, error)
	Revoke(sessionID string)
}

// AdminHandler interfaces
type UserRepository interface {
	Create(ctx context.Context, input user.CreateUserInput) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	List(ctx context.Context) ([]*user.User, error)
	UpdateRole(ctx context.Context, input user.UpdateRoleInput) (*user.User, error)
	UpdatePermissions(ctx context.Context, input user.UpdatePermissionsInput) (*user.User, error)
}

// Audit interfaces (used by multiple handlers)
type AuditLogger interface {
	LogFromContext(c echo.Context, resourceType audit.ResourceType, resource string, action audit.Action, status audit.Status, metadata map[string]any) error
	LogError(c echo.Context, resourceType audit.ResourceType, resource string, action audit.Action, err error) error
}

type AuditQuerier interface {
	Query(filter audit.QueryFilter) []*audit.Event
}
