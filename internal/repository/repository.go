package repository

import (
	"context"

	"alumni-portal/internal/domain/user"

	"github.com/google/uuid"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, input user.CreateUserInput) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	List(ctx context.Context) ([]*user.User, error)
	UpdateRole(ctx context.Context, input user.UpdateRoleInput) (*user.User, error)
	UpdatePermissions(ctx context.Context, input user.UpdatePermissionsInput) (*user.User, error)
}
