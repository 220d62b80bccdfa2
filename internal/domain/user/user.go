package user

import (
	"time"

	"alumni-portal/pkg/rbac"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         rbac.Role
	// Permissions are explicit grants on top of the role defaults.
	Permissions []rbac.Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a copy that shares no slices with u.
func (u *User) Clone() *User {
	out := *u
	out.Permissions = append([]rbac.Permission(nil), u.Permissions...)
	return &out
}

type CreateUserInput struct {
	Email        string
	Name         string
	PasswordHash string
	Role         rbac.Role
	Permissions  []rbac.Permission
}

type UpdateRoleInput struct {
	ID   uuid.UUID
	Role rbac.Role
}

type UpdatePermissionsInput struct {
	ID          uuid.UUID
	Permissions []rbac.Permission
}
