package repository

import (
	"context"

	"alumni-portal/internal/domain/user"

	"github.com/google/uuid"
)

// Repository interfaces used by auth and middleware packages
// These are provider-side interfaces that concrete implementations must satisfy

type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}
