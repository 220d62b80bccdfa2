package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"alumni-portal/internal/domain/user"
	apperrors "alumni-portal/pkg/errors"
	"alumni-portal/pkg/rbac"

	"github.com/google/uuid"
)

// UserRepository keeps users in process memory. Returned users are copies;
// mutating them does not change stored state.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*user.User
	byEmail map[string]uuid.UUID
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepository) Create(ctx context.Context, input user.CreateUserInput) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, apperrors.Validation(errEmailRequired)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, apperrors.InternalServer(fmt.Sprintf(errFailedNewIDFmt, err), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return nil, apperrors.Conflict(errEmailExists)
	}

	now := r.now().UTC()
	u := &user.User{
		ID:           id,
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: input.PasswordHash,
		Role:         input.Role,
		Permissions:  append([]rbac.Permission(nil), input.Permissions...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byID[id] = u
	r.byEmail[email] = id

	return u.Clone(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound(errUserNotFound)
	}
	return u.Clone(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, apperrors.NotFound(errUserNotFound)
	}
	return r.byID[id].Clone(), nil
}

// List returns all users, oldest first.
func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	users := make([]*user.User, 0, len(r.byID))
	for _, u := range r.byID {
		users = append(users, u.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Email < users[j].Email
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, input user.UpdateRoleInput) (*user.User, error) {
	return r.update(ctx, input.ID, func(u *user.User) {
		u.Role = input.Role
	})
}

func (r *UserRepository) UpdatePermissions(ctx context.Context, input user.UpdatePermissionsInput) (*user.User, error) {
	return r.update(ctx, input.ID, func(u *user.User) {
		u.Permissions = append([]rbac.Permission(nil), input.Permissions...)
	})
}

func (r *UserRepository) update(ctx context.Context, id uuid.UUID, apply func(*user.User)) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound(errUserNotFound)
	}
	apply(u)
	u.UpdatedAt = r.now().UTC()
	return u.Clone(), nil
}
