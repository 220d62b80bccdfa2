package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"alumni-portal/internal/domain/user"
	apperrors "alumni-portal/pkg/errors"
	"alumni-portal/pkg/rbac"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo() *UserRepository {
	r := NewUserRepository()
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return r
}

func TestCreateAndGet(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	created, err := r.Create(ctx, user.CreateUserInput{
		Email:        "  Ada@Example.com ",
		Name:         "Ada",
		PasswordHash: "hash",
		Role:         rbac.RoleAlumni,
		Permissions:  []rbac.Permission{"create_events"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "ada@example.com", created.Email)

	byID, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, byID)

	byEmail, err := r.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
}

func TestCreateDuplicateEmail(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	_, err := r.Create(ctx, user.CreateUserInput{Email: "a@example.com", Role: rbac.RoleStudent})
	require.NoError(t, err)

	_, err = r.Create(ctx, user.CreateUserInput{Email: "A@example.com", Role: rbac.RoleStudent})
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestCreateRequiresEmail(t *testing.T) {
	_, err := newTestRepo().Create(context.Background(), user.CreateUserInput{Email: "  "})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestGetMissing(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	_, err := r.GetByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = r.GetByEmail(ctx, "nobody@example.com")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestReturnedUsersAreCopies(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	created, err := r.Create(ctx, user.CreateUserInput{
		Email:       "a@example.com",
		Role:        rbac.RoleAlumni,
		Permissions: []rbac.Permission{"create_events"},
	})
	require.NoError(t, err)

	created.Role = rbac.RoleSuperAdmin
	created.Permissions[0] = "manage_roles"

	stored, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAlumni, stored.Role)
	assert.Equal(t, []rbac.Permission{"create_events"}, stored.Permissions)
}

func TestListOrderedByCreation(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	for _, email := range []string{"c@example.com", "a@example.com", "b@example.com"} {
		_, err := r.Create(ctx, user.CreateUserInput{Email: email, Role: rbac.RoleStudent})
		require.NoError(t, err)
	}

	users, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "c@example.com", users[0].Email)
	assert.Equal(t, "a@example.com", users[1].Email)
	assert.Equal(t, "b@example.com", users[2].Email)
}

func TestUpdateRoleAndPermissions(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	created, err := r.Create(ctx, user.CreateUserInput{Email: "a@example.com", Role: rbac.RoleStudent})
	require.NoError(t, err)

	updated, err := r.UpdateRole(ctx, user.UpdateRoleInput{ID: created.ID, Role: rbac.RoleAlumni})
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAlumni, updated.Role)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	updated, err = r.UpdatePermissions(ctx, user.UpdatePermissionsInput{
		ID:          created.ID,
		Permissions: []rbac.Permission{"create_news"},
	})
	require.NoError(t, err)
	assert.Equal(t, []rbac.Permission{"create_news"}, updated.Permissions)

	_, err = r.UpdateRole(ctx, user.UpdateRoleInput{ID: uuid.New(), Role: rbac.RoleAdmin})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestRepo().List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
