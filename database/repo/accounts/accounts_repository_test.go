package accounts

import (
	"context"
	"testing"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDefaultAdminUser_Once(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	password, err := repo.CreateDefaultAdminUser(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, password)

	again, err := repo.CreateDefaultAdminUser(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)

	admin, err := repo.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.HasRole(models.RoleAdmin))
	assert.True(t, admin.HasRole(models.RoleUser))
}

func TestGetUser_NotFound(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRepository(db)

	_, err := repo.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetUserByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestExists(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	testutil.CreateUser(t, db, "alice")

	ok, err := repo.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindRoles_Missing(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRepository(db)

	_, err := repo.FindRoles(context.Background(), models.RoleUser, "ROLE_GHOST")
	assert.Error(t, err)
}
