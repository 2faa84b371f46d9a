package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	ts := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	alice := &models.User{ID: "1", Username: "alice", Email: "alice@example.com", Role: models.RoleUser, CreatedAt: ts}
	bob := &models.User{ID: "2", Username: "bob", Email: "bob@example.com", Role: models.RoleAdmin, CreatedAt: ts.Add(48 * time.Hour)}
	require.NoError(t, repo.Create(ctx, alice))
	require.NoError(t, repo.Create(ctx, bob))

	err := repo.Create(ctx, &models.User{ID: "3", Username: "ALICE", Email: "other@example.com"})
	assert.True(t, errors.Is(err, common.ErrorAlreadyExists), "username is case-insensitive")
	err = repo.Create(ctx, &models.User{ID: "3", Username: "carol", Email: "Bob@Example.com"})
	assert.True(t, errors.Is(err, common.ErrorAlreadyExists), "email is case-insensitive")

	got, err := repo.GetByLogin(ctx, "BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, "2", got.ID)

	got, err = repo.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)

	_, err = repo.GetByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bob", list[0].Username, "newest first")

	// returned values are copies
	list[0].Username = "mallory"
	again, err := repo.GetByID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "bob", again.Username)

	updated, err := repo.UpdateRole(ctx, "1", models.RoleAdmin, ts.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	require.NoError(t, repo.UpdateLastLogin(ctx, "1", ts.Add(2*time.Hour)))
	require.NoError(t, repo.UpdatePassword(ctx, "1", "new", ts.Add(3*time.Hour)))
	got, err = repo.GetByID(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.Equal(t, ts.Add(2*time.Hour), *got.LastLogin)
	assert.Equal(t, "new", got.PasswordHash)

	stats, err := repo.Stats(ctx, ts.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.UserStats{TotalUsers: 2, AdminUsers: 2, RegularUsers: 0, RecentUsers: 1}, *stats)

	require.NoError(t, repo.Delete(ctx, "1"))
	assert.ErrorIs(t, repo.Delete(ctx, "1"), common.ErrorNotFound)
	_, err = repo.UpdateRole(ctx, "1", models.RoleUser, ts)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, "1", ts), common.ErrorNotFound)
}
