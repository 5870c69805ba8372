package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewloop/reviewloop/internal/domain/model"
)

func TestUserRepo_SaveCreatesOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	err := repo.Save(ctx, model.User{ID: "3001", Login: "octocat", Name: "Octo Cat"})
	require.NoError(t, err)

	// A later sighting with different profile fields must not overwrite.
	err = repo.Save(ctx, model.User{ID: "3001", Login: "octocat", Name: "Changed"})
	require.NoError(t, err)

	user, err := repo.GetByID(ctx, "3001")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Octo Cat", user.Name)
}

func TestUserRepo_GetByIDMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)

	user, err := repo.GetByID(context.Background(), "9999")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepo_SaveUserAccountsIgnoresExisting(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.User{ID: "3001", Login: "octocat"}))

	err := repo.SaveUserAccounts(ctx, []model.UserAccount{
		{UserID: "3001", AccountID: "1001", CanConfigureBot: true},
	})
	require.NoError(t, err)

	// Re-inserting the same pair with a different flag must not change the row.
	err = repo.SaveUserAccounts(ctx, []model.UserAccount{
		{UserID: "3001", AccountID: "1001", CanConfigureBot: false},
		{UserID: "3001", AccountID: "1002", CanConfigureBot: false},
	})
	require.NoError(t, err)

	a, err := repo.GetUserAccount(ctx, "3001", "1001")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.True(t, a.CanConfigureBot)

	ids, err := repo.GetAccountIDs(ctx, "3001")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1001", "1002"}, ids)
}

func TestUserRepo_SaveUserAccountsEmptyIsNoop(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)

	require.NoError(t, repo.SaveUserAccounts(context.Background(), nil))
}

func TestUserRepo_GetUserAccountMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)

	a, err := repo.GetUserAccount(context.Background(), "3001", "1001")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestUserRepo_SaveUserRepositories(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.User{ID: "3001", Login: "octocat"}))

	err := repo.SaveUserRepositories(ctx, []model.UserRepository{
		{UserID: "3001", RepositoryID: "2001", CanConfigureBot: true},
		{UserID: "3001", RepositoryID: "2002", CanConfigureBot: false},
	})
	require.NoError(t, err)

	a, err := repo.GetUserRepository(ctx, "3001", "2002")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.False(t, a.CanConfigureBot)

	ids, err := repo.GetRepositoryIDs(ctx, "3001")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2001", "2002"}, ids)
}
