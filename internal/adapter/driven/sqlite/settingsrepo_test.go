package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewloop/reviewloop/internal/domain/model"
)

func TestSettingsRepo_GetAccountSettingsMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepo(db)

	settings, err := repo.GetAccountSettings(context.Background(), "1001")
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestSettingsRepo_SetAccountSettingsPartial(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepo(db)
	ctx := context.Background()

	seedAccount(t, db, "1001", "acme")

	// First write provides one field; the other defaults to false.
	err := repo.SetAccountSettings(ctx, "1001", model.SettingsPatch{AutoReviewEnabled: boolPtr(true)})
	require.NoError(t, err)

	settings, err := repo.GetAccountSettings(ctx, "1001")
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.True(t, settings.AutoReviewEnabled)
	assert.False(t, settings.RequestChangesWorkflowEnabled)

	// Second write patches the other field without touching the first.
	err = repo.SetAccountSettings(ctx, "1001", model.SettingsPatch{RequestChangesWorkflowEnabled: boolPtr(true)})
	require.NoError(t, err)

	settings, err = repo.GetAccountSettings(ctx, "1001")
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.True(t, settings.AutoReviewEnabled)
	assert.True(t, settings.RequestChangesWorkflowEnabled)
}

func TestSettingsRepo_RepositorySettingsKeepNullFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepo(db)
	ctx := context.Background()

	seedAccount(t, db, "1001", "acme")
	seedRepository(t, db, "2001", "1001", "widgets")

	err := repo.SetRepositorySettings(ctx, "2001", model.SettingsPatch{AutoReviewEnabled: boolPtr(false)})
	require.NoError(t, err)

	settings, err := repo.GetRepositorySettings(ctx, "2001")
	require.NoError(t, err)
	require.NotNil(t, settings)
	require.NotNil(t, settings.AutoReviewEnabled)
	assert.False(t, *settings.AutoReviewEnabled)
	// The untouched field stays NULL and inherits from the account.
	assert.Nil(t, settings.RequestChangesWorkflowEnabled)

	// Patching the second field preserves the first.
	err = repo.SetRepositorySettings(ctx, "2001", model.SettingsPatch{RequestChangesWorkflowEnabled: boolPtr(true)})
	require.NoError(t, err)

	settings, err = repo.GetRepositorySettings(ctx, "2001")
	require.NoError(t, err)
	require.NotNil(t, settings)
	require.NotNil(t, settings.AutoReviewEnabled)
	assert.False(t, *settings.AutoReviewEnabled)
	require.NotNil(t, settings.RequestChangesWorkflowEnabled)
	assert.True(t, *settings.RequestChangesWorkflowEnabled)
}

func TestSettingsRepo_DeleteRepositorySettings(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepo(db)
	ctx := context.Background()

	seedAccount(t, db, "1001", "acme")
	seedRepository(t, db, "2001", "1001", "widgets")
	require.NoError(t, repo.SetRepositorySettings(ctx, "2001", model.SettingsPatch{AutoReviewEnabled: boolPtr(true)}))

	require.NoError(t, repo.DeleteRepositorySettings(ctx, "2001"))
	require.NoError(t, repo.DeleteRepositorySettings(ctx, "2001"))

	settings, err := repo.GetRepositorySettings(ctx, "2001")
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestSettingsRepo_DeleteByOwnerCascadesAllRepos(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepo(db)
	ctx := context.Background()

	seedAccount(t, db, "1001", "acme")
	seedAccount(t, db, "1002", "other")
	seedRepository(t, db, "2001", "1001", "widgets")
	seedRepository(t, db, "2002", "1001", "gadgets")
	seedRepository(t, db, "2003", "1002", "unrelated")

	require.NoError(t, repo.SetAccountSettings(ctx, "1001", model.SettingsPatch{AutoReviewEnabled: boolPtr(true)}))
	require.NoError(t, repo.SetRepositorySettings(ctx, "2001", model.SettingsPatch{AutoReviewEnabled: boolPtr(false)}))
	require.NoError(t, repo.SetRepositorySettings(ctx, "2002", model.SettingsPatch{RequestChangesWorkflowEnabled: boolPtr(true)}))
	require.NoError(t, repo.SetRepositorySettings(ctx, "2003", model.SettingsPatch{AutoReviewEnabled: boolPtr(true)}))

	require.NoError(t, repo.DeleteRepositorySettingsByOwner(ctx, "1001"))

	for _, repoID := range []string{"2001", "2002"} {
		settings, err := repo.GetRepositorySettings(ctx, repoID)
		require.NoError(t, err)
		assert.Nil(t, settings, "settings for %s should be gone", repoID)
	}

	// Another owner's override and the account row itself are untouched.
	other, err := repo.GetRepositorySettings(ctx, "2003")
	require.NoError(t, err)
	assert.NotNil(t, other)

	accountSettings, err := repo.GetAccountSettings(ctx, "1001")
	require.NoError(t, err)
	require.NotNil(t, accountSettings)
	assert.True(t, accountSettings.AutoReviewEnabled)
}
