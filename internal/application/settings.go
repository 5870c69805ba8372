// Package application contains the services behind the driving adapters.
// Each service depends only on port interfaces.
package application

import (
	"context"

	"github.com/reviewloop/reviewloop/internal/domain/model"
	"github.com/reviewloop/reviewloop/internal/domain/port/driven"
)

// SettingsService resolves the effective bot configuration across the two
// settings tiers and applies the writes that keep them consistent.
type SettingsService struct {
	settings driven.SettingsStore
}

// NewSettingsService creates a new SettingsService with the required store.
func NewSettingsService(settings driven.SettingsStore) *SettingsService {
	return &SettingsService{settings: settings}
}

// Resolve computes the effective settings for an account, narrowed to a
// repository when repositoryID is non-empty. Resolution is field-by-field:
// repository value if the override row carries one, else account value, else
// false. A future flag addition only needs a new resolveField call.
func (s *SettingsService) Resolve(ctx context.Context, accountID, repositoryID string) (model.EffectiveSettings, error) {
	var effective model.EffectiveSettings

	accountSettings, err := s.settings.GetAccountSettings(ctx, accountID)
	if err != nil {
		return effective, err
	}
	if accountSettings != nil {
		effective.AutoReviewEnabled = accountSettings.AutoReviewEnabled
		effective.RequestChangesWorkflowEnabled = accountSettings.RequestChangesWorkflowEnabled
	}

	if repositoryID == "" {
		return effective, nil
	}

	repoSettings, err := s.settings.GetRepositorySettings(ctx, repositoryID)
	if err != nil {
		return effective, err
	}
	if repoSettings == nil {
		return effective, nil
	}

	effective.AutoReviewEnabled = resolveField(repoSettings.AutoReviewEnabled, effective.AutoReviewEnabled)
	effective.RequestChangesWorkflowEnabled = resolveField(repoSettings.RequestChangesWorkflowEnabled, effective.RequestChangesWorkflowEnabled)
	return effective, nil
}

// GetAccountSettings returns the stored account tier, or nil when no row
// exists yet.
func (s *SettingsService) GetAccountSettings(ctx context.Context, accountID string) (*model.AccountSettings, error) {
	return s.settings.GetAccountSettings(ctx, accountID)
}

// GetRepositorySettings returns the stored override row, or nil when the
// repository fully inherits from its account.
func (s *SettingsService) GetRepositorySettings(ctx context.Context, repositoryID string) (*model.RepositorySettings, error) {
	return s.settings.GetRepositorySettings(ctx, repositoryID)
}

// SetAccountSettings applies a partial update to the account tier.
func (s *SettingsService) SetAccountSettings(ctx context.Context, accountID string, patch model.SettingsPatch) error {
	return s.settings.SetAccountSettings(ctx, accountID, patch)
}

// SetRepositorySettings applies a partial update to the repository override tier.
func (s *SettingsService) SetRepositorySettings(ctx context.Context, repositoryID string, patch model.SettingsPatch) error {
	return s.settings.SetRepositorySettings(ctx, repositoryID, patch)
}

// DeleteRepositorySettings drops the repository override so the repository
// reverts to inheriting from its account.
func (s *SettingsService) DeleteRepositorySettings(ctx context.Context, repositoryID string) error {
	return s.settings.DeleteRepositorySettings(ctx, repositoryID)
}

// SyncWithAccount forces every repository owned by the account back to
// inheriting the account defaults by bulk-deleting their override rows.
func (s *SettingsService) SyncWithAccount(ctx context.Context, accountID string) error {
	return s.settings.DeleteRepositorySettingsByOwner(ctx, accountID)
}

func resolveField(override *bool, fallback bool) bool {
	if override != nil {
		return *override
	}
	return fallback
}
