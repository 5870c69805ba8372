package driven

import (
	"context"

	"github.com/reviewloop/reviewloop/internal/domain/model"
)

// SettingsStore defines the driven port for both settings tiers.
//
// Get methods return (nil, nil) when no row exists; callers apply defaults.
// Set methods are partial upserts: nil patch fields leave the stored value
// (or the false default on first insert) untouched, and each write is a
// single atomic statement. DeleteRepositorySettingsByOwner is the bulk
// cascade used when an account forces its repositories back to inheriting;
// it must be issued as one statement so concurrent readers never observe a
// partially-applied cascade.
type SettingsStore interface {
	GetAccountSettings(ctx context.Context, accountID string) (*model.AccountSettings, error)
	SetAccountSettings(ctx context.Context, accountID string, patch model.SettingsPatch) error

	GetRepositorySettings(ctx context.Context, repositoryID string) (*model.RepositorySettings, error)
	SetRepositorySettings(ctx context.Context, repositoryID string, patch model.SettingsPatch) error
	DeleteRepositorySettings(ctx context.Context, repositoryID string) error
	DeleteRepositorySettingsByOwner(ctx context.Context, accountID string) error
}
