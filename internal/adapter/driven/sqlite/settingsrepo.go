package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/reviewloop/reviewloop/internal/domain/model"
	"github.com/reviewloop/reviewloop/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SettingsStore = (*SettingsRepo)(nil)

// SettingsRepo is the SQLite implementation of the SettingsStore port
// interface, covering both the account and repository settings tiers.
type SettingsRepo struct {
	db *DB
}

// NewSettingsRepo creates a new SettingsRepo backed by the given DB.
func NewSettingsRepo(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// GetAccountSettings retrieves account-level settings. Returns (nil, nil) if
// no row exists; callers treat both flags as false.
func (r *SettingsRepo) GetAccountSettings(ctx context.Context, accountID string) (*model.AccountSettings, error) {
	const query = `
		SELECT account_id, auto_review_enabled, request_changes_enabled
		FROM account_settings
		WHERE account_id = ?
	`

	var s model.AccountSettings
	var autoReview, requestChanges int

	err := r.db.Reader.QueryRowContext(ctx, query, accountID).Scan(
		&s.AccountID, &autoReview, &requestChanges,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account settings %s: %w", accountID, err)
	}

	s.AutoReviewEnabled = autoReview != 0
	s.RequestChangesWorkflowEnabled = requestChanges != 0
	return &s, nil
}

// SetAccountSettings applies a partial update in a single statement. On first
// insert, omitted fields default to false; on update, omitted fields keep
// their stored value.
func (r *SettingsRepo) SetAccountSettings(ctx context.Context, accountID string, patch model.SettingsPatch) error {
	const query = `
		INSERT INTO account_settings (account_id, auto_review_enabled, request_changes_enabled)
		VALUES (?1, COALESCE(?2, 0), COALESCE(?3, 0))
		ON CONFLICT(account_id) DO UPDATE SET
			auto_review_enabled = COALESCE(?2, account_settings.auto_review_enabled),
			request_changes_enabled = COALESCE(?3, account_settings.request_changes_enabled)
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		accountID, nullableBool(patch.AutoReviewEnabled), nullableBool(patch.RequestChangesWorkflowEnabled),
	)
	if err != nil {
		return fmt.Errorf("set account settings %s: %w", accountID, err)
	}

	return nil
}

// GetRepositorySettings retrieves the repository override tier. Returns
// (nil, nil) if no row exists. Present rows may still carry NULL fields,
// which inherit from the account.
func (r *SettingsRepo) GetRepositorySettings(ctx context.Context, repositoryID string) (*model.RepositorySettings, error) {
	const query = `
		SELECT repository_id, auto_review_enabled, request_changes_enabled
		FROM repository_settings
		WHERE repository_id = ?
	`

	var s model.RepositorySettings
	var autoReview, requestChanges *int

	err := r.db.Reader.QueryRowContext(ctx, query, repositoryID).Scan(
		&s.RepositoryID, &autoReview, &requestChanges,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get repository settings %s: %w", repositoryID, err)
	}

	s.AutoReviewEnabled = intToBoolPtr(autoReview)
	s.RequestChangesWorkflowEnabled = intToBoolPtr(requestChanges)
	return &s, nil
}

// SetRepositorySettings applies a partial update in a single statement.
// Omitted fields stay NULL (inherit) on insert and keep their stored value
// on update.
func (r *SettingsRepo) SetRepositorySettings(ctx context.Context, repositoryID string, patch model.SettingsPatch) error {
	const query = `
		INSERT INTO repository_settings (repository_id, auto_review_enabled, request_changes_enabled)
		VALUES (?1, ?2, ?3)
		ON CONFLICT(repository_id) DO UPDATE SET
			auto_review_enabled = COALESCE(?2, repository_settings.auto_review_enabled),
			request_changes_enabled = COALESCE(?3, repository_settings.request_changes_enabled)
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		repositoryID, nullableBool(patch.AutoReviewEnabled), nullableBool(patch.RequestChangesWorkflowEnabled),
	)
	if err != nil {
		return fmt.Errorf("set repository settings %s: %w", repositoryID, err)
	}

	return nil
}

// DeleteRepositorySettings removes the override row so the repository reverts
// to inheriting from its account. Tolerates an already-absent row.
func (r *SettingsRepo) DeleteRepositorySettings(ctx context.Context, repositoryID string) error {
	const query = `DELETE FROM repository_settings WHERE repository_id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, repositoryID); err != nil {
		return fmt.Errorf("delete repository settings %s: %w", repositoryID, err)
	}

	return nil
}

// DeleteRepositorySettingsByOwner bulk-deletes every override row belonging
// to the account's repositories in one statement, so concurrent readers never
// observe a half-applied cascade.
func (r *SettingsRepo) DeleteRepositorySettingsByOwner(ctx context.Context, accountID string) error {
	const query = `
		DELETE FROM repository_settings
		WHERE repository_id IN (SELECT id FROM repositories WHERE owner_id = ?)
	`

	if _, err := r.db.Writer.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("sync repository settings with account %s: %w", accountID, err)
	}

	return nil
}

// nullableBool converts an optional bool into a driver-friendly value,
// preserving nil.
func nullableBool(b *bool) any {
	if b == nil {
		return nil
	}
	return boolToInt(*b)
}

func intToBoolPtr(v *int) *bool {
	if v == nil {
		return nil
	}
	b := *v != 0
	return &b
}
