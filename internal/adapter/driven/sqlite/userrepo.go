package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reviewloop/reviewloop/internal/domain/model"
	"github.com/reviewloop/reviewloop/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the UserStore port interface.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo backed by the given DB.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Save creates the user if absent. An existing row is left untouched, so
// repeated sightings of the same provider user never overwrite local state.
func (r *UserRepo) Save(ctx context.Context, user model.User) error {
	const query = `
		INSERT INTO users (id, login, name, avatar_url, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`

	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		user.ID, user.Login, user.Name, user.AvatarURL, createdAt,
	)
	if err != nil {
		return fmt.Errorf("save user %s: %w", user.ID, err)
	}

	return nil
}

// GetByID retrieves a user by id. Returns (nil, nil) if the user does not exist.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	const query = `SELECT id, login, name, avatar_url, created_at FROM users WHERE id = ?`

	var user model.User
	var createdAt string

	err := r.db.Reader.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Login, &user.Name, &user.AvatarURL, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}

	user.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &user, nil
}

// SaveUserAccounts batch-inserts user-account associations in a single
// statement, ignoring pairs already present. An empty batch is a no-op.
func (r *UserRepo) SaveUserAccounts(ctx context.Context, associations []model.UserAccount) error {
	if len(associations) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO user_accounts (user_id, account_id, can_configure_bot) VALUES `)

	args := make([]any, 0, len(associations)*3)
	for i, a := range associations {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?)")
		args = append(args, a.UserID, a.AccountID, boolToInt(a.CanConfigureBot))
	}

	sb.WriteString(` ON CONFLICT(user_id, account_id) DO NOTHING`)

	if _, err := r.db.Writer.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("save %d user accounts: %w", len(associations), err)
	}

	return nil
}

// SaveUserRepositories batch-inserts user-repository associations in a single
// statement, ignoring pairs already present. An empty batch is a no-op.
func (r *UserRepo) SaveUserRepositories(ctx context.Context, associations []model.UserRepository) error {
	if len(associations) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO user_repositories (user_id, repository_id, can_configure_bot) VALUES `)

	args := make([]any, 0, len(associations)*3)
	for i, a := range associations {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?)")
		args = append(args, a.UserID, a.RepositoryID, boolToInt(a.CanConfigureBot))
	}

	sb.WriteString(` ON CONFLICT(user_id, repository_id) DO NOTHING`)

	if _, err := r.db.Writer.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("save %d user repositories: %w", len(associations), err)
	}

	return nil
}

// GetUserAccount retrieves the association row for the pair. Returns
// (nil, nil) when the user is not associated with the account.
func (r *UserRepo) GetUserAccount(ctx context.Context, userID, accountID string) (*model.UserAccount, error) {
	const query = `
		SELECT user_id, account_id, can_configure_bot
		FROM user_accounts
		WHERE user_id = ? AND account_id = ?
	`

	var a model.UserAccount
	var canConfigure int

	err := r.db.Reader.QueryRowContext(ctx, query, userID, accountID).Scan(
		&a.UserID, &a.AccountID, &canConfigure,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user account (%s, %s): %w", userID, accountID, err)
	}

	a.CanConfigureBot = canConfigure != 0
	return &a, nil
}

// GetUserRepository retrieves the association row for the pair. Returns
// (nil, nil) when the user is not associated with the repository.
func (r *UserRepo) GetUserRepository(ctx context.Context, userID, repositoryID string) (*model.UserRepository, error) {
	const query = `
		SELECT user_id, repository_id, can_configure_bot
		FROM user_repositories
		WHERE user_id = ? AND repository_id = ?
	`

	var a model.UserRepository
	var canConfigure int

	err := r.db.Reader.QueryRowContext(ctx, query, userID, repositoryID).Scan(
		&a.UserID, &a.RepositoryID, &canConfigure,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user repository (%s, %s): %w", userID, repositoryID, err)
	}

	a.CanConfigureBot = canConfigure != 0
	return &a, nil
}

// GetAccountIDs returns the ids of all accounts associated with the user.
func (r *UserRepo) GetAccountIDs(ctx context.Context, userID string) ([]string, error) {
	return r.foreignIDs(ctx, `SELECT account_id FROM user_accounts WHERE user_id = ?`, userID)
}

// GetRepositoryIDs returns the ids of all repositories associated with the user.
func (r *UserRepo) GetRepositoryIDs(ctx context.Context, userID string) ([]string, error) {
	return r.foreignIDs(ctx, `SELECT repository_id FROM user_repositories WHERE user_id = ?`, userID)
}

func (r *UserRepo) foreignIDs(ctx context.Context, query, userID string) ([]string, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list associations for user %s: %w", userID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan association id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate associations: %w", err)
	}

	return ids, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
