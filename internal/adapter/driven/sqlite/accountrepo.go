package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/reviewloop/reviewloop/internal/domain/model"
	"github.com/reviewloop/reviewloop/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AccountStore = (*AccountRepo)(nil)

// AccountRepo is the SQLite implementation of the AccountStore port interface.
type AccountRepo struct {
	db *DB
}

// NewAccountRepo creates a new AccountRepo backed by the given DB.
func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Save inserts or updates an account by its provider id. Redelivered
// installation events land here, so the write must converge.
func (r *AccountRepo) Save(ctx context.Context, account model.Account) error {
	const query = `
		INSERT INTO accounts (id, name, type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC()
	createdAt := account.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := account.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		account.ID, account.Name, string(account.Type), createdAt, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("save account %s: %w", account.ID, err)
	}

	return nil
}

// GetByIDs returns the accounts matching the given ids, ordered by name.
// Unknown ids are simply absent from the result.
func (r *AccountRepo) GetByIDs(ctx context.Context, ids []string) ([]model.Account, error) {
	if len(ids) == 0 {
		return []model.Account{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		SELECT id, name, type, created_at, updated_at
		FROM accounts
		WHERE id IN (%s)
		ORDER BY name
	`, placeholders)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get accounts: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

// Delete removes an account by id. Owned repositories and both settings
// tiers cascade away through foreign keys. Returns ErrAccountNotFound if no
// row exists.
func (r *AccountRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM accounts WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete account %s: %w", id, driven.ErrAccountNotFound)
	}

	return nil
}

func scanAccount(s scanner) (*model.Account, error) {
	var account model.Account
	var accountType, createdAt, updatedAt string

	if err := s.Scan(&account.ID, &account.Name, &accountType, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	account.Type = model.AccountType(accountType)

	var err error
	account.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	account.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &account, nil
}
