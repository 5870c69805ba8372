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
var _ driven.RepoStore = (*RepoRepo)(nil)

// RepoRepo is the SQLite implementation of the RepoStore port interface.
type RepoRepo struct {
	db *DB
}

// NewRepoRepo creates a new RepoRepo backed by the given DB.
func NewRepoRepo(db *DB) *RepoRepo {
	return &RepoRepo{db: db}
}

// Save inserts or updates a repository by its provider id.
func (r *RepoRepo) Save(ctx context.Context, repo model.Repository) error {
	return r.SaveAll(ctx, []model.Repository{repo})
}

// SaveAll upserts a batch of repositories in a single statement, so a
// redelivered installation event converges without partial application.
// An empty batch is a no-op.
func (r *RepoRepo) SaveAll(ctx context.Context, repos []model.Repository) error {
	if len(repos) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO repositories (id, name, full_name, owner_id, created_at, updated_at) VALUES `)

	now := time.Now().UTC()
	args := make([]any, 0, len(repos)*6)
	for i, repo := range repos {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?)")

		createdAt := repo.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		updatedAt := repo.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = now
		}

		args = append(args, repo.ID, repo.Name, repo.FullName, repo.OwnerID, createdAt, updatedAt)
	}

	sb.WriteString(`
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			full_name = excluded.full_name,
			owner_id = excluded.owner_id,
			updated_at = excluded.updated_at
	`)

	if _, err := r.db.Writer.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("save %d repositories: %w", len(repos), err)
	}

	return nil
}

// Rename updates the name and full name of a repository. Returns
// ErrRepoNotFound for unknown ids.
func (r *RepoRepo) Rename(ctx context.Context, id, name, fullName string) error {
	const query = `
		UPDATE repositories
		SET name = ?, full_name = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Writer.ExecContext(ctx, query, name, fullName, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("rename repository %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("rename repository %s: %w", id, driven.ErrRepoNotFound)
	}

	return nil
}

// Delete removes a repository by id. The repository's settings row cascades
// away via foreign key. Tolerates an already-absent row.
func (r *RepoRepo) Delete(ctx context.Context, id string) error {
	return r.DeleteByIDs(ctx, []string{id})
}

// DeleteByIDs removes a batch of repositories in a single statement.
// An empty batch is a no-op; unknown ids are ignored.
func (r *RepoRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`DELETE FROM repositories WHERE id IN (%s)`, placeholders)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	if _, err := r.db.Writer.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %d repositories: %w", len(ids), err)
	}

	return nil
}

// GetByID retrieves a repository by id. Returns (nil, nil) if it does not exist.
func (r *RepoRepo) GetByID(ctx context.Context, id string) (*model.Repository, error) {
	const query = `
		SELECT id, name, full_name, owner_id, created_at, updated_at
		FROM repositories
		WHERE id = ?
	`

	repo, err := scanRepository(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get repository %s: %w", id, err)
	}

	return repo, nil
}

func scanRepository(s scanner) (*model.Repository, error) {
	var repo model.Repository
	var createdAt, updatedAt string

	if err := s.Scan(&repo.ID, &repo.Name, &repo.FullName, &repo.OwnerID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	repo.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	repo.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &repo, nil
}
