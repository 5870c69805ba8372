package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/reviewloop/reviewloop/internal/domain/model"
	"github.com/reviewloop/reviewloop/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PRStore = (*PRRepo)(nil)

// PRRepo is the SQLite implementation of the PRStore port interface.
type PRRepo struct {
	db *DB
}

// NewPRRepo creates a new PRRepo backed by the given DB.
func NewPRRepo(db *DB) *PRRepo {
	return &PRRepo{db: db}
}

// Save inserts or updates a pull request by its provider id. A redelivered
// "opened" event converges on the same row.
func (r *PRRepo) Save(ctx context.Context, pr model.PullRequest) error {
	const query = `
		INSERT INTO pull_requests (
			id, repository_id, repo_full_name, number, title, body, state,
			author, head_sha, head_branch, base_branch, url,
			created_at, updated_at, closed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			state = excluded.state,
			head_sha = excluded.head_sha,
			updated_at = excluded.updated_at,
			closed_at = excluded.closed_at
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		pr.ID, pr.RepositoryID, pr.RepoFullName, pr.Number, pr.Title, pr.Body,
		string(pr.State), pr.Author, pr.HeadSHA, pr.HeadBranch, pr.BaseBranch,
		pr.URL, pr.CreatedAt.UTC(), pr.UpdatedAt.UTC(), nullableTime(pr.ClosedAt),
	)
	if err != nil {
		return fmt.Errorf("save pull request %s: %w", pr.ID, err)
	}

	return nil
}

// Update rewrites only the mutable fields of an existing pull request.
// Unknown ids are a no-op: an update event for a PR that was never mirrored
// carries nothing worth reconstructing a row from.
func (r *PRRepo) Update(ctx context.Context, pr model.PullRequest) error {
	const query = `
		UPDATE pull_requests
		SET title = ?, body = ?, state = ?, head_sha = ?, updated_at = ?, closed_at = ?
		WHERE id = ?
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		pr.Title, pr.Body, string(pr.State), pr.HeadSHA,
		pr.UpdatedAt.UTC(), nullableTime(pr.ClosedAt), pr.ID,
	)
	if err != nil {
		return fmt.Errorf("update pull request %s: %w", pr.ID, err)
	}

	return nil
}

// Delete removes a pull request by id. Tolerates an already-absent row.
func (r *PRRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM pull_requests WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete pull request %s: %w", id, err)
	}

	return nil
}

// GetByID retrieves a pull request by id. Returns (nil, nil) if not mirrored.
func (r *PRRepo) GetByID(ctx context.Context, id string) (*model.PullRequest, error) {
	const query = `
		SELECT id, repository_id, repo_full_name, number, title, body, state,
			author, head_sha, head_branch, base_branch, url,
			created_at, updated_at, closed_at
		FROM pull_requests
		WHERE id = ?
	`

	pr, err := scanPullRequest(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pull request %s: %w", id, err)
	}

	return pr, nil
}

// GetByRepoNumber retrieves a pull request by repository id and number.
// Returns (nil, nil) if not mirrored.
func (r *PRRepo) GetByRepoNumber(ctx context.Context, repositoryID string, number int) (*model.PullRequest, error) {
	const query = `
		SELECT id, repository_id, repo_full_name, number, title, body, state,
			author, head_sha, head_branch, base_branch, url,
			created_at, updated_at, closed_at
		FROM pull_requests
		WHERE repository_id = ? AND number = ?
	`

	pr, err := scanPullRequest(r.db.Reader.QueryRowContext(ctx, query, repositoryID, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pull request %s#%d: %w", repositoryID, number, err)
	}

	return pr, nil
}

func scanPullRequest(s scanner) (*model.PullRequest, error) {
	var pr model.PullRequest
	var state, createdAt, updatedAt string
	var closedAt *string

	err := s.Scan(
		&pr.ID, &pr.RepositoryID, &pr.RepoFullName, &pr.Number, &pr.Title,
		&pr.Body, &state, &pr.Author, &pr.HeadSHA, &pr.HeadBranch,
		&pr.BaseBranch, &pr.URL, &createdAt, &updatedAt, &closedAt,
	)
	if err != nil {
		return nil, err
	}

	pr.State = model.PRState(state)

	pr.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	pr.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	pr.ClosedAt, err = parseNullTime(closedAt)
	if err != nil {
		return nil, fmt.Errorf("parse closed_at: %w", err)
	}

	return &pr, nil
}

// nullableTime converts an optional timestamp into a driver-friendly value.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
