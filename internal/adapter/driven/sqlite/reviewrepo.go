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
var _ driven.ReviewStore = (*ReviewRepo)(nil)

// ReviewRepo is the SQLite implementation of the ReviewStore port interface.
type ReviewRepo struct {
	db *DB
}

// NewReviewRepo creates a new ReviewRepo backed by the given DB.
func NewReviewRepo(db *DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// SaveReview inserts a review by its provider id. A duplicate id returns
// ErrDuplicateReview so the webhook boundary can treat resubmission as
// expected rather than a failure.
func (r *ReviewRepo) SaveReview(ctx context.Context, review model.CodeReview) error {
	const query = `
		INSERT INTO code_reviews (id, pull_request_id, reviewer, state, body, commit_id, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		review.ID, review.PullRequestID, review.Reviewer, string(review.State),
		review.Body, review.CommitID, review.SubmittedAt.UTC(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("save review %s: %w", review.ID, driven.ErrDuplicateReview)
		}
		return fmt.Errorf("save review %s: %w", review.ID, err)
	}

	return nil
}

// UpdateReviewBody rewrites only the body of an existing review.
// Unknown ids are a no-op.
func (r *ReviewRepo) UpdateReviewBody(ctx context.Context, id, body string) error {
	const query = `UPDATE code_reviews SET body = ? WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, body, id); err != nil {
		return fmt.Errorf("update review %s body: %w", id, err)
	}

	return nil
}

// UpdateReviewState rewrites only the state of an existing review.
// Unknown ids are a no-op.
func (r *ReviewRepo) UpdateReviewState(ctx context.Context, id string, state model.ReviewState) error {
	const query = `UPDATE code_reviews SET state = ? WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, string(state), id); err != nil {
		return fmt.Errorf("update review %s state: %w", id, err)
	}

	return nil
}

// GetLastReview returns the most recently submitted review for the pull
// request, or (nil, nil) if none exists.
func (r *ReviewRepo) GetLastReview(ctx context.Context, pullRequestID string) (*model.CodeReview, error) {
	const query = `
		SELECT id, pull_request_id, reviewer, state, body, commit_id, submitted_at
		FROM code_reviews
		WHERE pull_request_id = ?
		ORDER BY submitted_at DESC
		LIMIT 1
	`

	var review model.CodeReview
	var state, submittedAt string

	err := r.db.Reader.QueryRowContext(ctx, query, pullRequestID).Scan(
		&review.ID, &review.PullRequestID, &review.Reviewer, &state,
		&review.Body, &review.CommitID, &submittedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get last review for pr %s: %w", pullRequestID, err)
	}

	review.State = model.ReviewState(state)
	review.SubmittedAt, err = parseTime(submittedAt)
	if err != nil {
		return nil, fmt.Errorf("parse submitted_at: %w", err)
	}

	return &review, nil
}

// SaveReviewComment inserts a review comment by its provider id. A duplicate
// delivery no-ops: the row as originally created wins.
func (r *ReviewRepo) SaveReviewComment(ctx context.Context, comment model.CodeReviewComment) error {
	const query = `
		INSERT INTO code_review_comments (
			id, review_id, pull_request_id, author, body, path, diff_hunk,
			line, side, position, in_reply_to_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`

	var position any
	if comment.Position != nil {
		position = *comment.Position
	}

	var inReplyToID any
	if comment.InReplyToID != nil {
		inReplyToID = *comment.InReplyToID
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		comment.ID, comment.ReviewID, comment.PullRequestID, comment.Author,
		comment.Body, comment.Path, comment.DiffHunk, comment.Line,
		comment.Side, position, inReplyToID,
		comment.CreatedAt.UTC(), comment.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save review comment %s: %w", comment.ID, err)
	}

	return nil
}

// UpdateReviewComment rewrites only the body and updated-at timestamp of an
// existing review comment. Unknown ids are a no-op.
func (r *ReviewRepo) UpdateReviewComment(ctx context.Context, id, body string, updatedAt time.Time) error {
	const query = `UPDATE code_review_comments SET body = ?, updated_at = ? WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, body, updatedAt.UTC(), id); err != nil {
		return fmt.Errorf("update review comment %s: %w", id, err)
	}

	return nil
}

// DeleteReviewComment removes a review comment by id. Tolerates an
// already-absent row.
func (r *ReviewRepo) DeleteReviewComment(ctx context.Context, id string) error {
	const query = `DELETE FROM code_review_comments WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete review comment %s: %w", id, err)
	}

	return nil
}

// SavePullRequestComment inserts a PR-level comment by its provider id.
// A duplicate delivery no-ops.
func (r *ReviewRepo) SavePullRequestComment(ctx context.Context, comment model.PullRequestComment) error {
	const query = `
		INSERT INTO pull_request_comments (id, pull_request_id, author, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		comment.ID, comment.PullRequestID, comment.Author, comment.Body,
		comment.CreatedAt.UTC(), comment.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save pull request comment %s: %w", comment.ID, err)
	}

	return nil
}

// UpdatePullRequestComment rewrites only the body and updated-at timestamp of
// an existing PR-level comment. Unknown ids are a no-op.
func (r *ReviewRepo) UpdatePullRequestComment(ctx context.Context, id, body string, updatedAt time.Time) error {
	const query = `UPDATE pull_request_comments SET body = ?, updated_at = ? WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, body, updatedAt.UTC(), id); err != nil {
		return fmt.Errorf("update pull request comment %s: %w", id, err)
	}

	return nil
}

// DeletePullRequestComment removes a PR-level comment by id. Tolerates an
// already-absent row.
func (r *ReviewRepo) DeletePullRequestComment(ctx context.Context, id string) error {
	const query = `DELETE FROM pull_request_comments WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete pull request comment %s: %w", id, err)
	}

	return nil
}
