package driven

import (
	"context"
	"errors"
	"time"

	"github.com/reviewloop/reviewloop/internal/domain/model"
)

// ErrDuplicateReview indicates a review with the same provider id was already
// stored. Callers handling webhook redelivery treat this as expected.
var ErrDuplicateReview = errors.New("review already exists")

// ReviewStore defines the driven port for reviews and both comment kinds.
//
// SaveReview rejects duplicate ids with ErrDuplicateReview. Comment saves are
// idempotent creates (a duplicate id no-ops). Updates touch only the body and
// updated-at timestamp; deletes tolerate already-absent rows.
type ReviewStore interface {
	SaveReview(ctx context.Context, review model.CodeReview) error
	UpdateReviewBody(ctx context.Context, id, body string) error
	UpdateReviewState(ctx context.Context, id string, state model.ReviewState) error
	GetLastReview(ctx context.Context, pullRequestID string) (*model.CodeReview, error)

	SaveReviewComment(ctx context.Context, comment model.CodeReviewComment) error
	UpdateReviewComment(ctx context.Context, id, body string, updatedAt time.Time) error
	DeleteReviewComment(ctx context.Context, id string) error

	SavePullRequestComment(ctx context.Context, comment model.PullRequestComment) error
	UpdatePullRequestComment(ctx context.Context, id, body string, updatedAt time.Time) error
	DeletePullRequestComment(ctx context.Context, id string) error
}
