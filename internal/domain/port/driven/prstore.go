package driven

import (
	"context"

	"github.com/reviewloop/reviewloop/internal/domain/model"
)

// PRStore defines the driven port for pull request persistence.
// Save is an upsert keyed by the provider id. Update rewrites only the mutable
// fields (title, body, state, head SHA, timestamps) of an existing row and is
// a no-op for unknown ids. GetByID and GetByRepoNumber return (nil, nil) when
// the pull request is not mirrored.
type PRStore interface {
	Save(ctx context.Context, pr model.PullRequest) error
	Update(ctx context.Context, pr model.PullRequest) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.PullRequest, error)
	GetByRepoNumber(ctx context.Context, repositoryID string, number int) (*model.PullRequest, error)
}
