package driven

import (
	"context"
	"errors"

	"github.com/reviewloop/reviewloop/internal/domain/model"
)

// ErrRepoNotFound indicates the requested repository does not exist.
var ErrRepoNotFound = errors.New("repository not found")

// RepoStore defines the driven port for repository persistence.
// Save and SaveAll are upserts keyed by the provider id. Delete and
// DeleteByIDs tolerate already-absent rows; deleting a repository cascades
// away its settings row. Rename returns ErrRepoNotFound for unknown ids.
type RepoStore interface {
	Save(ctx context.Context, repo model.Repository) error
	SaveAll(ctx context.Context, repos []model.Repository) error
	Rename(ctx context.Context, id, name, fullName string) error
	Delete(ctx context.Context, id string) error
	DeleteByIDs(ctx context.Context, ids []string) error
	GetByID(ctx context.Context, id string) (*model.Repository, error)
}
