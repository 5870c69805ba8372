package driven

import (
	"context"

	"github.com/reviewloop/reviewloop/internal/domain/model"
)

// UserStore defines the driven port for user identities and their
// account/repository associations.
//
// Save creates the user only if absent; an existing row is never overwritten.
// SaveUserAccounts and SaveUserRepositories are single-statement batch inserts
// that ignore pairs already present, so concurrent or repeated syncs converge.
// GetUserAccount and GetUserRepository return (nil, nil) when no association
// exists; callers must treat nil as "not associated", not as an error.
type UserStore interface {
	Save(ctx context.Context, user model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)

	SaveUserAccounts(ctx context.Context, associations []model.UserAccount) error
	SaveUserRepositories(ctx context.Context, associations []model.UserRepository) error
	GetUserAccount(ctx context.Context, userID, accountID string) (*model.UserAccount, error)
	GetUserRepository(ctx context.Context, userID, repositoryID string) (*model.UserRepository, error)
	GetAccountIDs(ctx context.Context, userID string) ([]string, error)
	GetRepositoryIDs(ctx context.Context, userID string) ([]string, error)
}
