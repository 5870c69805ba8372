package driven

import (
	"context"

	"github.com/reviewloop/reviewloop/internal/domain/model"
)

// AccountMembership pairs an account the authenticated user belongs to with
// whether that user may manage the account's bot configuration.
type AccountMembership struct {
	Account         model.Account
	CanConfigureBot bool
}

// RepositoryMembership is the repository-scoped counterpart of AccountMembership.
type RepositoryMembership struct {
	Repository      model.Repository
	CanConfigureBot bool
}

// ReviewSubmission is the input to ProviderClient.SubmitReview.
type ReviewSubmission struct {
	CommitID string // HEAD SHA the review targets.
	Event    string // "APPROVE", "REQUEST_CHANGES", or "COMMENT".
	Body     string
}

// ProviderClient defines the driven port for follow-up calls against the
// provider API: fetching review context, submitting generated reviews, and
// listing the authenticated user's memberships for association sync.
type ProviderClient interface {
	// FetchDiff returns the unified diff of a pull request.
	FetchDiff(ctx context.Context, repoFullName string, number int) (string, error)

	// SubmitReview posts a review and returns the created review as the
	// provider recorded it (with its assigned id), minus the PR linkage,
	// which the caller supplies before persisting.
	SubmitReview(ctx context.Context, repoFullName string, number int, req ReviewSubmission) (*model.CodeReview, error)

	// FetchAuthenticatedUser returns the identity the client acts as.
	FetchAuthenticatedUser(ctx context.Context) (*model.User, error)

	// FetchUserAccounts lists the accounts the authenticated user belongs to,
	// including the user's own account.
	FetchUserAccounts(ctx context.Context) ([]AccountMembership, error)

	// FetchUserRepositories lists the repositories the authenticated user can access.
	FetchUserRepositories(ctx context.Context) ([]RepositoryMembership, error)
}
