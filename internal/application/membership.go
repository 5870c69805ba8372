package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/reviewloop/reviewloop/internal/domain/model"
	"github.com/reviewloop/reviewloop/internal/domain/port/driven"
)

// ErrNoProvider indicates no provider client is configured, so
// provider-backed sync cannot run.
var ErrNoProvider = errors.New("no provider client configured")

// MembershipService keeps a user's account and repository associations in
// sync with the provider. Sync is insert-only: pairs already recorded are
// left untouched, so repeated syncs converge.
type MembershipService struct {
	users    driven.UserStore
	provider driven.ProviderClient
	logger   *slog.Logger
}

// NewMembershipService creates a new MembershipService. provider may be nil
// when no provider credentials are configured; SyncFromProvider then fails
// with a clear error while the pure sync methods keep working.
func NewMembershipService(users driven.UserStore, provider driven.ProviderClient, logger *slog.Logger) *MembershipService {
	return &MembershipService{users: users, provider: provider, logger: logger}
}

// SyncUserAccounts inserts the candidate associations not already recorded
// for the user and reports how many were new. An empty candidate set is a
// no-op that issues no store calls. All candidates must carry the same
// userID; a mixed batch is a caller bug.
func (s *MembershipService) SyncUserAccounts(ctx context.Context, userID string, candidates []model.UserAccount) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	for _, c := range candidates {
		if c.UserID != userID {
			return 0, fmt.Errorf("sync user accounts: candidate for user %s in batch for user %s", c.UserID, userID)
		}
	}

	existing, err := s.users.GetAccountIDs(ctx, userID)
	if err != nil {
		return 0, err
	}

	missing := subtractByForeignID(candidates, existing, func(a model.UserAccount) string { return a.AccountID })
	if len(missing) == 0 {
		return 0, nil
	}

	if err := s.users.SaveUserAccounts(ctx, missing); err != nil {
		return 0, err
	}

	return len(missing), nil
}

// SyncUserRepositories is the repository-scoped counterpart of SyncUserAccounts.
func (s *MembershipService) SyncUserRepositories(ctx context.Context, userID string, candidates []model.UserRepository) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	for _, c := range candidates {
		if c.UserID != userID {
			return 0, fmt.Errorf("sync user repositories: candidate for user %s in batch for user %s", c.UserID, userID)
		}
	}

	existing, err := s.users.GetRepositoryIDs(ctx, userID)
	if err != nil {
		return 0, err
	}

	missing := subtractByForeignID(candidates, existing, func(a model.UserRepository) string { return a.RepositoryID })
	if len(missing) == 0 {
		return 0, nil
	}

	if err := s.users.SaveUserRepositories(ctx, missing); err != nil {
		return 0, err
	}

	return len(missing), nil
}

// SyncFromProvider pulls the authenticated user's memberships from the
// provider, creates the user row on first sighting, and syncs both
// association sets. Returns the synced user.
func (s *MembershipService) SyncFromProvider(ctx context.Context) (*model.User, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("sync from provider: %w", ErrNoProvider)
	}

	user, err := s.provider.FetchAuthenticatedUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch authenticated user: %w", err)
	}

	if err := s.users.Save(ctx, *user); err != nil {
		return nil, err
	}

	accountMemberships, err := s.provider.FetchUserAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch user accounts: %w", err)
	}

	accountCandidates := make([]model.UserAccount, 0, len(accountMemberships))
	for _, m := range accountMemberships {
		accountCandidates = append(accountCandidates, model.UserAccount{
			UserID:          user.ID,
			AccountID:       m.Account.ID,
			CanConfigureBot: m.CanConfigureBot,
		})
	}

	accountsAdded, err := s.SyncUserAccounts(ctx, user.ID, accountCandidates)
	if err != nil {
		return nil, err
	}

	repoMemberships, err := s.provider.FetchUserRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch user repositories: %w", err)
	}

	repoCandidates := make([]model.UserRepository, 0, len(repoMemberships))
	for _, m := range repoMemberships {
		repoCandidates = append(repoCandidates, model.UserRepository{
			UserID:          user.ID,
			RepositoryID:    m.Repository.ID,
			CanConfigureBot: m.CanConfigureBot,
		})
	}

	reposAdded, err := s.SyncUserRepositories(ctx, user.ID, repoCandidates)
	if err != nil {
		return nil, err
	}

	s.logger.Info("memberships synced",
		"user_id", user.ID,
		"accounts_added", accountsAdded,
		"repositories_added", reposAdded,
	)

	return user, nil
}

// subtractByForeignID returns the candidates whose foreign id is not in existing.
func subtractByForeignID[T any](candidates []T, existing []string, foreignID func(T) string) []T {
	seen := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		seen[id] = struct{}{}
	}

	var missing []T
	for _, c := range candidates {
		if _, ok := seen[foreignID(c)]; !ok {
			missing = append(missing, c)
			seen[foreignID(c)] = struct{}{}
		}
	}
	return missing
}
