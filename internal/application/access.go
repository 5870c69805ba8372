package application

import (
	"context"

	"github.com/reviewloop/reviewloop/internal/domain/port/driven"
)

// DenyReason explains why a permission decision denied access. Callers are
// expected to fold both reasons into one generic denial so a response never
// reveals whether an association exists.
type DenyReason int

// Denial reasons.
const (
	DenyNone DenyReason = iota
	DenyNotAssociated
	DenyNoCapability
)

// Decision is the outcome of a permission check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// AccessService decides whether a user may change bot configuration for an
// account or repository. It is a pure read over the association tables and is
// safe to call repeatedly and concurrently.
type AccessService struct {
	users driven.UserStore
}

// NewAccessService creates a new AccessService with the required store.
func NewAccessService(users driven.UserStore) *AccessService {
	return &AccessService{users: users}
}

// CanConfigureAccount checks the (user, account) association.
func (s *AccessService) CanConfigureAccount(ctx context.Context, userID, accountID string) (Decision, error) {
	association, err := s.users.GetUserAccount(ctx, userID, accountID)
	if err != nil {
		return Decision{}, err
	}
	if association == nil {
		return Decision{Reason: DenyNotAssociated}, nil
	}
	if !association.CanConfigureBot {
		return Decision{Reason: DenyNoCapability}, nil
	}
	return Decision{Allowed: true}, nil
}

// CanConfigureRepository checks the (user, repository) association.
func (s *AccessService) CanConfigureRepository(ctx context.Context, userID, repositoryID string) (Decision, error) {
	association, err := s.users.GetUserRepository(ctx, userID, repositoryID)
	if err != nil {
		return Decision{}, err
	}
	if association == nil {
		return Decision{Reason: DenyNotAssociated}, nil
	}
	if !association.CanConfigureBot {
		return Decision{Reason: DenyNoCapability}, nil
	}
	return Decision{Allowed: true}, nil
}
