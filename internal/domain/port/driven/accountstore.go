// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/reviewloop/reviewloop/internal/domain/model"
)

// ErrAccountNotFound indicates the requested account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// AccountStore defines the driven port for account persistence.
// Save is an upsert keyed by the provider id, so redelivered installation
// events converge. Delete returns ErrAccountNotFound if no row exists.
type AccountStore interface {
	Save(ctx context.Context, account model.Account) error
	GetByIDs(ctx context.Context, ids []string) ([]model.Account, error)
	Delete(ctx context.Context, id string) error
}
