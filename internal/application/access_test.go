package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewloop/reviewloop/internal/domain/model"
)

// fakeUserStore is an in-memory driven.UserStore for service tests.
type fakeUserStore struct {
	users             map[string]model.User
	userAccounts      map[string]model.UserAccount    // key userID+"/"+accountID
	userRepositories  map[string]model.UserRepository // key userID+"/"+repositoryID
	savedAccounts     [][]model.UserAccount
	savedRepositories [][]model.UserRepository
	err               error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:            map[string]model.User{},
		userAccounts:     map[string]model.UserAccount{},
		userRepositories: map[string]model.UserRepository{},
	}
}

func (f *fakeUserStore) Save(_ context.Context, user model.User) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[user.ID]; !ok {
		f.users[user.ID] = user
	}
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	if user, ok := f.users[id]; ok {
		return &user, nil
	}
	return nil, nil
}

func (f *fakeUserStore) SaveUserAccounts(_ context.Context, associations []model.UserAccount) error {
	if f.err != nil {
		return f.err
	}
	f.savedAccounts = append(f.savedAccounts, associations)
	for _, a := range associations {
		key := a.UserID + "/" + a.AccountID
		if _, ok := f.userAccounts[key]; !ok {
			f.userAccounts[key] = a
		}
	}
	return nil
}

func (f *fakeUserStore) SaveUserRepositories(_ context.Context, associations []model.UserRepository) error {
	if f.err != nil {
		return f.err
	}
	f.savedRepositories = append(f.savedRepositories, associations)
	for _, a := range associations {
		key := a.UserID + "/" + a.RepositoryID
		if _, ok := f.userRepositories[key]; !ok {
			f.userRepositories[key] = a
		}
	}
	return nil
}

func (f *fakeUserStore) GetUserAccount(_ context.Context, userID, accountID string) (*model.UserAccount, error) {
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.userAccounts[userID+"/"+accountID]; ok {
		return &a, nil
	}
	return nil, nil
}

func (f *fakeUserStore) GetUserRepository(_ context.Context, userID, repositoryID string) (*model.UserRepository, error) {
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.userRepositories[userID+"/"+repositoryID]; ok {
		return &a, nil
	}
	return nil, nil
}

func (f *fakeUserStore) GetAccountIDs(_ context.Context, userID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	ids := []string{}
	for _, a := range f.userAccounts {
		if a.UserID == userID {
			ids = append(ids, a.AccountID)
		}
	}
	return ids, nil
}

func (f *fakeUserStore) GetRepositoryIDs(_ context.Context, userID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	ids := []string{}
	for _, a := range f.userRepositories {
		if a.UserID == userID {
			ids = append(ids, a.RepositoryID)
		}
	}
	return ids, nil
}

func TestAccessService_AccountMatrix(t *testing.T) {
	store := newFakeUserStore()
	store.userAccounts["u1/a2"] = model.UserAccount{UserID: "u1", AccountID: "a2", CanConfigureBot: false}
	store.userAccounts["u1/a3"] = model.UserAccount{UserID: "u1", AccountID: "a3", CanConfigureBot: true}

	svc := NewAccessService(store)
	ctx := context.Background()

	// No association row at all.
	decision, err := svc.CanConfigureAccount(ctx, "u1", "a1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyNotAssociated, decision.Reason)

	// Associated but without the capability.
	decision, err = svc.CanConfigureAccount(ctx, "u1", "a2")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyNoCapability, decision.Reason)

	// Associated with the capability.
	decision, err = svc.CanConfigureAccount(ctx, "u1", "a3")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, DenyNone, decision.Reason)
}

func TestAccessService_RepositoryMatrix(t *testing.T) {
	store := newFakeUserStore()
	store.userRepositories["u1/r2"] = model.UserRepository{UserID: "u1", RepositoryID: "r2", CanConfigureBot: false}
	store.userRepositories["u1/r3"] = model.UserRepository{UserID: "u1", RepositoryID: "r3", CanConfigureBot: true}

	svc := NewAccessService(store)
	ctx := context.Background()

	decision, err := svc.CanConfigureRepository(ctx, "u1", "r1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyNotAssociated, decision.Reason)

	decision, err = svc.CanConfigureRepository(ctx, "u1", "r2")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyNoCapability, decision.Reason)

	decision, err = svc.CanConfigureRepository(ctx, "u1", "r3")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}
