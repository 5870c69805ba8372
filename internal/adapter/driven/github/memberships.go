package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v82/github"

	"github.com/reviewloop/reviewloop/internal/domain/model"
	"github.com/reviewloop/reviewloop/internal/domain/port/driven"
)

// FetchAuthenticatedUser returns the identity the configured token acts as.
func (c *Client) FetchAuthenticatedUser(ctx context.Context) (*model.User, error) {
	user, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("fetching authenticated user: %w", err)
	}

	logRateLimit(resp, "user", 0, 1)

	return &model.User{
		ID:        formatID(user.GetID()),
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		AvatarURL: user.GetAvatarURL(),
	}, nil
}

// FetchUserAccounts lists the accounts the authenticated user belongs to.
// The user's own account is always first, with the configure capability; org
// memberships follow, where only the "admin" role grants it.
func (c *Client) FetchUserAccounts(ctx context.Context) ([]driven.AccountMembership, error) {
	self, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("fetching authenticated user: %w", err)
	}
	logRateLimit(resp, "user", 0, 1)

	memberships := []driven.AccountMembership{
		{
			Account: model.Account{
				ID:   formatID(self.GetID()),
				Name: self.GetLogin(),
				Type: model.AccountTypeUser,
			},
			CanConfigureBot: true,
		},
	}

	opts := &gh.ListOrgMembershipsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	for {
		orgMemberships, resp, err := c.gh.Organizations.ListOrgMemberships(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("listing org memberships (page %d): %w", opts.Page, err)
		}

		logRateLimit(resp, "memberships/orgs", opts.Page, len(orgMemberships))

		for _, m := range orgMemberships {
			org := m.GetOrganization()
			memberships = append(memberships, driven.AccountMembership{
				Account: model.Account{
					ID:   formatID(org.GetID()),
					Name: org.GetLogin(),
					Type: model.AccountTypeOrganization,
				},
				CanConfigureBot: m.GetRole() == "admin",
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return memberships, nil
}

// FetchUserRepositories lists the repositories the authenticated user can
// access. The admin permission bit maps to the configure capability.
func (c *Client) FetchUserRepositories(ctx context.Context) ([]driven.RepositoryMembership, error) {
	opts := &gh.RepositoryListByAuthenticatedUserOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var memberships []driven.RepositoryMembership

	for {
		repos, resp, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("listing repositories (page %d): %w", opts.Page, err)
		}

		logRateLimit(resp, "user/repos", opts.Page, len(repos))

		for _, r := range repos {
			memberships = append(memberships, driven.RepositoryMembership{
				Repository: model.Repository{
					ID:       formatID(r.GetID()),
					Name:     r.GetName(),
					FullName: r.GetFullName(),
					OwnerID:  formatID(r.GetOwner().GetID()),
				},
				CanConfigureBot: r.GetPermissions().GetAdmin(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return memberships, nil
}
