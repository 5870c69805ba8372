package model

import "time"

// AccountType distinguishes personal accounts from organizations on the provider.
type AccountType string

// Account types as reported by the provider.
const (
	AccountTypeUser         AccountType = "User"
	AccountTypeOrganization AccountType = "Organization"
)

// Account represents a user or organization on the provider that has the app
// installed. The ID is the provider-assigned numeric identifier stored as a
// string to avoid integer-width loss across the wire and storage boundaries.
type Account struct {
	ID        string
	Name      string
	Type      AccountType
	CreatedAt time.Time
	UpdatedAt time.Time
}
