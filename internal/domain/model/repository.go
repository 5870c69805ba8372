package model

import "time"

// Repository represents a provider repository owned by exactly one Account.
type Repository struct {
	ID        string // Provider numeric id, stored as a string.
	Name      string
	FullName  string // "owner/name"; used for follow-up provider API calls.
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
