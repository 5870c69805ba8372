package model

import "time"

// User is the local identity for an authenticated provider user.
// Created once on first sighting; subsequent sightings never overwrite it.
type User struct {
	ID        string // Provider numeric id, stored as a string.
	Login     string
	Name      string
	AvatarURL string
	CreatedAt time.Time
}

// UserAccount records that a user may act on an account, plus whether the
// user may change that account's bot configuration. Unique per (user, account).
type UserAccount struct {
	UserID          string
	AccountID       string
	CanConfigureBot bool
}

// UserRepository is the repository-scoped counterpart of UserAccount.
type UserRepository struct {
	UserID          string
	RepositoryID    string
	CanConfigureBot bool
}
