package model

import "time"

// PRState mirrors the provider's pull request state.
type PRState string

// Pull request states.
const (
	PRStateOpen   PRState = "open"
	PRStateClosed PRState = "closed"
)

// PullRequest is the canonical mirror of a provider pull request.
type PullRequest struct {
	ID           string // Provider numeric id, stored as a string.
	RepositoryID string
	RepoFullName string
	Number       int
	Title        string
	Body         string
	State        PRState
	Author       string
	HeadSHA      string
	HeadBranch   string
	BaseBranch   string
	URL          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ClosedAt     *time.Time // Nil while the PR is open.
}
