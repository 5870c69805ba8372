package model

import "time"

// CodeReviewComment is the canonical mirror of an inline review comment.
// ReviewID and InReplyToID reference other provider entities; InReplyToID is
// nil for thread roots rather than an empty or zero value.
type CodeReviewComment struct {
	ID            string // Provider numeric id, stored as a string.
	ReviewID      string
	PullRequestID string
	Author        string
	Body          string
	Path          string
	DiffHunk      string
	Line          int
	Side          string
	Position      *int // Nil when the comment is outside the current diff.
	InReplyToID   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PullRequestComment is the canonical mirror of a PR-level conversation
// comment (the provider delivers these through its issue comment events).
// PullRequestID is empty when the owning PR has not been mirrored yet.
type PullRequestComment struct {
	ID            string // Provider numeric id, stored as a string.
	PullRequestID string
	Author        string
	Body          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
