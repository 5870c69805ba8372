package model

import "time"

// ReviewState mirrors the provider's review state (lowercased).
type ReviewState string

// Review states.
const (
	ReviewStateApproved         ReviewState = "approved"
	ReviewStateChangesRequested ReviewState = "changes_requested"
	ReviewStateCommented        ReviewState = "commented"
	ReviewStateDismissed        ReviewState = "dismissed"
)

// CodeReview is the canonical mirror of a submitted pull request review.
type CodeReview struct {
	ID            string // Provider numeric id, stored as a string.
	PullRequestID string
	Reviewer      string
	State         ReviewState
	Body          string
	CommitID      string
	SubmittedAt   time.Time
}
