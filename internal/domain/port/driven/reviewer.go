package driven

import "context"

// ReviewInput is the prepared context handed to the review generator.
type ReviewInput struct {
	Title string
	Body  string
	Diff  string
}

// ReviewResult is the generated review text plus the generator's verdict on
// whether the changes should be blocked.
type ReviewResult struct {
	Body           string
	RequestChanges bool
}

// Reviewer defines the driven port for the external review-generation
// service. The service is opaque: prepared context in, review text out.
type Reviewer interface {
	GenerateReview(ctx context.Context, in ReviewInput) (*ReviewResult, error)
}
