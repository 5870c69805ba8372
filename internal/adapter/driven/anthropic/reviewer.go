// Package anthropic implements the Reviewer port using the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/reviewloop/reviewloop/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Reviewer = (*Reviewer)(nil)

const maxTokens = 4000

// The model is instructed to open its response with a verdict line, which is
// stripped from the posted review body.
const systemPrompt = `You are a code reviewer for pull requests.
Review the supplied diff for correctness, clarity, and risk. Be concise and
concrete; point at specific hunks. Do not restate the diff.

The first line of your response must be exactly "VERDICT: REQUEST_CHANGES"
if the changes contain a defect that should block merging, or
"VERDICT: COMMENT" otherwise. The review body follows on the next line.`

// Reviewer generates pull request reviews with the Anthropic Messages API.
type Reviewer struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewReviewer creates a Reviewer using the given API key and model name.
func NewReviewer(apiKey, model string) *Reviewer {
	return &Reviewer{
		client: anthropic.NewClient(apiKey),
		model:  anthropic.Model(model),
	}
}

// GenerateReview produces a review for the prepared pull request context.
func (r *Reviewer) GenerateReview(ctx context.Context, in driven.ReviewInput) (*driven.ReviewResult, error) {
	prompt := fmt.Sprintf("Title: %s\n\nDescription:\n%s\n\nDiff:\n%s", in.Title, in.Body, in.Diff)

	resp, err := r.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     r.model,
		System:    systemPrompt,
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating review message: %w", err)
	}

	body, requestChanges := parseVerdict(resp.GetFirstContentText())
	if body == "" {
		return nil, fmt.Errorf("review generation returned an empty response")
	}

	return &driven.ReviewResult{
		Body:           body,
		RequestChanges: requestChanges,
	}, nil
}

// parseVerdict splits the verdict line off the generated text. A missing or
// malformed verdict line downgrades to a plain comment with the full text.
func parseVerdict(text string) (string, bool) {
	first, rest, found := strings.Cut(text, "\n")
	if !found {
		first, rest = text, ""
	}

	switch strings.TrimSpace(first) {
	case "VERDICT: REQUEST_CHANGES":
		return strings.TrimSpace(rest), true
	case "VERDICT: COMMENT":
		return strings.TrimSpace(rest), false
	default:
		return strings.TrimSpace(text), false
	}
}
