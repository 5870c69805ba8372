// Package github implements the ProviderClient port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/reviewloop/reviewloop/internal/domain/model"
	"github.com/reviewloop/reviewloop/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ProviderClient = (*Client)(nil)

// Client implements the driven.ProviderClient port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// FetchDiff returns the unified diff of a pull request.
func (c *Client) FetchDiff(ctx context.Context, repoFullName string, number int) (string, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return "", err
	}

	diff, resp, err := c.gh.PullRequests.GetRaw(ctx, owner, repo, number, gh.RawOptions{Type: gh.Diff})
	if err != nil {
		return "", fmt.Errorf("fetching diff for %s#%d: %w", repoFullName, number, err)
	}

	logRateLimit(resp, repoFullName+"/diff", 0, 1)
	return diff, nil
}

// SubmitReview posts a review on a pull request and returns the created
// review as GitHub recorded it. The caller links it to the stored pull
// request before persisting.
func (c *Client) SubmitReview(ctx context.Context, repoFullName string, number int, req driven.ReviewSubmission) (*model.CodeReview, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	request := &gh.PullRequestReviewRequest{
		CommitID: gh.Ptr(req.CommitID),
		Event:    gh.Ptr(req.Event),
		Body:     gh.Ptr(req.Body),
	}

	created, resp, err := c.gh.PullRequests.CreateReview(ctx, owner, repo, number, request)
	if err != nil {
		return nil, fmt.Errorf("creating review for %s#%d: %w", repoFullName, number, err)
	}

	logRateLimit(resp, repoFullName+"/create-review", 0, 1)
	return mapReview(created), nil
}

// mapReview converts a go-github PullRequestReview to a domain CodeReview.
// The API reports states in upper case; the canonical form is lowercase.
func mapReview(r *gh.PullRequestReview) *model.CodeReview {
	return &model.CodeReview{
		ID:          formatID(r.GetID()),
		Reviewer:    r.GetUser().GetLogin(),
		State:       model.ReviewState(strings.ToLower(r.GetState())),
		Body:        r.GetBody(),
		CommitID:    r.GetCommitID(),
		SubmittedAt: r.GetSubmittedAt().Time,
	}
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// formatID renders a GitHub numeric id in its canonical string form.
func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
