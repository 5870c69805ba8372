package github_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghAdapter "github.com/reviewloop/reviewloop/internal/adapter/driven/github"
	"github.com/reviewloop/reviewloop/internal/domain/model"
	"github.com/reviewloop/reviewloop/internal/domain/port/driven"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) *ghAdapter.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/")
	require.NoError(t, err)

	return client
}

func TestFetchDiff(t *testing.T) {
	const diff = "diff --git a/widget.go b/widget.go\n+frobnicate()\n"

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/pulls/7", r.URL.Path)
		assert.Contains(t, r.Header.Get("Accept"), "diff")
		_, _ = w.Write([]byte(diff))
	}))

	got, err := client.FetchDiff(context.Background(), "acme/widgets", 7)
	require.NoError(t, err)
	assert.Equal(t, diff, got)
}

func TestFetchDiffInvalidRepoName(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	_, err := client.FetchDiff(context.Background(), "not-a-full-name", 7)
	require.Error(t, err)
}

func TestSubmitReview(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/acme/widgets/pulls/7/reviews", r.URL.Path)

		var req struct {
			CommitID string `json:"commit_id"`
			Event    string `json:"event"`
			Body     string `json:"body"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "abc123", req.CommitID)
		assert.Equal(t, "REQUEST_CHANGES", req.Event)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           5001,
			"state":        "CHANGES_REQUESTED",
			"body":         req.Body,
			"commit_id":    req.CommitID,
			"user":         map[string]any{"login": "reviewloop[bot]"},
			"submitted_at": "2026-03-01T10:00:00Z",
		})
	}))

	review, err := client.SubmitReview(context.Background(), "acme/widgets", 7, driven.ReviewSubmission{
		CommitID: "abc123",
		Event:    "REQUEST_CHANGES",
		Body:     "Blocking issue.",
	})
	require.NoError(t, err)
	assert.Equal(t, "5001", review.ID)
	assert.Equal(t, model.ReviewStateChangesRequested, review.State)
	assert.Equal(t, "reviewloop[bot]", review.Reviewer)
	assert.Equal(t, "abc123", review.CommitID)
}

func TestFetchAuthenticatedUser(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         3001,
			"login":      "octocat",
			"name":       "The Octocat",
			"avatar_url": "https://example.com/octocat.png",
		})
	}))

	user, err := client.FetchAuthenticatedUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3001", user.ID)
	assert.Equal(t, "octocat", user.Login)
	assert.Equal(t, "The Octocat", user.Name)
}

func TestFetchUserAccounts(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 3001, "login": "octocat"})
		case "/user/memberships/orgs":
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{
					"role":         "admin",
					"organization": map[string]any{"id": 1001, "login": "acme"},
				},
				{
					"role":         "member",
					"organization": map[string]any{"id": 1002, "login": "umbrella"},
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	memberships, err := client.FetchUserAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, memberships, 3)

	// Own account first, always configurable.
	assert.Equal(t, "3001", memberships[0].Account.ID)
	assert.Equal(t, model.AccountTypeUser, memberships[0].Account.Type)
	assert.True(t, memberships[0].CanConfigureBot)

	assert.Equal(t, "1001", memberships[1].Account.ID)
	assert.Equal(t, model.AccountTypeOrganization, memberships[1].Account.Type)
	assert.True(t, memberships[1].CanConfigureBot)

	assert.Equal(t, "1002", memberships[2].Account.ID)
	assert.False(t, memberships[2].CanConfigureBot)
}

func TestFetchUserRepositories(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/repos", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"id":          2001,
				"name":        "widgets",
				"full_name":   "acme/widgets",
				"owner":       map[string]any{"id": 1001, "login": "acme"},
				"permissions": map[string]bool{"admin": true, "push": true, "pull": true},
			},
			{
				"id":          2002,
				"name":        "gadgets",
				"full_name":   "acme/gadgets",
				"owner":       map[string]any{"id": 1001, "login": "acme"},
				"permissions": map[string]bool{"admin": false, "push": true, "pull": true},
			},
		})
	}))

	memberships, err := client.FetchUserRepositories(context.Background())
	require.NoError(t, err)
	require.Len(t, memberships, 2)

	assert.Equal(t, "2001", memberships[0].Repository.ID)
	assert.Equal(t, "1001", memberships[0].Repository.OwnerID)
	assert.True(t, memberships[0].CanConfigureBot)
	assert.False(t, memberships[1].CanConfigureBot)
}
