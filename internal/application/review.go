package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reviewloop/reviewloop/internal/domain/model"
	"github.com/reviewloop/reviewloop/internal/domain/port/driven"
)

// ReviewService generates and records bot reviews for opened pull requests,
// honoring the resolved settings for the owning account and repository.
type ReviewService struct {
	settings *SettingsService
	reviews  driven.ReviewStore
	provider driven.ProviderClient
	reviewer driven.Reviewer
	logger   *slog.Logger
}

// NewReviewService creates a new ReviewService. provider and reviewer may be
// nil when the corresponding credentials are not configured; auto-review is
// then skipped with a log line instead of failing event processing.
func NewReviewService(
	settings *SettingsService,
	reviews driven.ReviewStore,
	provider driven.ProviderClient,
	reviewer driven.Reviewer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		settings: settings,
		reviews:  reviews,
		provider: provider,
		reviewer: reviewer,
		logger:   logger,
	}
}

// ReviewOpenedPullRequest runs the auto-review pipeline for a freshly opened
// pull request: resolve effective settings, generate, submit, persist. The
// final persistence step tolerates failure (a redelivered "opened" event
// produces a duplicate review id) by logging and continuing.
func (s *ReviewService) ReviewOpenedPullRequest(ctx context.Context, pr model.PullRequest, ownerAccountID string) error {
	effective, err := s.settings.Resolve(ctx, ownerAccountID, pr.RepositoryID)
	if err != nil {
		return fmt.Errorf("resolve settings for account %s: %w", ownerAccountID, err)
	}
	if !effective.AutoReviewEnabled {
		return nil
	}

	if s.provider == nil || s.reviewer == nil {
		s.logger.Info("auto-review enabled but provider or reviewer not configured, skipping",
			"pr_id", pr.ID,
			"repo", pr.RepoFullName,
		)
		return nil
	}

	diff, err := s.provider.FetchDiff(ctx, pr.RepoFullName, pr.Number)
	if err != nil {
		return fmt.Errorf("fetch diff for %s#%d: %w", pr.RepoFullName, pr.Number, err)
	}

	result, err := s.reviewer.GenerateReview(ctx, driven.ReviewInput{
		Title: pr.Title,
		Body:  pr.Body,
		Diff:  diff,
	})
	if err != nil {
		return fmt.Errorf("generate review for %s#%d: %w", pr.RepoFullName, pr.Number, err)
	}

	event := "COMMENT"
	if effective.RequestChangesWorkflowEnabled && result.RequestChanges {
		event = "REQUEST_CHANGES"
	}

	created, err := s.provider.SubmitReview(ctx, pr.RepoFullName, pr.Number, driven.ReviewSubmission{
		CommitID: pr.HeadSHA,
		Event:    event,
		Body:     result.Body,
	})
	if err != nil {
		return fmt.Errorf("submit review for %s#%d: %w", pr.RepoFullName, pr.Number, err)
	}

	created.PullRequestID = pr.ID
	if err := s.reviews.SaveReview(ctx, *created); err != nil {
		// The review is already posted; a duplicate or transient store
		// failure must not fail event processing. The review webhook
		// delivery for our own submission converges the mirror anyway.
		s.logger.Warn("persisting generated review failed",
			"review_id", created.ID,
			"pr_id", pr.ID,
			"error", err,
		)
	}

	return nil
}
