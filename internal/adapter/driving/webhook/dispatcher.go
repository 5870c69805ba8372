package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gh "github.com/google/go-github/v82/github"

	"github.com/reviewloop/reviewloop/internal/application"
	"github.com/reviewloop/reviewloop/internal/domain/model"
	"github.com/reviewloop/reviewloop/internal/domain/port/driven"
)

// Dispatcher routes parsed webhook events to the stores and services that
// keep the local mirror converged with the provider.
//
// Processing is deliberately tolerant: a failing event is logged and dropped
// rather than propagated, so one bad delivery never blocks the stream. The
// provider redelivers on non-2xx responses, and every write underneath is
// idempotent, so dropping and redelivering both converge.
type Dispatcher struct {
	accounts driven.AccountStore
	repos    driven.RepoStore
	prs      driven.PRStore
	reviews  driven.ReviewStore
	reviewer *application.ReviewService
	logger   *slog.Logger
}

// NewDispatcher creates a new Dispatcher. reviewer may be nil when
// auto-review is not configured.
func NewDispatcher(
	accounts driven.AccountStore,
	repos driven.RepoStore,
	prs driven.PRStore,
	reviews driven.ReviewStore,
	reviewer *application.ReviewService,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		accounts: accounts,
		repos:    repos,
		prs:      prs,
		reviews:  reviews,
		reviewer: reviewer,
		logger:   logger,
	}
}

// Dispatch processes one parsed event. It never returns an error: failures
// are logged with the delivery id and swallowed so the handler can always
// acknowledge the delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, deliveryID, eventType string, event any) {
	var err error

	switch e := event.(type) {
	case *gh.InstallationEvent:
		err = d.handleInstallation(ctx, e)
	case *gh.InstallationRepositoriesEvent:
		err = d.handleInstallationRepositories(ctx, e)
	case *gh.RepositoryEvent:
		err = d.handleRepository(ctx, e)
	case *gh.PullRequestEvent:
		err = d.handlePullRequest(ctx, e)
	case *gh.PullRequestReviewEvent:
		err = d.handlePullRequestReview(ctx, e)
	case *gh.PullRequestReviewCommentEvent:
		err = d.handleReviewComment(ctx, e)
	case *gh.IssueCommentEvent:
		err = d.handleIssueComment(ctx, e)
	default:
		d.logger.Debug("ignoring webhook event",
			"delivery_id", deliveryID,
			"event", eventType,
		)
		return
	}

	if err != nil {
		d.logger.Error("webhook event processing failed",
			"delivery_id", deliveryID,
			"event", eventType,
			"error", err,
		)
		return
	}

	d.logger.Info("webhook event processed",
		"delivery_id", deliveryID,
		"event", eventType,
	)
}

// handleInstallation mirrors app installation lifecycle. "created" registers
// the account and every repository in the grant; "deleted" removes the
// account, cascading to its repositories and settings.
func (d *Dispatcher) handleInstallation(ctx context.Context, e *gh.InstallationEvent) error {
	switch e.GetAction() {
	case "created":
		account, err := accountFromPayload(e.GetInstallation().GetAccount())
		if err != nil {
			return err
		}
		if err := d.accounts.Save(ctx, account); err != nil {
			return fmt.Errorf("save account %s: %w", account.ID, err)
		}

		repos := make([]model.Repository, 0, len(e.Repositories))
		for _, r := range e.Repositories {
			repo, err := repositoryFromInstallation(r, account.ID)
			if err != nil {
				return err
			}
			repos = append(repos, repo)
		}
		if err := d.repos.SaveAll(ctx, repos); err != nil {
			return fmt.Errorf("save repositories for account %s: %w", account.ID, err)
		}
		return nil

	case "deleted":
		account, err := accountFromPayload(e.GetInstallation().GetAccount())
		if err != nil {
			return err
		}
		if err := d.accounts.Delete(ctx, account.ID); err != nil && !errors.Is(err, driven.ErrAccountNotFound) {
			return fmt.Errorf("delete account %s: %w", account.ID, err)
		}
		return nil

	default:
		return nil
	}
}

// handleInstallationRepositories mirrors repository grant changes on an
// existing installation.
func (d *Dispatcher) handleInstallationRepositories(ctx context.Context, e *gh.InstallationRepositoriesEvent) error {
	account, err := accountFromPayload(e.GetInstallation().GetAccount())
	if err != nil {
		return err
	}

	switch e.GetAction() {
	case "added":
		repos := make([]model.Repository, 0, len(e.RepositoriesAdded))
		for _, r := range e.RepositoriesAdded {
			repo, err := repositoryFromInstallation(r, account.ID)
			if err != nil {
				return err
			}
			repos = append(repos, repo)
		}
		if err := d.repos.SaveAll(ctx, repos); err != nil {
			return fmt.Errorf("save added repositories for account %s: %w", account.ID, err)
		}
		return nil

	case "removed":
		ids := make([]string, 0, len(e.RepositoriesRemoved))
		for _, r := range e.RepositoriesRemoved {
			if r == nil {
				return errNoRepository
			}
			ids = append(ids, formatID(r.GetID()))
		}
		if err := d.repos.DeleteByIDs(ctx, ids); err != nil {
			return fmt.Errorf("delete removed repositories for account %s: %w", account.ID, err)
		}
		return nil

	default:
		return nil
	}
}

// handleRepository mirrors renames and deletions of individual repositories.
func (d *Dispatcher) handleRepository(ctx context.Context, e *gh.RepositoryEvent) error {
	repo := e.GetRepo()
	if repo == nil {
		return errNoRepository
	}
	id := formatID(repo.GetID())

	switch e.GetAction() {
	case "renamed":
		if err := d.repos.Rename(ctx, id, repo.GetName(), repo.GetFullName()); err != nil {
			if errors.Is(err, driven.ErrRepoNotFound) {
				// Rename for a repository outside the install grant.
				return nil
			}
			return fmt.Errorf("rename repository %s: %w", id, err)
		}
		return nil

	case "deleted":
		if err := d.repos.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete repository %s: %w", id, err)
		}
		return nil

	default:
		return nil
	}
}

// handlePullRequest mirrors pull request lifecycle. An "opened" action also
// kicks off the auto-review pipeline when it is configured; its failure does
// not undo the already-mirrored pull request.
func (d *Dispatcher) handlePullRequest(ctx context.Context, e *gh.PullRequestEvent) error {
	switch e.GetAction() {
	case "opened":
		pr, err := pullRequestFromPayload(e.GetPullRequest(), e.GetRepo())
		if err != nil {
			return err
		}
		if err := d.prs.Save(ctx, pr); err != nil {
			return fmt.Errorf("save pull request %s: %w", pr.ID, err)
		}

		if d.reviewer != nil {
			ownerID := formatID(e.GetRepo().GetOwner().GetID())
			if err := d.reviewer.ReviewOpenedPullRequest(ctx, pr, ownerID); err != nil {
				d.logger.Error("auto-review failed",
					"pr_id", pr.ID,
					"repo", pr.RepoFullName,
					"error", err,
				)
			}
		}
		return nil

	case "edited", "synchronize", "closed", "reopened":
		pr, err := pullRequestFromPayload(e.GetPullRequest(), e.GetRepo())
		if err != nil {
			return err
		}
		if err := d.prs.Update(ctx, pr); err != nil {
			return fmt.Errorf("update pull request %s: %w", pr.ID, err)
		}
		return nil

	default:
		return nil
	}
}

// handlePullRequestReview mirrors submitted reviews and their later edits
// and dismissals. A redelivered "submitted" hits the duplicate guard and is
// treated as converged.
func (d *Dispatcher) handlePullRequestReview(ctx context.Context, e *gh.PullRequestReviewEvent) error {
	if e.GetPullRequest() == nil {
		return errNoPullRequest
	}
	prID := formatID(e.GetPullRequest().GetID())

	review, err := codeReviewFromPayload(e.GetReview(), prID)
	if err != nil {
		return err
	}

	switch e.GetAction() {
	case "submitted":
		if err := d.reviews.SaveReview(ctx, review); err != nil {
			if errors.Is(err, driven.ErrDuplicateReview) {
				d.logger.Debug("duplicate review delivery", "review_id", review.ID)
				return nil
			}
			return fmt.Errorf("save review %s: %w", review.ID, err)
		}
		return nil

	case "edited":
		if err := d.reviews.UpdateReviewBody(ctx, review.ID, review.Body); err != nil {
			return fmt.Errorf("update review %s: %w", review.ID, err)
		}
		return nil

	case "dismissed":
		if err := d.reviews.UpdateReviewState(ctx, review.ID, model.ReviewStateDismissed); err != nil {
			return fmt.Errorf("dismiss review %s: %w", review.ID, err)
		}
		return nil

	default:
		return nil
	}
}

// handleReviewComment mirrors inline review comment lifecycle.
func (d *Dispatcher) handleReviewComment(ctx context.Context, e *gh.PullRequestReviewCommentEvent) error {
	if e.GetPullRequest() == nil {
		return errNoPullRequest
	}
	prID := formatID(e.GetPullRequest().GetID())

	comment, err := reviewCommentFromPayload(e.GetComment(), prID)
	if err != nil {
		return err
	}

	switch e.GetAction() {
	case "created":
		if err := d.reviews.SaveReviewComment(ctx, comment); err != nil {
			return fmt.Errorf("save review comment %s: %w", comment.ID, err)
		}
		return nil

	case "edited":
		if err := d.reviews.UpdateReviewComment(ctx, comment.ID, comment.Body, comment.UpdatedAt); err != nil {
			return fmt.Errorf("update review comment %s: %w", comment.ID, err)
		}
		return nil

	case "deleted":
		if err := d.reviews.DeleteReviewComment(ctx, comment.ID); err != nil {
			return fmt.Errorf("delete review comment %s: %w", comment.ID, err)
		}
		return nil

	default:
		return nil
	}
}

// handleIssueComment mirrors PR-level conversation comments. Issue comments
// on plain issues are ignored. The payload carries only the issue number, so
// the owning pull request is looked up by (repository, number); a comment
// arriving before its PR is stored unlinked.
func (d *Dispatcher) handleIssueComment(ctx context.Context, e *gh.IssueCommentEvent) error {
	if !e.GetIssue().IsPullRequest() {
		return nil
	}
	if e.GetRepo() == nil {
		return errNoRepository
	}

	prID := ""
	repoID := formatID(e.GetRepo().GetID())
	pr, err := d.prs.GetByRepoNumber(ctx, repoID, e.GetIssue().GetNumber())
	if err != nil {
		return fmt.Errorf("resolve pull request for comment: %w", err)
	}
	if pr != nil {
		prID = pr.ID
	}

	comment, err := prCommentFromPayload(e.GetComment(), prID)
	if err != nil {
		return err
	}

	switch e.GetAction() {
	case "created":
		if err := d.reviews.SavePullRequestComment(ctx, comment); err != nil {
			return fmt.Errorf("save pull request comment %s: %w", comment.ID, err)
		}
		return nil

	case "edited":
		if err := d.reviews.UpdatePullRequestComment(ctx, comment.ID, comment.Body, comment.UpdatedAt); err != nil {
			return fmt.Errorf("update pull request comment %s: %w", comment.ID, err)
		}
		return nil

	case "deleted":
		if err := d.reviews.DeletePullRequestComment(ctx, comment.ID); err != nil {
			return fmt.Errorf("delete pull request comment %s: %w", comment.ID, err)
		}
		return nil

	default:
		return nil
	}
}
