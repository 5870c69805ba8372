package webhook

import (
	"errors"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v82/github"

	"github.com/reviewloop/reviewloop/internal/domain/model"
)

// Payload sub-objects the mappers require. A payload missing one of these is
// malformed and the whole delivery is rejected upstream.
var (
	errNoAccount     = errors.New("payload has no installation account")
	errNoRepository  = errors.New("payload has no repository")
	errNoOwner       = errors.New("payload repository has no owner")
	errNoPullRequest = errors.New("payload has no pull request")
	errNoReview      = errors.New("payload has no review")
	errNoComment     = errors.New("payload has no comment")
)

// formatID renders a provider numeric id in its canonical string form.
// GitHub ids exceed 2^53, so they are never round-tripped through floats.
func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// accountFromPayload maps the installation target (a user or organization)
// to the canonical Account.
func accountFromPayload(account *gh.User) (model.Account, error) {
	if account == nil {
		return model.Account{}, errNoAccount
	}

	accountType := model.AccountTypeUser
	if account.GetType() == "Organization" {
		accountType = model.AccountTypeOrganization
	}

	return model.Account{
		ID:   formatID(account.GetID()),
		Name: account.GetLogin(),
		Type: accountType,
	}, nil
}

// repositoryFromInstallation maps a repository entry from an installation
// payload. These entries carry no owner object, so the owner id comes from
// the installation account and the name is cut from full_name.
func repositoryFromInstallation(repo *gh.Repository, ownerID string) (model.Repository, error) {
	if repo == nil {
		return model.Repository{}, errNoRepository
	}

	name := repo.GetName()
	if name == "" {
		if _, after, found := strings.Cut(repo.GetFullName(), "/"); found {
			name = after
		}
	}

	return model.Repository{
		ID:       formatID(repo.GetID()),
		Name:     name,
		FullName: repo.GetFullName(),
		OwnerID:  ownerID,
	}, nil
}

// repositoryFromPayload maps a full repository object, which carries its own
// owner.
func repositoryFromPayload(repo *gh.Repository) (model.Repository, error) {
	if repo == nil {
		return model.Repository{}, errNoRepository
	}
	if repo.Owner == nil {
		return model.Repository{}, errNoOwner
	}

	return model.Repository{
		ID:       formatID(repo.GetID()),
		Name:     repo.GetName(),
		FullName: repo.GetFullName(),
		OwnerID:  formatID(repo.Owner.GetID()),
	}, nil
}

// pullRequestFromPayload maps a pull request plus its surrounding repository.
func pullRequestFromPayload(pr *gh.PullRequest, repo *gh.Repository) (model.PullRequest, error) {
	if pr == nil {
		return model.PullRequest{}, errNoPullRequest
	}
	if repo == nil {
		return model.PullRequest{}, errNoRepository
	}

	mapped := model.PullRequest{
		ID:           formatID(pr.GetID()),
		RepositoryID: formatID(repo.GetID()),
		RepoFullName: repo.GetFullName(),
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		Body:         pr.GetBody(),
		State:        model.PRState(pr.GetState()),
		Author:       pr.GetUser().GetLogin(),
		HeadSHA:      pr.GetHead().GetSHA(),
		HeadBranch:   pr.GetHead().GetRef(),
		BaseBranch:   pr.GetBase().GetRef(),
		URL:          pr.GetHTMLURL(),
		CreatedAt:    pr.GetCreatedAt().Time,
		UpdatedAt:    pr.GetUpdatedAt().Time,
	}

	if pr.ClosedAt != nil {
		closedAt := pr.GetClosedAt().Time
		mapped.ClosedAt = &closedAt
	}

	return mapped, nil
}

// codeReviewFromPayload maps a submitted review. Review states arrive in
// mixed case across event actions; the canonical form is lowercase.
func codeReviewFromPayload(review *gh.PullRequestReview, pullRequestID string) (model.CodeReview, error) {
	if review == nil {
		return model.CodeReview{}, errNoReview
	}

	return model.CodeReview{
		ID:            formatID(review.GetID()),
		PullRequestID: pullRequestID,
		Reviewer:      review.GetUser().GetLogin(),
		State:         model.ReviewState(strings.ToLower(review.GetState())),
		Body:          review.GetBody(),
		CommitID:      review.GetCommitID(),
		SubmittedAt:   review.GetSubmittedAt().Time,
	}, nil
}

// reviewCommentFromPayload maps an inline review comment. Position and
// in_reply_to stay nil when absent from the payload.
func reviewCommentFromPayload(comment *gh.PullRequestComment, pullRequestID string) (model.CodeReviewComment, error) {
	if comment == nil {
		return model.CodeReviewComment{}, errNoComment
	}

	mapped := model.CodeReviewComment{
		ID:            formatID(comment.GetID()),
		ReviewID:      formatID(comment.GetPullRequestReviewID()),
		PullRequestID: pullRequestID,
		Author:        comment.GetUser().GetLogin(),
		Body:          comment.GetBody(),
		Path:          comment.GetPath(),
		DiffHunk:      comment.GetDiffHunk(),
		Line:          comment.GetLine(),
		Side:          comment.GetSide(),
		CreatedAt:     comment.GetCreatedAt().Time,
		UpdatedAt:     comment.GetUpdatedAt().Time,
	}

	if comment.Position != nil {
		position := comment.GetPosition()
		mapped.Position = &position
	}
	if comment.InReplyTo != nil {
		inReplyTo := formatID(comment.GetInReplyTo())
		mapped.InReplyToID = &inReplyTo
	}

	return mapped, nil
}

// prCommentFromPayload maps a PR-level conversation comment. The payload only
// carries the issue number, so the pull request id is resolved by the caller
// and may be empty when the PR is not mirrored yet.
func prCommentFromPayload(comment *gh.IssueComment, pullRequestID string) (model.PullRequestComment, error) {
	if comment == nil {
		return model.PullRequestComment{}, errNoComment
	}

	return model.PullRequestComment{
		ID:            formatID(comment.GetID()),
		PullRequestID: pullRequestID,
		Author:        comment.GetUser().GetLogin(),
		Body:          comment.GetBody(),
		CreatedAt:     comment.GetCreatedAt().Time,
		UpdatedAt:     comment.GetUpdatedAt().Time,
	}, nil
}
