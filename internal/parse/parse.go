// Package parse transforms raw GitHub payloads into the normalized rows the
// store persists.
package parse

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/prhist/github-pr-history/internal/models"
)

// GitHubAPI is the slice of the API client the parser needs to resolve the
// nested resources of a pull request.
type GitHubAPI interface {
	GetPullRequest(ctx context.Context, owner, name string, number int) (*github.PullRequest, error)
	ListReviews(ctx context.Context, owner, name string, number int) ([]*github.PullRequestReview, error)
	ListReviewComments(ctx context.Context, owner, name string, number int) ([]*github.PullRequestComment, error)
	ListIssueComments(ctx context.Context, owner, name string, number int) ([]*github.IssueComment, error)
}

// Parser builds normalized pull request records, fetching the detail record
// and nested reviews/comments for each PR.
type Parser struct {
	api GitHubAPI
}

// New creates a new parser on top of the given API client.
func New(api GitHubAPI) *Parser {
	return &Parser{api: api}
}

// PullRequests parses every fetched pull request into a normalized record
// with its reviews and comments nested for the duration of the run. A failing
// nested fetch aborts the whole parse; no partial record is returned.
func (p *Parser) PullRequests(ctx context.Context, prs []*github.PullRequest, owner, name, repoID string) ([]*models.PullRequest, error) {
	parsed := make([]*models.PullRequest, 0, len(prs))
	fullName := fmt.Sprintf("%s/%s", owner, name)

	for _, pr := range prs {
		record, err := p.pullRequest(ctx, owner, name, repoID, fullName, pr.GetNumber())
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, record)
	}

	return parsed, nil
}

func (p *Parser) pullRequest(ctx context.Context, owner, name, repoID, fullName string, number int) (*models.PullRequest, error) {
	log.Debug().Int("pr", number).Msg("parsing pull request")

	detail, err := p.api.GetPullRequest(ctx, owner, name, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch details for PR #%d: %w", number, err)
	}

	rawReviews, err := p.api.ListReviews(ctx, owner, name, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews for PR #%d: %w", number, err)
	}

	reviews := make([]*models.Review, 0, len(rawReviews))
	for _, review := range rawReviews {
		// Not yet submitted; never persisted.
		if review.GetState() == models.ReviewStatePending {
			continue
		}
		reviews = append(reviews, &models.Review{
			GithubReviewID:    review.GetID(),
			RepositoryID:      repoID,
			State:             review.GetState(),
			Body:              review.Body,
			ReviewerGithubID:  userID(review.User),
			GithubSubmittedAt: timestamp(review.SubmittedAt),
		})
	}

	rawReviewComments, err := p.api.ListReviewComments(ctx, owner, name, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review comments for PR #%d: %w", number, err)
	}

	comments := make([]*models.Comment, 0, len(rawReviewComments))
	for _, comment := range rawReviewComments {
		comments = append(comments, &models.Comment{
			GithubCommentID: comment.GetID(),
			RepositoryID:    repoID,
			CommentType:     models.CommentTypeReview,
			Body:            comment.GetBody(),
			AuthorGithubID:  userID(comment.User),
			IsBot:           isBot(comment.User),
			ReviewID:        comment.PullRequestReviewID,
			GithubCreatedAt: timestamp(comment.CreatedAt),
		})
	}

	rawIssueComments, err := p.api.ListIssueComments(ctx, owner, name, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue comments for PR #%d: %w", number, err)
	}

	for _, comment := range rawIssueComments {
		comments = append(comments, &models.Comment{
			GithubCommentID: comment.GetID(),
			RepositoryID:    repoID,
			CommentType:     models.CommentTypeIssue,
			Body:            comment.GetBody(),
			AuthorGithubID:  userID(comment.User),
			IsBot:           isBot(comment.User),
			GithubCreatedAt: timestamp(comment.CreatedAt),
		})
	}

	return &models.PullRequest{
		GithubPRID:         detail.GetID(),
		RepositoryID:       repoID,
		RepositoryFullName: &fullName,
		PRNumber:           number,
		Title:              detail.GetTitle(),
		Body:               detail.Body,
		State:              detail.GetState(),
		AuthorGithubID:     userID(detail.User),
		CommitsCount:       detail.Commits,
		Additions:          detail.Additions,
		Deletions:          detail.Deletions,
		ChangedFiles:       detail.ChangedFiles,
		GithubCreatedAt:    timestamp(detail.CreatedAt),
		GithubUpdatedAt:    timestamp(detail.UpdatedAt),
		MergedAt:           timestamp(detail.MergedAt),
		ClosedAt:           timestamp(detail.ClosedAt),
		Assignees:          userIDList(detail.Assignees),
		RequestedReviewers: userIDList(detail.RequestedReviewers),
		Reviews:            reviews,
		Comments:           comments,
	}, nil
}

// Commits parses raw commit payloads into normalized records. A nil author
// sub-object means the commit email does not map to a known account; the
// author id is left absent.
func Commits(raw []*github.RepositoryCommit, repoID, fullName string) []*models.Commit {
	commits := make([]*models.Commit, 0, len(raw))

	for _, commit := range raw {
		var authorID *string
		if commit.Author != nil {
			id := userID(commit.Author)
			authorID = &id
		}

		var ts *string
		if commit.Commit != nil && commit.Commit.Author != nil {
			ts = timestamp(commit.Commit.Author.Date)
		}

		commits = append(commits, &models.Commit{
			SHA:                commit.GetSHA(),
			RepositoryID:       repoID,
			RepositoryFullName: fullName,
			Message:            commit.GetCommit().GetMessage(),
			AuthorGithubID:     authorID,
			GithubTimestamp:    ts,
		})
	}

	return commits
}

func userID(user *github.User) string {
	return strconv.FormatInt(user.GetID(), 10)
}

func isBot(user *github.User) bool {
	return user.GetType() == "Bot"
}

// userIDList returns nil, not an empty array, when no users are present so
// the persisted column stays NULL.
func userIDList(users []*github.User) pq.StringArray {
	if len(users) == 0 {
		return nil
	}
	ids := make(pq.StringArray, 0, len(users))
	for _, user := range users {
		ids = append(ids, userID(user))
	}
	return ids
}

func timestamp(ts *github.Timestamp) *string {
	if ts == nil {
		return nil
	}
	s := ts.Format(time.RFC3339)
	return &s
}
