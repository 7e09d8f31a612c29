package parse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/require"

	"github.com/prhist/github-pr-history/internal/models"
)

type fakeAPI struct {
	detail         *github.PullRequest
	reviews        []*github.PullRequestReview
	reviewComments []*github.PullRequestComment
	issueComments  []*github.IssueComment

	detailErr         error
	reviewsErr        error
	reviewCommentsErr error
	issueCommentsErr  error
}

func (f *fakeAPI) GetPullRequest(ctx context.Context, owner, name string, number int) (*github.PullRequest, error) {
	return f.detail, f.detailErr
}

func (f *fakeAPI) ListReviews(ctx context.Context, owner, name string, number int) ([]*github.PullRequestReview, error) {
	return f.reviews, f.reviewsErr
}

func (f *fakeAPI) ListReviewComments(ctx context.Context, owner, name string, number int) ([]*github.PullRequestComment, error) {
	return f.reviewComments, f.reviewCommentsErr
}

func (f *fakeAPI) ListIssueComments(ctx context.Context, owner, name string, number int) ([]*github.IssueComment, error) {
	return f.issueComments, f.issueCommentsErr
}

func listedPR(number int) []*github.PullRequest {
	return []*github.PullRequest{{Number: github.Int(number)}}
}

func user(id int64) *github.User {
	return &github.User{ID: github.Int64(id)}
}

func botUser(id int64) *github.User {
	return &github.User{ID: github.Int64(id), Type: github.String("Bot")}
}

func TestPullRequestsMapsDetailFields(t *testing.T) {
	created := github.Timestamp{Time: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)}
	merged := github.Timestamp{Time: time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)}

	api := &fakeAPI{
		detail: &github.PullRequest{
			ID:           github.Int64(1001),
			Number:       github.Int(1),
			Title:        github.String("Add widgets"),
			Body:         github.String("adds the widgets"),
			State:        github.String("closed"),
			User:         user(42),
			Commits:      github.Int(3),
			Additions:    github.Int(120),
			Deletions:    github.Int(8),
			ChangedFiles: github.Int(5),
			CreatedAt:    &created,
			MergedAt:     &merged,
			Assignees:    []*github.User{user(42), user(43)},
		},
	}

	prs, err := New(api).PullRequests(context.Background(), listedPR(1), "acme", "widget", "acme/widget")
	require.NoError(t, err)
	require.Len(t, prs, 1)

	pr := prs[0]
	require.Equal(t, int64(1001), pr.GithubPRID)
	require.Equal(t, "acme/widget", pr.RepositoryID)
	require.Equal(t, "acme/widget", *pr.RepositoryFullName)
	require.Equal(t, 1, pr.PRNumber)
	require.Equal(t, "Add widgets", pr.Title)
	require.Equal(t, "closed", pr.State)
	require.Equal(t, "42", pr.AuthorGithubID)
	require.Equal(t, 3, *pr.CommitsCount)
	require.Equal(t, 120, *pr.Additions)
	require.Equal(t, "2024-04-01T09:00:00Z", *pr.GithubCreatedAt)
	require.Equal(t, "2024-04-02T09:00:00Z", *pr.MergedAt)
	require.Nil(t, pr.ClosedAt)
	require.Equal(t, []string{"42", "43"}, []string(pr.Assignees))
	// No reviewers requested is persisted as NULL, not an empty list.
	require.Nil(t, pr.RequestedReviewers)
}

func TestPullRequestsFiltersPendingReviews(t *testing.T) {
	api := &fakeAPI{
		detail: &github.PullRequest{ID: github.Int64(1001), Number: github.Int(1), User: user(42)},
		reviews: []*github.PullRequestReview{
			{ID: github.Int64(1), State: github.String("APPROVED"), User: user(7)},
			{ID: github.Int64(2), State: github.String("PENDING"), User: user(8)},
			{ID: github.Int64(3), State: github.String("COMMENTED"), User: user(9)},
		},
	}

	prs, err := New(api).PullRequests(context.Background(), listedPR(1), "acme", "widget", "acme/widget")
	require.NoError(t, err)
	require.Len(t, prs[0].Reviews, 2)
	require.Equal(t, "APPROVED", prs[0].Reviews[0].State)
	require.Equal(t, "COMMENTED", prs[0].Reviews[1].State)
}

func TestPullRequestsMergesCommentSources(t *testing.T) {
	api := &fakeAPI{
		detail: &github.PullRequest{ID: github.Int64(1007), Number: github.Int(7), User: user(42)},
		reviewComments: []*github.PullRequestComment{
			{
				ID:                  github.Int64(31),
				Body:                github.String("nit: rename this"),
				User:                botUser(99),
				PullRequestReviewID: github.Int64(21),
			},
		},
		issueComments: []*github.IssueComment{
			{ID: github.Int64(32), Body: github.String("looks good overall"), User: user(7)},
		},
	}

	prs, err := New(api).PullRequests(context.Background(), listedPR(7), "acme", "widget", "acme/widget")
	require.NoError(t, err)
	require.Len(t, prs[0].Comments, 2)

	first, second := prs[0].Comments[0], prs[0].Comments[1]
	require.Equal(t, models.CommentTypeReview, first.CommentType)
	require.NotNil(t, first.ReviewID)
	require.Equal(t, int64(21), *first.ReviewID)
	require.True(t, first.IsBot)

	require.Equal(t, models.CommentTypeIssue, second.CommentType)
	require.Nil(t, second.ReviewID)
	require.False(t, second.IsBot)
}

func TestPullRequestsNestedFetchFailureAborts(t *testing.T) {
	boom := errors.New("boom")

	for name, api := range map[string]*fakeAPI{
		"detail":          {detailErr: boom},
		"reviews":         {detail: &github.PullRequest{ID: github.Int64(1)}, reviewsErr: boom},
		"review comments": {detail: &github.PullRequest{ID: github.Int64(1)}, reviewCommentsErr: boom},
		"issue comments":  {detail: &github.PullRequest{ID: github.Int64(1)}, issueCommentsErr: boom},
	} {
		t.Run(name, func(t *testing.T) {
			prs, err := New(api).PullRequests(context.Background(), listedPR(1), "acme", "widget", "acme/widget")
			require.ErrorIs(t, err, boom)
			require.Nil(t, prs)
		})
	}
}

func TestCommits(t *testing.T) {
	date := github.Timestamp{Time: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
	raw := []*github.RepositoryCommit{
		{
			SHA:    github.String("abc123"),
			Author: user(42),
			Commit: &github.Commit{
				Message: github.String("fix widget alignment"),
				Author:  &github.CommitAuthor{Date: &date},
			},
		},
		{
			// Author email that maps to no known account.
			SHA:    github.String("def456"),
			Commit: &github.Commit{Message: github.String("initial import")},
		},
	}

	commits := Commits(raw, "acme/widget", "acme/widget")
	require.Len(t, commits, 2)

	require.Equal(t, "abc123", commits[0].SHA)
	require.Equal(t, "fix widget alignment", commits[0].Message)
	require.NotNil(t, commits[0].AuthorGithubID)
	require.Equal(t, "42", *commits[0].AuthorGithubID)
	require.Equal(t, "2024-03-15T12:00:00Z", *commits[0].GithubTimestamp)

	require.Equal(t, "def456", commits[1].SHA)
	require.Nil(t, commits[1].AuthorGithubID)
	require.Nil(t, commits[1].GithubTimestamp)
}
