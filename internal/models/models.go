package models

import (
	"github.com/lib/pq"
)

// Comment kinds persisted in pr_comments.comment_type.
const (
	CommentTypeReview = "review_comment"
	CommentTypeIssue  = "issue_comment"
)

// ReviewStatePending marks a review that has not been submitted yet.
// Pending reviews are never persisted.
const ReviewStatePending = "PENDING"

// Repository represents a GitHub repository
type Repository struct {
	ID       int64
	Owner    string
	Name     string
	FullName string
}

// PullRequest represents a row in the pull_requests table. Reviews and
// Comments ride along during a pipeline run only; the store relates them
// to the PR by foreign key, not by nesting.
type PullRequest struct {
	GithubPRID         int64          `db:"github_pr_id"`
	RepositoryID       string         `db:"repository_id"`
	RepositoryFullName *string        `db:"repository_full_name"`
	PRNumber           int            `db:"pr_number"`
	Title              string         `db:"title"`
	Body               *string        `db:"body"`
	State              string         `db:"state"`
	AuthorGithubID     string         `db:"author_github_id"`
	CommitsCount       *int           `db:"commits_count"`
	Additions          *int           `db:"additions"`
	Deletions          *int           `db:"deletions"`
	ChangedFiles       *int           `db:"changed_files"`
	GithubCreatedAt    *string        `db:"github_created_at"`
	GithubUpdatedAt    *string        `db:"github_updated_at"`
	MergedAt           *string        `db:"merged_at"`
	ClosedAt           *string        `db:"closed_at"`
	Assignees          pq.StringArray `db:"assignees"`
	RequestedReviewers pq.StringArray `db:"requested_reviewers"`

	Reviews  []*Review  `db:"-"`
	Comments []*Comment `db:"-"`
}

// Review represents a row in the pr_reviews table. PullRequestID is nil
// until the parent PR's store-assigned id is known.
type Review struct {
	GithubReviewID    int64   `db:"github_review_id"`
	RepositoryID      string  `db:"repository_id"`
	State             string  `db:"state"`
	Body              *string `db:"body"`
	ReviewerGithubID  string  `db:"reviewer_github_id"`
	GithubSubmittedAt *string `db:"github_submitted_at"`
	PullRequestID     *int64  `db:"pull_request_id"`
}

// Comment represents a row in the pr_comments table, covering both review
// comments (attached to a code line) and issue comments (general discussion).
// ReviewID is set only for review comments.
type Comment struct {
	GithubCommentID int64   `db:"github_comment_id"`
	RepositoryID    string  `db:"repository_id"`
	CommentType     string  `db:"comment_type"`
	Body            string  `db:"body"`
	AuthorGithubID  string  `db:"author_github_id"`
	IsBot           bool    `db:"is_bot"`
	ReviewID        *int64  `db:"review_id"`
	GithubCreatedAt *string `db:"github_created_at"`
	PullRequestID   *int64  `db:"pull_request_id"`
}

// Commit represents a row in the commits table. AuthorGithubID is nil when
// the commit email does not map to a known GitHub account.
type Commit struct {
	SHA                string  `db:"sha"`
	RepositoryID       string  `db:"repository_id"`
	RepositoryFullName string  `db:"repository_full_name"`
	Message            string  `db:"message"`
	AuthorGithubID     *string `db:"author_github_id"`
	GithubTimestamp    *string `db:"github_timestamp"`
}
