package db

import (
	"context"
	"fmt"

	"github.com/prhist/github-pr-history/internal/models"
)

// AssignedID reports the store-assigned identifier for one upserted pull
// request, keyed back to the input row by its GitHub id.
type AssignedID struct {
	ID         int64 `db:"id"`
	GithubPRID int64 `db:"github_pr_id"`
}

// UpsertPullRequests upserts pull request rows keyed by github_pr_id and
// returns the store-assigned id for every accepted row.
func (db *DB) UpsertPullRequests(ctx context.Context, prs []*models.PullRequest) ([]AssignedID, error) {
	query := `
	INSERT INTO pull_requests (
		github_pr_id, repository_id, repository_full_name, pr_number, title, body,
		state, author_github_id, commits_count, additions, deletions, changed_files,
		github_created_at, github_updated_at, merged_at, closed_at,
		assignees, requested_reviewers
	) VALUES (
		:github_pr_id, :repository_id, :repository_full_name, :pr_number, :title, :body,
		:state, :author_github_id, :commits_count, :additions, :deletions, :changed_files,
		:github_created_at, :github_updated_at, :merged_at, :closed_at,
		:assignees, :requested_reviewers
	)
	ON CONFLICT (github_pr_id) DO UPDATE SET
		title = EXCLUDED.title,
		body = EXCLUDED.body,
		state = EXCLUDED.state,
		commits_count = EXCLUDED.commits_count,
		additions = EXCLUDED.additions,
		deletions = EXCLUDED.deletions,
		changed_files = EXCLUDED.changed_files,
		github_updated_at = EXCLUDED.github_updated_at,
		merged_at = EXCLUDED.merged_at,
		closed_at = EXCLUDED.closed_at,
		assignees = EXCLUDED.assignees,
		requested_reviewers = EXCLUDED.requested_reviewers
	RETURNING id, github_pr_id
	`

	stmt, err := db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare pull_requests upsert: %w", err)
	}
	defer stmt.Close()

	assigned := make([]AssignedID, 0, len(prs))
	for _, pr := range prs {
		var row AssignedID
		if err := stmt.QueryRowxContext(ctx, pr).StructScan(&row); err != nil {
			return nil, fmt.Errorf("failed to upsert pull request #%d: %w", pr.PRNumber, err)
		}
		assigned = append(assigned, row)
	}

	return assigned, nil
}

// UpsertReviews upserts review rows keyed by github_review_id.
func (db *DB) UpsertReviews(ctx context.Context, reviews []*models.Review) error {
	query := `
	INSERT INTO pr_reviews (
		github_review_id, repository_id, state, body, reviewer_github_id,
		github_submitted_at, pull_request_id
	) VALUES (
		:github_review_id, :repository_id, :state, :body, :reviewer_github_id,
		:github_submitted_at, :pull_request_id
	)
	ON CONFLICT (github_review_id) DO UPDATE SET
		state = EXCLUDED.state,
		body = EXCLUDED.body,
		github_submitted_at = EXCLUDED.github_submitted_at,
		pull_request_id = EXCLUDED.pull_request_id
	`

	for _, review := range reviews {
		if _, err := db.NamedExecContext(ctx, query, review); err != nil {
			return fmt.Errorf("failed to upsert review %d: %w", review.GithubReviewID, err)
		}
	}

	return nil
}

// UpsertComments upserts comment rows keyed by github_comment_id.
func (db *DB) UpsertComments(ctx context.Context, comments []*models.Comment) error {
	query := `
	INSERT INTO pr_comments (
		github_comment_id, repository_id, comment_type, body, author_github_id,
		is_bot, review_id, github_created_at, pull_request_id
	) VALUES (
		:github_comment_id, :repository_id, :comment_type, :body, :author_github_id,
		:is_bot, :review_id, :github_created_at, :pull_request_id
	)
	ON CONFLICT (github_comment_id) DO UPDATE SET
		body = EXCLUDED.body,
		is_bot = EXCLUDED.is_bot,
		review_id = EXCLUDED.review_id,
		pull_request_id = EXCLUDED.pull_request_id
	`

	for _, comment := range comments {
		if _, err := db.NamedExecContext(ctx, query, comment); err != nil {
			return fmt.Errorf("failed to upsert comment %d: %w", comment.GithubCommentID, err)
		}
	}

	return nil
}

// UpsertCommits upserts commit rows keyed by sha.
func (db *DB) UpsertCommits(ctx context.Context, commits []*models.Commit) error {
	query := `
	INSERT INTO commits (
		sha, repository_id, repository_full_name, message, author_github_id, github_timestamp
	) VALUES (
		:sha, :repository_id, :repository_full_name, :message, :author_github_id, :github_timestamp
	)
	ON CONFLICT (sha) DO UPDATE SET
		message = EXCLUDED.message,
		author_github_id = EXCLUDED.author_github_id,
		github_timestamp = EXCLUDED.github_timestamp
	`

	for _, commit := range commits {
		if _, err := db.NamedExecContext(ctx, query, commit); err != nil {
			return fmt.Errorf("failed to upsert commit %s: %w", commit.SHA, err)
		}
	}

	return nil
}
