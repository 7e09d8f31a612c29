package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/prhist/github-pr-history/internal/models"
)

// Store is the upsert surface of the backing store, one operation per
// logical table.
type Store interface {
	UpsertPullRequests(ctx context.Context, prs []*models.PullRequest) ([]AssignedID, error)
	UpsertReviews(ctx context.Context, reviews []*models.Review) error
	UpsertComments(ctx context.Context, comments []*models.Comment) error
	UpsertCommits(ctx context.Context, commits []*models.Commit) error
}

// Writer sequences the multi-stage upserts: parents first, then children
// re-linked to the store-assigned parent ids.
type Writer struct {
	store Store
}

// NewWriter creates a new writer on top of the given store.
func NewWriter(store Store) *Writer {
	return &Writer{store: store}
}

// WritePullRequests upserts pull requests, maps each GitHub PR id to its
// store-assigned id, then upserts reviews and comments linked to those ids
// in two separate batches. Children whose parent id the store did not report
// are dropped, not erred.
func (w *Writer) WritePullRequests(ctx context.Context, prs []*models.PullRequest) error {
	if len(prs) == 0 {
		log.Info().Msg("no pull requests to write")
		return nil
	}

	assigned, err := w.store.UpsertPullRequests(ctx, prs)
	if err != nil {
		return fmt.Errorf("failed to upsert pull requests: %w", err)
	}

	idsByPR := make(map[int64]int64, len(assigned))
	for _, row := range assigned {
		idsByPR[row.GithubPRID] = row.ID
	}
	log.Info().Int("count", len(idsByPR)).Msg("upserted pull requests")

	var reviews []*models.Review
	var comments []*models.Comment
	for _, pr := range prs {
		id, ok := idsByPR[pr.GithubPRID]
		if !ok {
			continue
		}
		for _, review := range pr.Reviews {
			review.PullRequestID = &id
			reviews = append(reviews, review)
		}
		for _, comment := range pr.Comments {
			comment.PullRequestID = &id
			comments = append(comments, comment)
		}
	}

	if len(reviews) > 0 {
		if err := w.store.UpsertReviews(ctx, reviews); err != nil {
			return fmt.Errorf("failed to upsert reviews: %w", err)
		}
		log.Info().Int("count", len(reviews)).Msg("upserted reviews")
	} else {
		log.Debug().Msg("no reviews to insert")
	}

	if len(comments) > 0 {
		if err := w.store.UpsertComments(ctx, comments); err != nil {
			return fmt.Errorf("failed to upsert comments: %w", err)
		}
		log.Info().Int("count", len(comments)).Msg("upserted comments")
	} else {
		log.Debug().Msg("no comments to insert")
	}

	return nil
}

// WriteCommits upserts commits in a single stage; commits have no children.
func (w *Writer) WriteCommits(ctx context.Context, commits []*models.Commit) error {
	if len(commits) == 0 {
		log.Info().Msg("no commits to write")
		return nil
	}

	if err := w.store.UpsertCommits(ctx, commits); err != nil {
		return fmt.Errorf("failed to upsert commits: %w", err)
	}
	log.Info().Int("count", len(commits)).Msg("upserted commits")

	return nil
}
