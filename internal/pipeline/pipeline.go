// Package pipeline sequences the backfill: fetch pull requests and commits,
// parse them into normalized rows, and write them to the store.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/rs/zerolog/log"

	"github.com/prhist/github-pr-history/internal/models"
	"github.com/prhist/github-pr-history/internal/parse"
)

// API is the slice of the GitHub client the pipeline fetches top-level
// resources through.
type API interface {
	ListPullRequests(ctx context.Context, owner, name string) ([]*github.PullRequest, error)
	ListCommits(ctx context.Context, owner, name string, since time.Time) ([]*github.RepositoryCommit, error)
}

// Writer persists parsed records.
type Writer interface {
	WritePullRequests(ctx context.Context, prs []*models.PullRequest) error
	WriteCommits(ctx context.Context, commits []*models.Commit) error
}

// Pipeline runs the fetch -> parse -> write sequence for one repository.
type Pipeline struct {
	api    API
	parser *parse.Parser
	writer Writer

	// Since bounds the commit fetch when non-zero.
	Since time.Time
}

// New creates a new pipeline.
func New(api API, parser *parse.Parser, writer Writer) *Pipeline {
	return &Pipeline{api: api, parser: parser, writer: writer}
}

// Run executes the full backfill for owner/name. The repository id used for
// all foreign-keying is the literal "owner/name" string, matching how the
// webhook-driven writer keys the same tables. Any stage failure aborts the
// remaining stages; completed upserts stay committed and a rerun is safe.
func (p *Pipeline) Run(ctx context.Context, owner, name string, includeCommits bool) error {
	repoID := fmt.Sprintf("%s/%s", owner, name)
	log.Info().Str("repository", repoID).Msg("starting pipeline")

	prs, err := p.api.ListPullRequests(ctx, owner, name)
	if err != nil {
		return fmt.Errorf("failed to fetch pull requests: %w", err)
	}
	log.Info().Int("count", len(prs)).Msg("fetched pull requests")

	if len(prs) > 0 {
		parsed, err := p.parser.PullRequests(ctx, prs, owner, name, repoID)
		if err != nil {
			return fmt.Errorf("failed to parse pull requests: %w", err)
		}
		log.Info().Int("count", len(parsed)).Msg("parsed pull requests")

		if err := p.writer.WritePullRequests(ctx, parsed); err != nil {
			return fmt.Errorf("failed to write pull requests: %w", err)
		}
	}

	if includeCommits {
		raw, err := p.api.ListCommits(ctx, owner, name, p.Since)
		if err != nil {
			return fmt.Errorf("failed to fetch commits: %w", err)
		}
		log.Info().Int("count", len(raw)).Msg("fetched commits")

		if len(raw) > 0 {
			commits := parse.Commits(raw, repoID, repoID)
			if err := p.writer.WriteCommits(ctx, commits); err != nil {
				return fmt.Errorf("failed to write commits: %w", err)
			}
		}
	}

	log.Info().Str("repository", repoID).Msg("pipeline completed")
	return nil
}
