package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB represents the backing store connection, a single long-lived handle
// reused across all writes in a run.
type DB struct {
	*sqlx.DB
}

// New opens a connection to the Postgres backing store.
func New(databaseURL string) (*DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Initialize creates the database schema if it doesn't exist
func (db *DB) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pull_requests (
		id BIGSERIAL PRIMARY KEY,
		github_pr_id BIGINT NOT NULL UNIQUE,
		repository_id TEXT NOT NULL,
		repository_full_name TEXT,
		pr_number INTEGER NOT NULL,
		title TEXT NOT NULL,
		body TEXT,
		state TEXT NOT NULL,
		author_github_id TEXT NOT NULL,
		commits_count INTEGER,
		additions INTEGER,
		deletions INTEGER,
		changed_files INTEGER,
		github_created_at TIMESTAMPTZ,
		github_updated_at TIMESTAMPTZ,
		merged_at TIMESTAMPTZ,
		closed_at TIMESTAMPTZ,
		assignees TEXT[],
		requested_reviewers TEXT[]
	);

	CREATE TABLE IF NOT EXISTS pr_reviews (
		id BIGSERIAL PRIMARY KEY,
		github_review_id BIGINT NOT NULL UNIQUE,
		repository_id TEXT NOT NULL,
		state TEXT NOT NULL,
		body TEXT,
		reviewer_github_id TEXT NOT NULL,
		github_submitted_at TIMESTAMPTZ,
		pull_request_id BIGINT REFERENCES pull_requests(id)
	);

	CREATE TABLE IF NOT EXISTS pr_comments (
		id BIGSERIAL PRIMARY KEY,
		github_comment_id BIGINT NOT NULL UNIQUE,
		repository_id TEXT NOT NULL,
		comment_type TEXT NOT NULL,
		body TEXT NOT NULL,
		author_github_id TEXT NOT NULL,
		is_bot BOOLEAN NOT NULL DEFAULT FALSE,
		review_id BIGINT,
		github_created_at TIMESTAMPTZ,
		pull_request_id BIGINT REFERENCES pull_requests(id)
	);

	CREATE TABLE IF NOT EXISTS commits (
		sha TEXT PRIMARY KEY,
		repository_id TEXT NOT NULL,
		repository_full_name TEXT NOT NULL,
		message TEXT NOT NULL,
		author_github_id TEXT,
		github_timestamp TIMESTAMPTZ
	);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
