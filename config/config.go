package config

import (
	"errors"
	"fmt"
	"os"
)

const (
	// EnvGithubToken is the environment variable name for the GitHub API token
	EnvGithubToken = "GITHUB_TOKEN"

	// EnvDatabaseURL is the environment variable name for the Postgres connection string
	EnvDatabaseURL = "DATABASE_URL"
)

var (
	ErrMissingGithubToken = errors.New("github token is not configured")
	ErrMissingDatabaseURL = errors.New("database url is not configured")
)

// Config holds the two credentials the pipeline needs. Both are required
// before any network activity starts.
type Config struct {
	GithubToken string
	DatabaseURL string
}

// Load reads the configuration from the process environment and fails fast
// when a credential is absent.
func Load() (*Config, error) {
	token := os.Getenv(EnvGithubToken)
	if token == "" {
		return nil, fmt.Errorf("%w: set %s", ErrMissingGithubToken, EnvGithubToken)
	}

	databaseURL := os.Getenv(EnvDatabaseURL)
	if databaseURL == "" {
		return nil, fmt.Errorf("%w: set %s", ErrMissingDatabaseURL, EnvDatabaseURL)
	}

	return &Config{
		GithubToken: token,
		DatabaseURL: databaseURL,
	}, nil
}
