package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv(EnvGithubToken, "ghp_test")
	t.Setenv(EnvDatabaseURL, "postgres://localhost/pr_history")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "ghp_test", cfg.GithubToken)
	require.Equal(t, "postgres://localhost/pr_history", cfg.DatabaseURL)
}

func TestLoadMissingGithubToken(t *testing.T) {
	t.Setenv(EnvGithubToken, "")
	t.Setenv(EnvDatabaseURL, "postgres://localhost/pr_history")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingGithubToken)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv(EnvGithubToken, "ghp_test")
	t.Setenv(EnvDatabaseURL, "")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingDatabaseURL)
}
