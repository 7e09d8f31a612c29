package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredentials is returned when no GitHub token is configured.
	ErrNoCredentials = errors.New("no github token configured")

	// ErrInvalidArgument is returned when owner or repository name is empty.
	ErrInvalidArgument = errors.New("invalid argument")
)

// TransportError reports a non-success HTTP status from the GitHub API.
type TransportError struct {
	StatusCode int
	URL        string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("github api: unexpected status %d for %s", e.StatusCode, e.URL)
}
