package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/prhist/github-pr-history/internal/models"
)

const (
	defaultBaseURL = "https://api.github.com"
	acceptHeader   = "application/vnd.github+json"
	apiVersion     = "2022-11-28"

	// requestTimeout is the fixed per-request deadline applied to every
	// round trip.
	requestTimeout = 30 * time.Second
)

// Client represents a client for the GitHub REST API. List endpoints are
// walked page by page via the Link header; single resources go through the
// typed go-github client on the same authenticated transport.
type Client struct {
	rest    *github.Client
	http    *http.Client
	baseURL string
}

// New creates a new GitHub API client authenticated with the given token.
func New(token string) (*Client, error) {
	if token == "" {
		return nil, ErrNoCredentials
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	hc := oauth2.NewClient(context.Background(), ts)
	hc.Timeout = requestTimeout

	return &Client{
		rest:    github.NewClient(hc),
		http:    hc,
		baseURL: defaultBaseURL,
	}, nil
}

func validateRepo(owner, name string) error {
	if owner == "" || name == "" {
		return fmt.Errorf("%w: owner and repo must be non-empty", ErrInvalidArgument)
	}
	return nil
}

// listAs materializes a paginated walk and decodes every item into T.
func listAs[T any](ctx context.Context, c *Client, rawURL string, params url.Values) ([]*T, error) {
	raw, err := collect(c.paginate(ctx, rawURL, params))
	if err != nil {
		return nil, err
	}

	items := make([]*T, 0, len(raw))
	for _, payload := range raw {
		item := new(T)
		if err := json.Unmarshal(payload, item); err != nil {
			return nil, fmt.Errorf("failed to decode item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// ListPullRequests lists all pull requests for a repository, open and closed.
func (c *Client) ListPullRequests(ctx context.Context, owner, name string) ([]*github.PullRequest, error) {
	if err := validateRepo(owner, name); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/repos/%s/%s/pulls", c.baseURL, owner, name)
	prs, err := listAs[github.PullRequest](ctx, c, u, url.Values{"state": {"all"}})
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}
	return prs, nil
}

// GetPullRequest fetches the full detail record for a single pull request,
// including stats, assignees, and requested reviewers that the list
// response omits.
func (c *Client) GetPullRequest(ctx context.Context, owner, name string, number int) (*github.PullRequest, error) {
	if err := validateRepo(owner, name); err != nil {
		return nil, err
	}

	pr, _, err := c.rest.PullRequests.Get(ctx, owner, name, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request #%d: %w", number, err)
	}
	return pr, nil
}

// ListReviews lists all reviews for a pull request.
func (c *Client) ListReviews(ctx context.Context, owner, name string, number int) ([]*github.PullRequestReview, error) {
	if err := validateRepo(owner, name); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews", c.baseURL, owner, name, number)
	reviews, err := listAs[github.PullRequestReview](ctx, c, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for PR #%d: %w", number, err)
	}
	return reviews, nil
}

// ListReviewComments lists comments attached to code lines of a pull request.
func (c *Client) ListReviewComments(ctx context.Context, owner, name string, number int) ([]*github.PullRequestComment, error) {
	if err := validateRepo(owner, name); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments", c.baseURL, owner, name, number)
	comments, err := listAs[github.PullRequestComment](ctx, c, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list review comments for PR #%d: %w", number, err)
	}
	return comments, nil
}

// ListIssueComments lists the general discussion comments of a pull request.
// PRs are also issues, so these live on the issues endpoint.
func (c *Client) ListIssueComments(ctx context.Context, owner, name string, number int) ([]*github.IssueComment, error) {
	if err := validateRepo(owner, name); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", c.baseURL, owner, name, number)
	comments, err := listAs[github.IssueComment](ctx, c, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list issue comments for PR #%d: %w", number, err)
	}
	return comments, nil
}

// ListCommits lists commits for a repository. A non-zero since bounds the
// result to commits after that time, applied by the upstream filter.
func (c *Client) ListCommits(ctx context.Context, owner, name string, since time.Time) ([]*github.RepositoryCommit, error) {
	if err := validateRepo(owner, name); err != nil {
		return nil, err
	}

	params := url.Values{}
	if !since.IsZero() {
		params.Set("since", since.Format(time.RFC3339))
	}

	u := fmt.Sprintf("%s/repos/%s/%s/commits", c.baseURL, owner, name)
	commits, err := listAs[github.RepositoryCommit](ctx, c, u, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	return commits, nil
}

// GetRepository gets a repository by owner and name.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (*models.Repository, error) {
	if err := validateRepo(owner, name); err != nil {
		return nil, err
	}

	repo, _, err := c.rest.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}

	return &models.Repository{
		ID:       repo.GetID(),
		Owner:    repo.GetOwner().GetLogin(),
		Name:     repo.GetName(),
		FullName: repo.GetFullName(),
	}, nil
}
