package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"
)

// perPage is the maximum page size GitHub allows on list endpoints.
const perPage = "100"

// pageLink is one entry of a parsed Link response header.
type pageLink struct {
	url string
	rel string
}

// parseLinkHeader splits a Link header into its (url, relation) pairs.
//
//	<https://api.github.com/...?page=2>; rel="next", <...>; rel="last"
func parseLinkHeader(header string) []pageLink {
	var links []pageLink
	for _, part := range strings.Split(header, ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(sections[0]), "<>")
		for _, param := range sections[1:] {
			param = strings.TrimSpace(param)
			rel, ok := strings.CutPrefix(param, `rel="`)
			if !ok {
				continue
			}
			links = append(links, pageLink{url: target, rel: strings.TrimSuffix(rel, `"`)})
		}
	}
	return links
}

// nextPageURL returns the continuation URL, or "" when the walk is done.
func nextPageURL(links []pageLink) string {
	for _, link := range links {
		if link.rel == "next" {
			return link.url
		}
	}
	return ""
}

// paginate walks a paginated list endpoint and yields every raw item payload
// across all pages. The supplied params are sent only with the first request;
// continuation URLs from the Link header already encode them. The sequence is
// finite, forward-only, and restartable from scratch.
func (c *Client) paginate(ctx context.Context, rawURL string, params url.Values) iter.Seq2[json.RawMessage, error] {
	return func(yield func(json.RawMessage, error) bool) {
		query := url.Values{}
		for key, values := range params {
			query[key] = values
		}
		query.Set("per_page", perPage)

		next := rawURL
		for next != "" {
			items, continuation, err := c.fetchPage(ctx, next, query)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
			next = continuation
			query = nil
		}
	}
}

// fetchPage requests a single page and returns its items plus the
// continuation URL discovered in the Link header, if any.
func (c *Client) fetchPage(ctx context.Context, rawURL string, query url.Values) ([]json.RawMessage, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		io.Copy(io.Discard, resp.Body)
		return nil, "", &TransportError{StatusCode: resp.StatusCode, URL: req.URL.String()}
	}

	var items []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, "", fmt.Errorf("failed to decode page: %w", err)
	}

	return items, nextPageURL(parseLinkHeader(resp.Header.Get("Link"))), nil
}

// collect fully materializes a paginated sequence.
func collect(seq iter.Seq2[json.RawMessage, error]) ([]json.RawMessage, error) {
	var items []json.RawMessage
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
