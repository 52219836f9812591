// Package sonarqube fetches findings from a SonarQube-compatible server.
//
// Only the read path the coordinator needs is implemented: "fetch all
// issues for a project key". Transport errors are retried with
// exponential backoff; pages after the first are fetched concurrently.
package sonarqube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/sweepdev/sweep/internal/syncer"
)

const (
	pageSize        = 500
	maxConcurrency  = 4
	retryMaxElapsed = 30 * time.Second
	// creationDate uses SonarQube's RFC822-style zone offset.
	creationDateFormat = "2006-01-02T15:04:05-0700"
)

// Client talks to one SonarQube server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the given server. token may be empty
// for anonymous servers.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func newRetryBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = retryMaxElapsed
	return bo
}

// FetchIssues returns every issue for projectKey, handling pagination.
// The first page is fetched synchronously to learn the total; remaining
// pages are fetched concurrently and reassembled in page order.
func (c *Client) FetchIssues(ctx context.Context, projectKey string) ([]syncer.RemoteFinding, error) {
	first, err := c.fetchPage(ctx, projectKey, 1)
	if err != nil {
		return nil, err
	}

	pages := (first.Total + pageSize - 1) / pageSize
	results := map[int][]Issue{1: first.Issues}

	if pages > 1 {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxConcurrency)
		for p := 2; p <= pages; p++ {
			g.Go(func() error {
				resp, err := c.fetchPage(gctx, projectKey, p)
				if err != nil {
					return err
				}
				mu.Lock()
				results[p] = resp.Issues
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	pageNums := make([]int, 0, len(results))
	for p := range results {
		pageNums = append(pageNums, p)
	}
	sort.Ints(pageNums)

	var findings []syncer.RemoteFinding
	for _, p := range pageNums {
		for _, issue := range results[p] {
			findings = append(findings, toRemoteFinding(projectKey, issue))
		}
	}
	return findings, nil
}

func (c *Client) fetchPage(ctx context.Context, projectKey string, page int) (*searchResponse, error) {
	params := url.Values{
		"componentKeys": {projectKey},
		"ps":            {fmt.Sprintf("%d", pageSize)},
		"p":             {fmt.Sprintf("%d", page)},
	}
	apiURL := c.baseURL + "/api/issues/search?" + params.Encode()

	body, err := c.doRequest(ctx, apiURL)
	if err != nil {
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding issues page %d: %w", page, err)
	}
	return &result, nil
}

// doRequest performs a GET with retry on transient failures (network
// errors and 5xx responses). 4xx responses fail immediately.
func (c *Client) doRequest(ctx context.Context, apiURL string) ([]byte, error) {
	var body []byte

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("building request: %w", err))
		}
		c.setAuth(req)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("requesting %s: %w", apiURL, err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("server error %d from %s", resp.StatusCode, apiURL)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("request failed with %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
		}
		body = data
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(newRetryBackoff(), ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

// setAuth applies token authentication. SonarQube expects the token as
// the basic-auth username with an empty password.
func (c *Client) setAuth(req *http.Request) {
	if c.token != "" {
		req.SetBasicAuth(c.token, "")
	}
}

// toRemoteFinding converts a raw issue to the reconciliation input shape.
// The component is "projectKey:path/to/file"; the prefix is stripped so
// paths match the local working tree.
func toRemoteFinding(projectKey string, issue Issue) syncer.RemoteFinding {
	path := issue.Component
	if prefix := projectKey + ":"; strings.HasPrefix(path, prefix) {
		path = path[len(prefix):]
	}

	var created time.Time
	if issue.CreationDate != "" {
		if t, err := time.Parse(creationDateFormat, issue.CreationDate); err == nil {
			created = t.UTC()
		}
	}

	return syncer.RemoteFinding{
		Rule:      issue.Rule,
		Severity:  issue.Severity,
		Type:      issue.Type,
		Path:      path,
		Line:      issue.Line,
		Message:   issue.Message,
		Tags:      issue.Tags,
		CreatedAt: created,
	}
}
