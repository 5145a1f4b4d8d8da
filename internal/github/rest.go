package gh

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	github "github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"
)

const (
	defaultUserAgent = "mure"

	// GitHub search results are capped at 1000 anyway, but the page counter
	// guards against a pagination loop that never terminates.
	searchPageLimit = 100

	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
)

// NewRESTFactory returns a GitHub client factory backed by the go-github
// REST client.
func NewRESTFactory() Factory {
	return &restFactory{userAgent: defaultUserAgent}
}

type restFactory struct {
	userAgent string
}

func (f *restFactory) New(ctx context.Context, token string) (Client, error) {
	if token == "" {
		return nil, fmt.Errorf("github token is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)

	ghClient := github.NewClient(tc)
	if f.userAgent != "" {
		ghClient.UserAgent = f.userAgent
	}

	return &restClient{
		client:      ghClient,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
	}, nil
}

type restClient struct {
	client      *github.Client
	maxAttempts int
	retryDelay  time.Duration
}

// SearchRepositories walks the repository search results for query. The REST
// open_issues_count mixes issues and pull requests together, so each row is
// completed with a separate open-PR search and the difference becomes the
// issue count.
func (c *restClient) SearchRepositories(ctx context.Context, query string) ([]RepoSummary, error) {
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var results []RepoSummary

	for page := 0; ; page++ {
		var (
			found *github.RepositoriesSearchResult
			resp  *github.Response
		)
		err := c.withRetry(ctx, func() error {
			var err error
			found, resp, err = c.client.Search.Repositories(ctx, query, opts)
			return classifyGitHubError(err)
		})
		if err != nil {
			return nil, fmt.Errorf("search repositories %q: %w", query, err)
		}

		for _, repo := range found.Repositories {
			if repo == nil {
				continue
			}
			summary, err := c.summarize(ctx, repo)
			if err != nil {
				return nil, err
			}
			results = append(results, summary)
		}

		if resp == nil || resp.NextPage == 0 || page >= searchPageLimit {
			break
		}
		opts.Page = resp.NextPage
	}

	return results, nil
}

func (c *restClient) summarize(ctx context.Context, repo *github.Repository) (RepoSummary, error) {
	prs, err := c.openPullRequestCount(ctx, repo.GetFullName())
	if err != nil {
		return RepoSummary{}, err
	}

	issues := repo.GetOpenIssuesCount() - prs
	if issues < 0 {
		issues = 0
	}

	return RepoSummary{
		Name:          repo.GetName(),
		OpenIssues:    issues,
		OpenPRs:       prs,
		DefaultBranch: repo.GetDefaultBranch(),
		URL:           repo.GetHTMLURL(),
	}, nil
}

func (c *restClient) openPullRequestCount(ctx context.Context, fullName string) (int, error) {
	query := fmt.Sprintf("repo:%s is:pr is:open", fullName)
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}}

	var found *github.IssuesSearchResult
	err := c.withRetry(ctx, func() error {
		var err error
		found, _, err = c.client.Search.Issues(ctx, query, opts)
		return classifyGitHubError(err)
	})
	if err != nil {
		return 0, fmt.Errorf("count open pull requests for %s: %w", fullName, err)
	}
	return found.GetTotal(), nil
}

// withRetry reruns op for retryable failures, doubling the delay between
// attempts. Non-retryable errors return immediately.
func (c *restClient) withRetry(ctx context.Context, op func() error) error {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		err := op()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err
	}

	return lastErr
}

func classifyGitHubError(err error) error {
	if err == nil {
		return nil
	}
	if isRetryableGitHubError(err) {
		return &retryableError{err: err}
	}
	return err
}

func isRetryableGitHubError(err error) bool {
	if err == nil {
		return false
	}

	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}

	var acceptedErr *github.AcceptedError
	if errors.As(err, &acceptedErr) {
		return true
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		if respErr.Response != nil {
			code := respErr.Response.StatusCode
			if code == http.StatusTooManyRequests || (code >= 500 && code <= 599) {
				return true
			}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
