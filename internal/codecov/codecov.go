// Package codecov is a minimal client for the Codecov v2 REST API, used to
// decorate the issues overview with coverage numbers.
package codecov

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"
)

const defaultBaseURL = "https://api.codecov.io/api/v2"

// ErrTokenNotSet is returned when no API token is available in the
// environment.
var ErrTokenNotSet = errors.New("CODECOV_TOKEN is not set")

// TokenFromEnv returns the Codecov API token from the CODECOV_TOKEN
// environment variable.
func TokenFromEnv() (string, error) {
	if token := os.Getenv("CODECOV_TOKEN"); token != "" {
		return token, nil
	}
	return "", ErrTokenNotSet
}

// Client talks to the Codecov API for one authenticated user.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New returns a Client authenticated with token.
func New(token string) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		Token:   token,
		// Matches the upper bound Codecov and GitHub document for API calls.
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Repo is one repository known to Codecov.
type Repo struct {
	Name string `json:"name"`
}

type reposPage struct {
	Next    string `json:"next"`
	Results []Repo `json:"results"`
}

// BranchDetail carries the latest coverage recorded for one branch.
type BranchDetail struct {
	Name       string `json:"name"`
	HeadCommit struct {
		Totals struct {
			Coverage *float64 `json:"coverage"`
		} `json:"totals"`
	} `json:"head_commit"`
}

// RepoBranch names a repository and the branch whose coverage should be
// looked up.
type RepoBranch struct {
	Name   string
	Branch string
}

// Coverage is the looked-up result for one repository. A nil percentage
// means Codecov knows the repository but has no coverage on record.
type Coverage struct {
	Name     string
	Coverage *float64
}

// ListRepos returns every repository Codecov tracks for owner, following
// pagination links to the end.
func (c *Client) ListRepos(ctx context.Context, service, owner string) ([]Repo, error) {
	next := fmt.Sprintf("%s/%s/%s/repos/", c.baseURL(), url.PathEscape(service), url.PathEscape(owner))

	var repos []Repo
	for next != "" {
		var page reposPage
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("list codecov repos for %s: %w", owner, err)
		}
		repos = append(repos, page.Results...)
		next = page.Next
	}
	return repos, nil
}

// GetBranchDetail returns the coverage detail for one branch of one
// repository.
func (c *Client) GetBranchDetail(ctx context.Context, service, owner, repo, branch string) (BranchDetail, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/repos/%s/branches/%s/",
		c.baseURL(), url.PathEscape(service), url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(branch))

	var detail BranchDetail
	if err := c.getJSON(ctx, endpoint, &detail); err != nil {
		return BranchDetail{}, fmt.Errorf("get codecov branch %s/%s@%s: %w", owner, repo, branch, err)
	}
	return detail, nil
}

// RepositoryCoverage resolves coverage for each requested repository and
// branch. Repositories Codecov does not track are left out; a failed branch
// lookup is logged and skipped rather than failing the whole overview.
func (c *Client) RepositoryCoverage(ctx context.Context, owner string, repos []RepoBranch) ([]Coverage, error) {
	known, err := c.ListRepos(ctx, "github", owner)
	if err != nil {
		return nil, err
	}

	tracked := make(map[string]struct{}, len(known))
	for _, repo := range known {
		tracked[repo.Name] = struct{}{}
	}

	var coverage []Coverage
	for _, repo := range repos {
		if _, ok := tracked[repo.Name]; !ok {
			continue
		}
		detail, err := c.GetBranchDetail(ctx, "github", owner, repo.Name, repo.Branch)
		if err != nil {
			if c.Logger != nil {
				c.Logger.Warn("failed to get coverage", "repo", repo.Name, "branch", repo.Branch, "error", err)
			}
			continue
		}
		coverage = append(coverage, Coverage{
			Name:     repo.Name,
			Coverage: detail.HeadCommit.Totals.Coverage,
		})
	}
	return coverage, nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURL
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "bearer "+c.Token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("codecov api status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
