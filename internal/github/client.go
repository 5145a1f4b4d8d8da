package gh

import (
	"context"
	"errors"
)

// RepoSummary is one repository row in the issues overview: open work counts
// plus enough identity to join against external coverage data.
type RepoSummary struct {
	Name          string
	OpenIssues    int
	OpenPRs       int
	DefaultBranch string
	URL           string
}

// Client exposes the GitHub operations required by the issues overview.
type Client interface {
	// SearchRepositories returns a summary row for every repository the
	// search query matches, following pagination to the end.
	SearchRepositories(ctx context.Context, query string) ([]RepoSummary, error)
}

// Factory builds concrete GitHub clients (e.g., REST-backed).
type Factory interface {
	New(ctx context.Context, token string) (Client, error)
}

// retryableError marks an error that may succeed if the operation is retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	if e == nil || e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// IsRetryable reports whether the supplied error resulted from a retryable
// GitHub API failure (for example, a transient network problem or a
// rate-limited request).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var target *retryableError
	return errors.As(err, &target)
}
