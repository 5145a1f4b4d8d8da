// Package issues assembles the cross-repository overview table: open issue
// and pull request counts from the GitHub search API, decorated with coverage
// from Codecov.
package issues

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/kitsuyui/mure/internal/codecov"
	gh "github.com/kitsuyui/mure/internal/github"
)

// CoverageSource resolves coverage for a set of repositories.
// *codecov.Client implements it.
type CoverageSource interface {
	RepositoryCoverage(ctx context.Context, owner string, repos []codecov.RepoBranch) ([]codecov.Coverage, error)
}

// Summary is one row of the overview: a repository's GitHub counters plus its
// coverage, when Codecov tracks it.
type Summary struct {
	GitHub   gh.RepoSummary
	Coverage *codecov.Coverage
}

// DefaultBranch returns the branch to display, falling back to main when the
// repository reports none.
func (s Summary) DefaultBranch() string {
	if s.GitHub.DefaultBranch != "" {
		return s.GitHub.DefaultBranch
	}
	return "main"
}

// CoverageText renders the coverage cell. Repositories unknown to Codecov or
// without recorded coverage show N/A.
func (s Summary) CoverageText() string {
	if s.Coverage == nil || s.Coverage.Coverage == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *s.Coverage.Coverage)
}

// Reporter builds overview summaries from the search and coverage
// collaborators.
type Reporter struct {
	search   gh.Client
	coverage CoverageSource
	log      *slog.Logger
}

// NewReporter wires a Reporter. The logger may be nil.
func NewReporter(search gh.Client, coverage CoverageSource, log *slog.Logger) *Reporter {
	return &Reporter{
		search:   search,
		coverage: coverage,
		log:      log,
	}
}

// Summaries runs every query against the search API, concatenates the
// results, and joins them with coverage by repository name.
func (r *Reporter) Summaries(ctx context.Context, username string, queries []string) ([]Summary, error) {
	var repos []gh.RepoSummary
	for _, query := range queries {
		found, err := r.search.SearchRepositories(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("search repositories %q: %w", query, err)
		}
		if r.log != nil {
			r.log.Debug("searched repositories", "query", query, "count", len(found))
		}
		repos = append(repos, found...)
	}

	branches := make([]codecov.RepoBranch, 0, len(repos))
	for _, repo := range repos {
		branches = append(branches, codecov.RepoBranch{Name: repo.Name, Branch: repo.DefaultBranch})
	}
	coverage, err := r.coverage.RepositoryCoverage(ctx, username, branches)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]codecov.Coverage, len(coverage))
	for _, c := range coverage {
		byName[c.Name] = c
	}

	summaries := make([]Summary, 0, len(repos))
	for _, repo := range repos {
		summary := Summary{GitHub: repo}
		if c, ok := byName[repo.Name]; ok {
			summary.Coverage = &c
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Render writes the overview as a tab-separated table.
func Render(w io.Writer, summaries []Summary) {
	fmt.Fprintln(w, "Issues\tPRs\tBranch\tCoverage\tURL")
	for _, s := range summaries {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
			s.GitHub.OpenIssues,
			s.GitHub.OpenPRs,
			s.DefaultBranch(),
			s.CoverageText(),
			s.GitHub.URL,
		)
	}
}
