package issues_test

import (
	"bytes"
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kitsuyui/mure/internal/codecov"
	gh "github.com/kitsuyui/mure/internal/github"
	"github.com/kitsuyui/mure/internal/issues"
)

type fakeSearch struct {
	results map[string][]gh.RepoSummary
	err     error
	queries []string
}

func (f *fakeSearch) SearchRepositories(_ context.Context, query string) ([]gh.RepoSummary, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

type fakeCoverage struct {
	coverage []codecov.Coverage
	err      error
	requests []codecov.RepoBranch
	owner    string
}

func (f *fakeCoverage) RepositoryCoverage(_ context.Context, owner string, repos []codecov.RepoBranch) ([]codecov.Coverage, error) {
	f.owner = owner
	f.requests = append(f.requests, repos...)
	if f.err != nil {
		return nil, f.err
	}
	return f.coverage, nil
}

func percent(v float64) *float64 { return &v }

var _ = Describe("Reporter", func() {
	var (
		ctx      context.Context
		search   *fakeSearch
		coverage *fakeCoverage
	)

	BeforeEach(func() {
		ctx = context.Background()
		search = &fakeSearch{results: map[string][]gh.RepoSummary{}}
		coverage = &fakeCoverage{}
	})

	It("concatenates results across queries and joins coverage by name", func() {
		search.results["user:kitsuyui"] = []gh.RepoSummary{
			{Name: "mure", OpenIssues: 3, OpenPRs: 2, DefaultBranch: "main", URL: "https://github.com/kitsuyui/mure"},
		}
		search.results["org:example"] = []gh.RepoSummary{
			{Name: "sqlp", OpenIssues: 0, OpenPRs: 0, DefaultBranch: "develop", URL: "https://github.com/example/sqlp"},
		}
		coverage.coverage = []codecov.Coverage{{Name: "mure", Coverage: percent(84.21)}}

		reporter := issues.NewReporter(search, coverage, nil)
		summaries, err := reporter.Summaries(ctx, "kitsuyui", []string{"user:kitsuyui", "org:example"})
		Expect(err).NotTo(HaveOccurred())

		Expect(search.queries).To(Equal([]string{"user:kitsuyui", "org:example"}))
		Expect(coverage.owner).To(Equal("kitsuyui"))
		Expect(coverage.requests).To(Equal([]codecov.RepoBranch{
			{Name: "mure", Branch: "main"},
			{Name: "sqlp", Branch: "develop"},
		}))

		Expect(summaries).To(HaveLen(2))
		Expect(summaries[0].GitHub.Name).To(Equal("mure"))
		Expect(summaries[0].Coverage).NotTo(BeNil())
		Expect(summaries[0].CoverageText()).To(Equal("84.21%"))
		Expect(summaries[1].Coverage).To(BeNil())
		Expect(summaries[1].CoverageText()).To(Equal("N/A"))
	})

	It("falls back to main for repositories without a default branch", func() {
		summary := issues.Summary{GitHub: gh.RepoSummary{Name: "bare"}}
		Expect(summary.DefaultBranch()).To(Equal("main"))
	})

	It("shows N/A when Codecov tracks the repository but has no coverage", func() {
		summary := issues.Summary{
			GitHub:   gh.RepoSummary{Name: "sqlp"},
			Coverage: &codecov.Coverage{Name: "sqlp"},
		}
		Expect(summary.CoverageText()).To(Equal("N/A"))
	})

	It("propagates search failures with the failing query", func() {
		search.err = errors.New("rate limited")

		reporter := issues.NewReporter(search, coverage, nil)
		_, err := reporter.Summaries(ctx, "kitsuyui", []string{"user:kitsuyui"})
		Expect(err).To(MatchError(ContainSubstring(`search repositories "user:kitsuyui"`)))
	})

	It("propagates coverage failures", func() {
		search.results["user:kitsuyui"] = []gh.RepoSummary{{Name: "mure"}}
		coverage.err = errors.New("CODECOV_TOKEN is not set")

		reporter := issues.NewReporter(search, coverage, nil)
		_, err := reporter.Summaries(ctx, "kitsuyui", []string{"user:kitsuyui"})
		Expect(err).To(MatchError(ContainSubstring("CODECOV_TOKEN")))
	})
})

var _ = Describe("Render", func() {
	It("writes the tab-separated overview table", func() {
		summaries := []issues.Summary{
			{
				GitHub: gh.RepoSummary{
					Name:          "mure",
					OpenIssues:    3,
					OpenPRs:       2,
					DefaultBranch: "main",
					URL:           "https://github.com/kitsuyui/mure",
				},
				Coverage: &codecov.Coverage{Name: "mure", Coverage: percent(84.21)},
			},
			{
				GitHub: gh.RepoSummary{
					Name: "sqlp",
					URL:  "https://github.com/kitsuyui/sqlp",
				},
			},
		}

		out := &bytes.Buffer{}
		issues.Render(out, summaries)

		Expect(out.String()).To(Equal(
			"Issues\tPRs\tBranch\tCoverage\tURL\n" +
				"3\t2\tmain\t84.21%\thttps://github.com/kitsuyui/mure\n" +
				"0\t0\tmain\tN/A\thttps://github.com/kitsuyui/sqlp\n"))
	})

	It("writes only the header for an empty overview", func() {
		out := &bytes.Buffer{}
		issues.Render(out, nil)
		Expect(out.String()).To(Equal("Issues\tPRs\tBranch\tCoverage\tURL\n"))
	})
})
