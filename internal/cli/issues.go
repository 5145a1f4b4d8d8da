package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kitsuyui/mure/internal/codecov"
	"github.com/kitsuyui/mure/internal/config"
	gh "github.com/kitsuyui/mure/internal/github"
	"github.com/kitsuyui/mure/internal/issues"
)

func newIssuesCmd(log *slog.Logger) *cobra.Command {
	var queries []string

	cmd := &cobra.Command{
		Use:   "issues",
		Short: "Show an issue and coverage overview of your repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadOrInit()
			if err != nil {
				return err
			}

			if len(queries) == 0 {
				if queries, err = cfg.GitHub.Queries(); err != nil {
					return err
				}
			}

			token, err := gh.TokenFromEnv()
			if err != nil {
				return err
			}
			client, err := gh.NewRESTFactory().New(cmd.Context(), token)
			if err != nil {
				return err
			}

			covToken, err := codecov.TokenFromEnv()
			if err != nil {
				return err
			}
			coverage := codecov.New(covToken)
			coverage.Logger = log

			reporter := issues.NewReporter(client, coverage, log)
			summaries, err := reporter.Summaries(cmd.Context(), cfg.GitHub.Username, queries)
			if err != nil {
				return err
			}
			issues.Render(cmd.OutOrStdout(), summaries)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&queries, "query", nil, "search query, repeatable; overrides the configured queries")
	return cmd
}
