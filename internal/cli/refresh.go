package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kitsuyui/mure/internal/config"
	gh "github.com/kitsuyui/mure/internal/github"
	"github.com/kitsuyui/mure/internal/refresh"
	"github.com/kitsuyui/mure/internal/store"
)

func newRefreshCmd(log *slog.Logger) *cobra.Command {
	var all, quiet, verbose bool

	cmd := &cobra.Command{
		Use:   "refresh [path]",
		Short: "Synchronize repositories with their upstreams",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrInit()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			verbosity := refresh.VerbosityFromFlags(quiet, verbose)
			refresher := refresh.NewRefresher(refresh.GitOpener{}, gh.NewResolver(ctx, nil), log)

			if all {
				orch := refresh.NewOrchestrator(store.New(cfg.BasePath()), refresher, cmd.OutOrStdout(), log)
				return orch.RefreshAll(ctx, verbosity)
			}

			path := ""
			if len(args) == 1 {
				path = args[0]
			} else if path, err = os.Getwd(); err != nil {
				return fmt.Errorf("get current dir: %w", err)
			}

			outcome, err := refresher.Refresh(ctx, path, verbosity)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch outcome.Skip {
			case refresh.SkipNotARepository:
				fmt.Fprintf(out, "%s is not a git repository\n", path)
			case refresh.SkipEmptyRepository:
				fmt.Fprintf(out, "%s has no commits\n", path)
			case refresh.SkipNoRemote:
				fmt.Fprintf(out, "%s has no remote\n", path)
			default:
				fmt.Fprintln(out, outcome.Message())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "refresh every managed repository")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress pull status lines")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "record raw git output in the transcript")
	return cmd
}
