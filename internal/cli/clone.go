package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kitsuyui/mure/internal/config"
	"github.com/kitsuyui/mure/internal/git"
	"github.com/kitsuyui/mure/internal/refresh"
	"github.com/kitsuyui/mure/internal/store"
)

func newCloneCmd(log *slog.Logger) *cobra.Command {
	var quiet, verbose bool

	cmd := &cobra.Command{
		Use:   "clone <url>",
		Short: "Clone a repository into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrInit()
			if err != nil {
				return err
			}

			st := store.New(cfg.BasePath())
			if log != nil {
				log.Debug("cloning", "url", args[0], "store", st.Root())
			}
			result, err := st.Clone(cmd.Context(), nil, args[0])
			// The clone output is printed even when a later step such as the
			// symlink fails; git already ran to completion by then.
			if err == nil || result.Raw.Stderr != "" || result.Raw.Stdout != "" {
				printCloneOutput(cmd.OutOrStdout(), refresh.VerbosityFromFlags(quiet, verbose), result)
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print nothing")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the raw git output")
	return cmd
}

func printCloneOutput(w io.Writer, verbosity refresh.Verbosity, result git.Interpreted[struct{}]) {
	switch verbosity {
	case refresh.Quiet:
	case refresh.Verbose:
		fmt.Fprintln(w, result.Raw.Stderr)
		fmt.Fprintln(w, result.Raw.Stdout)
	default:
		fmt.Fprintln(w, result.Raw.Stderr)
	}
}
