// Package cli builds the mure command tree. Each subcommand constructs its
// collaborators from the loaded configuration and delegates to the internal
// packages; errors return through RunE and exit the process non-zero.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// NewRoot returns the root command with every subcommand attached. The
// logger may be nil.
func NewRoot(log *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "mure",
		Short:         "A command line tool for managing multiple repositories",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newInitCmd())
	root.AddCommand(newCloneCmd(log))
	root.AddCommand(newRefreshCmd(log))
	root.AddCommand(newListCmd())
	root.AddCommand(newPathCmd())
	root.AddCommand(newEditCmd())
	root.AddCommand(newIssuesCmd(log))
	return root
}
