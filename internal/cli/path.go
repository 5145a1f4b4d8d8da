package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kitsuyui/mure/internal/config"
	"github.com/kitsuyui/mure/internal/store"
)

func newPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <name>",
		Short: "Print the workspace path of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrInit()
			if err != nil {
				return err
			}

			resolved, err := store.New(cfg.BasePath()).ResolveWorkPath(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resolved)
			return nil
		},
	}
}
