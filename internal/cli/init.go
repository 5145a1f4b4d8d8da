package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kitsuyui/mure/internal/config"
)

func newInitCmd() *cobra.Command {
	var shell bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if shell {
				cfg, err := config.LoadOrInit()
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), ShellShims(cfg))
				return nil
			}

			if _, err := config.Init(); err != nil {
				return err
			}
			path, err := config.Path()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&shell, "shell", false, "print the shell helper functions instead")
	return cmd
}
