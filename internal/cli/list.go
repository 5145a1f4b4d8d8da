package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kitsuyui/mure/internal/config"
	"github.com/kitsuyui/mure/internal/store"
)

func newListCmd() *cobra.Command {
	var full, path bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List managed repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadOrInit()
			if err != nil {
				return err
			}

			entries, err := store.New(cfg.BasePath()).List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No repositories found")
				return nil
			}
			for _, entry := range entries {
				if entry.Err != nil {
					fmt.Fprintln(out, entry.Err)
					continue
				}
				switch {
				case full && path:
					fmt.Fprintln(out, entry.RealPath)
				case full:
					fmt.Fprintln(out, entry.Info.NameWithOwner())
				case path:
					fmt.Fprintln(out, entry.LinkPath)
				default:
					fmt.Fprintln(out, entry.Info.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&full, "full", "f", false, "print owner/name instead of the bare name")
	cmd.Flags().BoolVarP(&path, "path", "p", false, "print paths instead of names")
	return cmd
}
