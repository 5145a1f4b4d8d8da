package cli

import (
	"github.com/spf13/cobra"

	"github.com/kitsuyui/mure/internal/config"
	"github.com/kitsuyui/mure/internal/edit"
	"github.com/kitsuyui/mure/internal/store"
)

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <name>",
		Short: "Open a repository in your editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrInit()
			if err != nil {
				return err
			}

			dir := store.New(cfg.BasePath()).WorkPath(args[0])
			editor, err := edit.Resolve(cmd.Context(), cfg.Core.Editor, dir, nil)
			if err != nil {
				return err
			}
			return edit.Open(cmd.Context(), editor, dir)
		},
	}
}
