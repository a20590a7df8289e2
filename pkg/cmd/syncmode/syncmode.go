package syncmode

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/quellen/nt/internal/config"
)

func NewCmdSyncMode(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-mode [manual|auto|follow]",
		Short: "Set the default preview sync mode.",
		Long: heredoc.Doc(`
			Choose how eagerly the navigator pushes notes to the GUI preview:

			manual  push only on the preview keystroke (g)
			auto    also push on every cursor move
			follow  also re-push when the shown note changes underneath
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.ChangeSyncMode(args[0])
		},
	}
}
