package notes

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/quellen/nt/internal/config"
	"github.com/quellen/nt/internal/preview"
	tui "github.com/quellen/nt/internal/tui/notes"
)

func launchCompanion(cfg *config.Config) (int, error) {
	return preview.LaunchCompanion(
		preview.DefaultCompanion,
		cfg.SocketPath,
		cfg.APIScheme,
		cfg.APIHost,
		cfg.APIPort,
		false,
	)
}

func NewCmdNotes(cfg *config.Config) *cobra.Command {
	var withPreview bool

	cmd := &cobra.Command{
		Use:     "notes",
		Aliases: []string{"n"},
		Short:   "Browse the note tree.",
		Long: heredoc.Doc(`
			Open the tree navigator. Fold with z/Z, rearrange with H/L and
			mark-paste (x/p), edit with e, and push notes to the GUI preview
			with g.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if withPreview {
				if _, err := launchCompanion(cfg); err != nil {
					cmd.Printf("could not start GUI preview: %v\n", err)
				}
			}
			return tui.Run(cfg)
		},
	}

	cmd.Flags().
		BoolVar(&withPreview, "with-preview", false, "Launch the GUI preview alongside the navigator.")

	return cmd
}
