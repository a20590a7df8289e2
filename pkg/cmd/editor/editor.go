package editor

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/quellen/nt/internal/config"
)

func NewCmdEditor(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "editor [command]",
		Short: "Set the terminal editor used for note editing.",
		Long: heredoc.Doc(`
			Set the command the navigator suspends into when editing a note
			(e). Defaults to $EDITOR.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.ChangeEditor(args[0])
		},
	}
}
