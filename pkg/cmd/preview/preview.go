package preview

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/quellen/nt/internal/config"
	"github.com/quellen/nt/internal/preview"
)

func NewCmdPreview(cfg *config.Config) *cobra.Command {
	var companion string
	var dark bool

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Launch the GUI markdown preview companion.",
		Long: heredoc.Doc(`
			Start the GUI preview process in the background. The navigator
			connects to it over the preview socket and pushes notes on demand
			(g) or automatically, depending on the sync mode.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := preview.LaunchCompanion(
				companion,
				cfg.SocketPath,
				cfg.APIScheme,
				cfg.APIHost,
				cfg.APIPort,
				dark,
			)
			if err != nil {
				return err
			}
			cmd.Printf("Started GUI preview with PID %d\n", pid)
			return nil
		},
	}

	cmd.Flags().
		StringVar(&companion, "companion", preview.DefaultCompanion, "GUI preview binary to launch.")
	cmd.Flags().
		BoolVar(&dark, "dark", false, "Start the GUI preview in dark mode.")

	return cmd
}
