package root

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quellen/nt/internal/config"
	"github.com/quellen/nt/internal/constants"
	"github.com/quellen/nt/pkg/cmd/editor"
	"github.com/quellen/nt/pkg/cmd/find"
	"github.com/quellen/nt/pkg/cmd/initialize"
	"github.com/quellen/nt/pkg/cmd/notes"
	"github.com/quellen/nt/pkg/cmd/preview"
	"github.com/quellen/nt/pkg/cmd/syncmode"
)

func NewCmdRoot(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nt",
		Version: constants.Version,
		Short:   "Navigate and edit your note tree from the terminal.",
		Long: `A tree navigator for your note backend: fold, rearrange, and edit
  notes without leaving the terminal, with an optional GUI markdown
  preview alongside.

  nt                 launch the navigator
  nt preview         launch the GUI preview companion
  nt find            fuzzy-pick a note
  nt init            write the initial configuration
  `,
		RunE: notes.NewCmdNotes(cfg).RunE,
	}

	cmd.PersistentFlags().
		StringVar(&cfg.APIScheme, "api-scheme", cfg.APIScheme, "API URL scheme (http or https).")
	cmd.PersistentFlags().
		StringVar(&cfg.APIHost, "api-host", cfg.APIHost, "API hostname to connect to.")
	cmd.PersistentFlags().
		IntVar(&cfg.APIPort, "api-port", cfg.APIPort, "API port number to connect to.")
	cmd.PersistentFlags().
		StringVar(&cfg.SocketPath, "socket-path", cfg.SocketPath, "File system path for the GUI preview socket.")
	viper.BindPFlag("api_scheme", cmd.PersistentFlags().Lookup("api-scheme"))
	viper.BindPFlag("api_host", cmd.PersistentFlags().Lookup("api-host"))
	viper.BindPFlag("api_port", cmd.PersistentFlags().Lookup("api-port"))
	viper.BindPFlag("socket_path", cmd.PersistentFlags().Lookup("socket-path"))

	cmd.AddCommand(
		notes.NewCmdNotes(cfg),
		preview.NewCmdPreview(cfg),
		find.NewCmdFind(cfg),
		initialize.NewCmdInit(cfg),
		syncmode.NewCmdSyncMode(cfg),
		editor.NewCmdEditor(cfg),
	)

	return cmd
}
