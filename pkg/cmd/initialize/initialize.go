package initialize

import (
	"fmt"
	"strconv"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/erikgeiser/promptkit/selection"
	"github.com/erikgeiser/promptkit/textinput"
	"github.com/spf13/cobra"

	"github.com/quellen/nt/internal/config"
	"github.com/quellen/nt/internal/syncer"
)

func NewCmdInit(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Aliases: []string{"initialize"},
		Short:   "Walk through the initial configuration.",
		Long: heredoc.Doc(`
			Prompt for the backend address, editor, and sync mode, then
			write the answers to the config file. Existing values are
			offered as defaults, so init can also be re-run to adjust a
			working setup.
		`),
		Example: "nt init",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}

	return cmd
}

func run(cfg *config.Config) error {
	host := textinput.New("Backend host:")
	host.InitialValue = cfg.APIHost
	host.Placeholder = "localhost"
	value, err := host.RunPrompt()
	if err != nil {
		return err
	}
	cfg.APIHost = value

	port := textinput.New("Backend port:")
	port.InitialValue = strconv.Itoa(cfg.APIPort)
	port.Validate = func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("not a port number: %q", s)
		}
		return nil
	}
	value, err = port.RunPrompt()
	if err != nil {
		return err
	}
	cfg.APIPort, _ = strconv.Atoi(value)

	editor := textinput.New("Editor command:")
	editor.InitialValue = cfg.Editor
	editor.Placeholder = "vi"
	value, err = editor.RunPrompt()
	if err != nil {
		return err
	}
	cfg.Editor = value

	mode := selection.New(
		"Preview sync mode:",
		[]string{
			syncer.Manual.String(),
			syncer.Auto.String(),
			syncer.Follow.String(),
		},
	)
	mode.Filter = nil
	choice, err := mode.RunPrompt()
	if err != nil {
		return err
	}
	cfg.SyncMode = choice

	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Println("Initialization complete!")
	return nil
}
