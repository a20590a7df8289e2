package find

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/quellen/nt/internal/api"
	"github.com/quellen/nt/internal/config"
	"github.com/quellen/nt/internal/finder"
	"github.com/quellen/nt/internal/tree"
)

func NewCmdFind(cfg *config.Config) *cobra.Command {
	var edit bool

	cmd := &cobra.Command{
		Use:     "find [query]",
		Aliases: []string{"f"},
		Short:   "Fuzzy-pick a note with a markdown preview.",
		Long: heredoc.Doc(`
			Search every note by title with a live rendered preview. Prints
			the selected note id, or opens it in the editor with --edit.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}

			f := finder.NewFinder(api.NewClient(cfg.BaseURL()), "Notes")
			note, err := f.RunWithQuery(context.Background(), query)
			if err != nil {
				if errors.Is(err, fuzzyfinder.ErrAbort) {
					return nil
				}
				return err
			}

			if !edit {
				cmd.Println(note.ID)
				return nil
			}
			return editNote(cfg, note)
		},
	}

	cmd.Flags().BoolVarP(&edit, "edit", "e", false, "Open the selected note in the editor.")

	return cmd
}

// editNote round-trips the note body through the configured editor and
// saves it back.
func editNote(cfg *config.Config, note *api.Note) error {
	tmp, err := os.CreateTemp("", "nt-find-*.md")
	if err != nil {
		return err
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(note.Content); err != nil {
		tmp.Close()
		return err
	}
	tmp.Close()

	editor := exec.Command(cfg.Editor, path)
	editor.Stdin = os.Stdin
	editor.Stdout = os.Stdout
	editor.Stderr = os.Stderr
	if err := editor.Run(); err != nil {
		return err
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	content := string(edited)
	if content == note.Content {
		return nil
	}

	client := api.NewClient(cfg.BaseURL())
	_, err = client.UpdateNote(context.Background(), tree.NodeID(note.ID), nil, &content)
	return err
}
