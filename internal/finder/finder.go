// Package finder is a fuzzy picker over the whole note set, with a
// rendered markdown preview alongside the match list.
package finder

import (
	"context"
	"fmt"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/quellen/nt/internal/api"
	"github.com/quellen/nt/internal/parser"
	"github.com/quellen/nt/utils"
)

type Finder struct {
	gateway *api.Client
	Header  string
	notes   []api.Note
}

func NewFinder(gateway *api.Client, header string) *Finder {
	return &Finder{gateway: gateway, Header: header}
}

// Run fetches the flat note list and opens the picker. The selected
// note is returned; a cancelled pick surfaces fuzzyfinder.ErrAbort.
func (f *Finder) Run(ctx context.Context) (*api.Note, error) {
	return f.RunWithQuery(ctx, "")
}

func (f *Finder) RunWithQuery(ctx context.Context, query string) (*api.Note, error) {
	notes, err := f.gateway.FetchNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	f.notes = notes

	idx, err := f.fuzzySelectNote(query)
	if err != nil {
		return nil, err
	}
	return &f.notes[idx], nil
}

func (f *Finder) fuzzySelectNote(query string) (int, error) {
	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(f.renderMarkdownPreview),
	}

	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}

	if f.Header != "" {
		options = append(options, fuzzyfinder.WithHeader(f.Header))
	}

	labels := make([]string, len(f.notes))
	for i, note := range f.notes {
		labels[i] = formatEntry(note)
	}

	return fuzzyfinder.Find(f.notes, func(i int) string {
		return labels[i]
	}, options...)
}

// formatEntry decorates a title with its checkbox progress so entries
// with open tasks stand out in the list.
func formatEntry(note api.Note) string {
	title := note.Title
	if title == "" {
		title = note.ID
	}

	stats := parser.Stats(note.Content)
	if stats.Total == 0 {
		return title
	}
	return fmt.Sprintf("%s [%d/%d tasks]", title, stats.Checked, stats.Total)
}

func (f *Finder) renderMarkdownPreview(i, w, h int) string {
	if i == -1 {
		return ""
	}
	return utils.RenderMarkdown(f.notes[i].Content, w)
}
