package finder

import (
	"testing"

	"github.com/quellen/nt/internal/api"
)

func TestFormatEntryPlainTitle(t *testing.T) {
	t.Parallel()

	got := formatEntry(api.Note{ID: "1", Title: "groceries", Content: "milk\neggs"})
	if got != "groceries" {
		t.Fatalf("entry: %q", got)
	}
}

func TestFormatEntryShowsTaskProgress(t *testing.T) {
	t.Parallel()

	got := formatEntry(api.Note{
		ID:      "1",
		Title:   "sprint",
		Content: "- [x] ship it\n- [ ] write docs\n",
	})
	if got != "sprint [1/2 tasks]" {
		t.Fatalf("entry: %q", got)
	}
}

func TestFormatEntryFallsBackToID(t *testing.T) {
	t.Parallel()

	got := formatEntry(api.Note{ID: "77"})
	if got != "77" {
		t.Fatalf("entry: %q", got)
	}
}
