package notes

import (
	"errors"

	"github.com/sahilm/fuzzy"

	"github.com/quellen/nt/internal/preview"
)

func fuzzyFind(pattern string, titles []string) []int {
	matches := fuzzy.Find(pattern, titles)
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Index)
	}
	return out
}

func previewStatus(err error) string {
	if errors.Is(err, preview.ErrPreviewUnavailable) {
		return "preview companion unavailable; continuing without it"
	}
	if errors.Is(err, preview.ErrAckTimeout) {
		return "preview did not acknowledge; it may be busy"
	}
	return err.Error()
}
