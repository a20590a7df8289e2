package utils

import (
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

const (
	defaultWrapWidth = 100
	// Glamour pads rendered output; leave room so lines fit the pane.
	previewHorizontalSpace = 4
)

// RenderMarkdown styles note content for the preview pane, wrapped to
// the pane width. Render failures fall back to the raw content so the
// pane never goes blank.
func RenderMarkdown(content string, width int) string {
	wrap := width - previewHorizontalSpace
	if wrap <= 0 {
		wrap = defaultWrapWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(wrap),
		glamour.WithColorProfile(termenv.ANSI256),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// TimestampedTitle names a freshly created note so it sorts naturally
// and never collides.
func TimestampedTitle(now time.Time) string {
	return "New Note " + now.Format("2006-01-02 15:04:05")
}

// Truncate clips s to max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

// FirstLine returns the first non-empty line of content, for compact
// list rendering.
func FirstLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// AppendIfNotExists grows slice by value unless it is already present.
func AppendIfNotExists(slice []string, value string) []string {
	for _, v := range slice {
		if v == value {
			return slice
		}
	}
	return append(slice, value)
}
