// Package parser extracts structure from note bodies: task checkboxes
// for the status line and wikilinks for link navigation.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type Task struct {
	Checked bool
	Content string
	Line    int
}

// TaskStats summarizes checkbox progress for one note.
type TaskStats struct {
	Checked int
	Total   int
}

// ParseTasks walks the markdown AST and collects checkbox list items.
// Lines are 1-based against the source.
func ParseTasks(source string) []Task {
	src := []byte(source)
	document := goldmark.DefaultParser().Parse(text.NewReader(src))

	var tasks []Task
	ast.Walk(
		document,
		func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}
			item, ok := n.(*ast.ListItem)
			if !ok {
				return ast.WalkContinue, nil
			}

			content := strings.TrimSpace(string(n.Text(src)))
			task, ok := parseCheckbox(content)
			if !ok {
				return ast.WalkContinue, nil
			}

			if lines := item.Lines(); lines != nil && lines.Len() > 0 {
				task.Line = 1 + bytes.Count(src[:lines.At(0).Start], []byte("\n"))
			} else if child := item.FirstChild(); child != nil {
				if clines := child.Lines(); clines != nil && clines.Len() > 0 {
					task.Line = 1 + bytes.Count(src[:clines.At(0).Start], []byte("\n"))
				}
			}
			tasks = append(tasks, task)
			return ast.WalkContinue, nil
		},
	)
	return tasks
}

func parseCheckbox(content string) (Task, bool) {
	var checked bool
	switch {
	case strings.HasPrefix(content, "[ ]"):
	case strings.HasPrefix(content, "[x]"), strings.HasPrefix(content, "[X]"):
		checked = true
	default:
		return Task{}, false
	}
	body := strings.TrimSpace(content[3:])
	if body == "" {
		return Task{}, false
	}
	return Task{Checked: checked, Content: body}, true
}

// Stats counts checkbox completion without materializing the task list.
func Stats(source string) TaskStats {
	var stats TaskStats
	for _, t := range ParseTasks(source) {
		stats.Total++
		if t.Checked {
			stats.Checked++
		}
	}
	return stats
}

var wikilinkPattern = regexp.MustCompile(`\[\[([^\[\]|]+)(?:\|[^\[\]]*)?\]\]`)

// ParseWikilinks returns the link targets in order of appearance, with
// duplicates removed. Alias syntax [[target|label]] yields the target.
func ParseWikilinks(source string) []string {
	matches := wikilinkPattern.FindAllStringSubmatch(source, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		target := strings.TrimSpace(m[1])
		if target == "" {
			continue
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		links = append(links, target)
	}
	return links
}

// Wikilink renders a title as a link the way yank-to-clipboard needs it.
func Wikilink(title string) string {
	return "[[" + title + "]]"
}
