package notes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quellen/nt/internal/parser"
	"github.com/quellen/nt/internal/tree"
	"github.com/quellen/nt/utils"
)

// chrome rows: tab bar, status line, help line, plus app padding.
const chromeHeight = 6

func (m *Model) View() string {
	if m.width == 0 {
		return "loading"
	}

	tab := m.activeTab()
	paneHeight := m.height - chromeHeight
	if paneHeight < 3 {
		paneHeight = 3
	}
	treeWidth := m.width / 2

	treePane := treeStyle.Width(treeWidth).Render(m.renderTree(tab, treeWidth, paneHeight))
	previewPane := previewStyle.Render(
		lipgloss.NewStyle().
			Height(paneHeight).
			MaxHeight(paneHeight).
			MaxWidth(m.width - treeWidth - 4).
			Render(m.renderPreview(tab, m.width-treeWidth-6, paneHeight)),
	)

	var b strings.Builder
	b.WriteString(m.renderTabBar())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, treePane, previewPane))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(tab))

	return appStyle.Render(b.String())
}

func (m *Model) renderTabBar() string {
	parts := make([]string, 0, len(m.tabs))
	for i := range m.tabs {
		label := fmt.Sprintf(" %d:notes ", i+1)
		if i == m.active {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabBarStyle.Render(label))
		}
	}
	return strings.Join(parts, "")
}

func (m *Model) renderTree(tab *tabState, width, height int) string {
	rows := m.rowsFor(tab)
	if len(rows) == 0 {
		return tabBarStyle.Render("no notes")
	}

	cursorAt := 0
	for i, row := range rows {
		if row.Node.ID == tab.tree.CursorID() {
			cursorAt = i
			break
		}
	}

	start, end := windowAround(cursorAt, len(rows), height)
	lines := make([]string, 0, end-start)
	for _, row := range rows[start:end] {
		lines = append(lines, m.renderRow(tab, row, width))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(tab *tabState, row tree.Row, width int) string {
	n := row.Node

	marker := "•"
	if len(n.Children) > 0 || !n.ChildrenLoaded {
		if n.Folded {
			marker = "▸"
		} else {
			marker = "▾"
		}
	}

	line := strings.Repeat("  ", row.Depth) + marker + " " + n.Title
	if tab.marks.IsMarked(n.ID) {
		line = markedStyle.Render("✱ ") + line
	}
	line = utils.Truncate(line, width-2)

	if n.ID == tab.tree.CursorID() {
		return cursorLineStyle.Render(line)
	}
	if n.Folded && len(n.Children) > 0 {
		return line + foldedHintStyle.Render(fmt.Sprintf(" (%d)", len(n.Children)))
	}
	return line
}

// rowsFor picks the projection: filtered, flat, or the fold-respecting
// tree view.
func (m *Model) rowsFor(tab *tabState) []tree.Row {
	if tab.matches != nil {
		return tab.tree.FilterRows(tab.matches)
	}
	if tab.flatView {
		return flatRows(tab.tree)
	}
	return tab.tree.VisibleRows()
}

// flatRows lists every known note at depth zero, in tree order.
func flatRows(t *tree.Tree) []tree.Row {
	var rows []tree.Row
	var walk func(id tree.NodeID)
	walk = func(id tree.NodeID) {
		n := t.Node(id)
		if n == nil {
			return
		}
		rows = append(rows, tree.Row{Node: n, Depth: 0})
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, root := range t.Roots() {
		walk(root)
	}
	return rows
}

func (m *Model) renderPreview(tab *tabState, width, height int) string {
	n := tab.tree.Cursor()
	if n == nil {
		return ""
	}

	header := titleStyle.Render(n.Title)
	if n.ContentLoaded {
		if stats := parser.Stats(n.Content); stats.Total > 0 {
			header += statusBannerStyle.Render(fmt.Sprintf("  %d/%d tasks", stats.Checked, stats.Total))
		}
		if links := parser.ParseWikilinks(n.Content); len(links) > 0 {
			header += statusBannerStyle.Render(fmt.Sprintf("  %d links", len(links)))
		}
	}

	var body string
	switch {
	case !n.ContentLoaded:
		body = tabBarStyle.Render("loading…")
	default:
		rendered, hit := m.renders.Get(n.ID, width)
		if !hit {
			rendered = utils.RenderMarkdown(n.Content, width)
			m.renders.Put(n.ID, width, rendered)
		}
		body = rendered
	}

	return header + "\n" + body
}

func (m *Model) renderFooter(tab *tabState) string {
	if m.inputMode != inputNone {
		return inputStyle.Width(m.width - 6).Render(m.input.View())
	}

	left := m.status
	if left == "" {
		left = statusStyle(fmt.Sprintf("sync: %s", tab.sync.Mode()))
	}
	if tab.marks.MarkCount() > 0 {
		left += statusStyle(fmt.Sprintf("  marks: %d", tab.marks.MarkCount()))
	}
	if tab.filterQuery != "" {
		left += statusStyle("  filter: " + tab.filterQuery)
	}

	parts := make([]string, 0, len(m.keys.shortHelp()))
	for _, b := range m.keys.shortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	help := helpStyle.Render(strings.Join(parts, " · "))
	return left + "\n" + help
}

// windowAround clips a row range of the given height around the cursor.
func windowAround(cursor, total, height int) (start, end int) {
	if total <= height {
		return 0, total
	}
	start = cursor - height/2
	if start < 0 {
		start = 0
	}
	end = start + height
	if end > total {
		end = total
		start = end - height
	}
	return start, end
}
