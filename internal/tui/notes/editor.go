package notes

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quellen/nt/internal/tree"
)

// startEdit opens the cursor note in the terminal editor. When the body
// is not loaded yet the edit is parked until the content fetch lands.
func (m *Model) startEdit(tab *tabState) tea.Cmd {
	n := tab.tree.Cursor()
	if n == nil {
		return nil
	}
	if strings.HasPrefix(string(n.ID), "pending/") {
		m.status = errorStyle("note is still being created")
		return nil
	}
	if !n.ContentLoaded {
		m.pendingEdit = n.ID
		return m.loadContentCmd(tab.id, n.ID)
	}
	return m.openEditor(tab, n.ID, n.Content)
}

// openEditor writes the note body to a scratch file and suspends the
// TUI while the editor runs on it.
func (m *Model) openEditor(tab *tabState, id tree.NodeID, content string) tea.Cmd {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("nt-edit-%s.md", sanitizeID(id)))
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		m.status = errorStyle("cannot write scratch file: " + err.Error())
		return nil
	}

	cmd := exec.Command(m.cfg.Editor, path)
	tabID := tab.id
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorClosedMsg{tabID: tabID, id: id, path: path, err: err}
	})
}

// startGUIEdit launches the GUI editor detached; the note round-trips
// through the backend when that editor saves, so nothing is awaited.
func (m *Model) startGUIEdit(tab *tabState) tea.Cmd {
	n := tab.tree.Cursor()
	if n == nil {
		return nil
	}
	if m.cfg.GUIEditor == "" {
		m.status = errorStyle("no gui_editor configured")
		return nil
	}
	if !n.ContentLoaded {
		m.pendingEdit = n.ID
		return m.loadContentCmd(tab.id, n.ID)
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("nt-edit-%s.md", sanitizeID(n.ID)))
	if err := os.WriteFile(path, []byte(n.Content), 0o600); err != nil {
		m.status = errorStyle("cannot write scratch file: " + err.Error())
		return nil
	}

	cmd := exec.Command(m.cfg.GUIEditor, path)
	if err := cmd.Start(); err != nil {
		m.status = errorStyle("gui editor: " + err.Error())
		return nil
	}
	m.status = statusStyle(fmt.Sprintf("opened %s in %s", n.Title, m.cfg.GUIEditor))
	return nil
}

// handleEditorClosed reads the scratch file back and saves the note if
// the body changed.
func (m *Model) handleEditorClosed(msg editorClosedMsg) (tea.Model, tea.Cmd) {
	defer os.Remove(msg.path)

	tab := m.tabByID(msg.tabID)
	if tab == nil {
		return m, nil
	}
	if msg.err != nil {
		m.status = errorStyle("editor: " + msg.err.Error())
		return m, nil
	}

	edited, err := os.ReadFile(msg.path)
	if err != nil {
		m.status = errorStyle("cannot read scratch file: " + err.Error())
		return m, nil
	}

	content := string(edited)
	if n := tab.tree.Node(msg.id); n != nil && n.ContentLoaded && n.Content == content {
		m.status = statusStyle("no changes")
		return m, nil
	}

	tab.tree.SetContent(msg.id, content)
	m.renders.Invalidate(msg.id)
	return m, m.saveNoteCmd(tab.id, msg.id, content)
}

// sanitizeID keeps scratch file names path-safe for arbitrary note ids.
func sanitizeID(id tree.NodeID) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, string(id))
}
