package notes

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quellen/nt/internal/api"
	"github.com/quellen/nt/internal/marks"
	"github.com/quellen/nt/internal/syncer"
	"github.com/quellen/nt/internal/tree"
	"github.com/quellen/nt/utils"
)

func (m *Model) handleDefaultUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tab := m.activeTab()

	switch {
	case key.Matches(msg, m.keys.quit):
		m.channel.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.cursorDown):
		tab.tree.CursorDown()
		return m, m.afterCursorMove(tab)

	case key.Matches(msg, m.keys.cursorUp):
		tab.tree.CursorUp()
		return m, m.afterCursorMove(tab)

	case key.Matches(msg, m.keys.expand):
		return m, m.expandCursor(tab)

	case key.Matches(msg, m.keys.collapse):
		if err := tab.tree.Collapse(tab.tree.CursorID()); err == nil {
			return m, m.afterCursorMove(tab)
		}
		return m, nil

	case key.Matches(msg, m.keys.foldCycle):
		level := tab.tree.CycleFold(1)
		m.status = statusStyle(foldStatus(level))
		return m, m.afterCursorMove(tab)

	case key.Matches(msg, m.keys.foldCycleBack):
		level := tab.tree.CycleFold(-1)
		m.status = statusStyle(foldStatus(level))
		return m, m.afterCursorMove(tab)

	case key.Matches(msg, m.keys.unfoldAll):
		tab.tree.UnfoldAll()
		return m, m.afterCursorMove(tab)

	case key.Matches(msg, m.keys.foldToFirst):
		tab.tree.FoldToLevel(1)
		return m, m.afterCursorMove(tab)

	case key.Matches(msg, m.keys.newTab):
		tab := m.openTab()
		return m, m.loadTreeCmd(tab.id)

	case key.Matches(msg, m.keys.closeTab):
		m.closeTab()
		return m, nil

	case key.Matches(msg, m.keys.nextTab):
		m.nextTab()
		return m, nil

	case key.Matches(msg, m.keys.prevTab):
		m.prevTab()
		return m, nil

	case key.Matches(msg, m.keys.editNote):
		return m, m.startEdit(tab)

	case key.Matches(msg, m.keys.guiEditNote):
		return m, m.startGUIEdit(tab)

	case key.Matches(msg, m.keys.filterNotes):
		m.inputMode = inputFilter
		m.input.Placeholder = "filter"
		m.input.SetValue(tab.filterQuery)
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.searchNotes):
		m.inputMode = inputSearch
		m.input.Placeholder = "search"
		m.input.SetValue(tab.searchQuery)
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.toggleFlatView):
		tab.flatView = !tab.flatView
		return m, nil

	case key.Matches(msg, m.keys.triggerPreview):
		return m, m.pushFor(tab, tab.sync.Trigger(tab.tree.CursorID()))

	case key.Matches(msg, m.keys.toggleSyncMode):
		mode := tab.sync.Toggle()
		m.status = statusStyle("sync mode: " + mode.String())
		return m, nil

	case key.Matches(msg, m.keys.markForMove):
		id := tab.tree.CursorID()
		if id == "" {
			return m, nil
		}
		if tab.marks.ToggleMoveMark(id) {
			m.status = statusStyle(fmt.Sprintf("marked %s (%d total)", cursorTitle(tab), tab.marks.MarkCount()))
		} else {
			m.status = statusStyle("unmarked " + cursorTitle(tab))
		}
		return m, nil

	case key.Matches(msg, m.keys.pasteAsChildren):
		return m, m.pasteMarks(tab)

	case key.Matches(msg, m.keys.clearMarks):
		count := tab.marks.MarkCount()
		tab.marks.ClearMarks()
		m.status = statusStyle(fmt.Sprintf("cleared %d marks", count))
		return m, nil

	case key.Matches(msg, m.keys.setJumpMark):
		id := tab.tree.CursorID()
		if id == "" {
			return m, nil
		}
		tab.marks.SetJumpMark(id)
		m.status = statusStyle("jump mark set on " + cursorTitle(tab))
		return m, nil

	case key.Matches(msg, m.keys.jumpToMark):
		id, err := tab.marks.JumpMark()
		if err != nil {
			m.status = errorStyle("no jump mark set")
			return m, nil
		}
		if err := tab.tree.SetCursor(id); err != nil {
			m.status = errorStyle("marked note no longer exists")
			return m, nil
		}
		return m, m.afterCursorMove(tab)

	case key.Matches(msg, m.keys.yankLink):
		if n := tab.tree.Cursor(); n != nil {
			return m, yankLinkCmd(n.Title)
		}
		return m, nil

	case key.Matches(msg, m.keys.showLinks):
		if id := tab.tree.CursorID(); id != "" {
			return m, m.loadLinksCmd(tab.id, id)
		}
		return m, nil

	case key.Matches(msg, m.keys.promote):
		return m, m.promoteCursor(tab)

	case key.Matches(msg, m.keys.demote):
		return m, m.demoteCursor(tab)

	case key.Matches(msg, m.keys.newNote):
		return m, m.createNote(tab)

	case key.Matches(msg, m.keys.deleteNote):
		return m, m.deleteCursor(tab)

	case key.Matches(msg, m.keys.refresh):
		m.status = statusStyle("refreshing")
		return m, m.loadTreeCmd(tab.id)
	}

	return m, nil
}

func (m *Model) handleInputUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tab := m.activeTab()

	switch {
	case key.Matches(msg, m.keys.cancelInput):
		m.inputMode = inputNone
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.submitInput):
		query := m.input.Value()
		mode := m.inputMode
		m.inputMode = inputNone
		m.input.Blur()

		if mode == inputSearch {
			tab.searchQuery = query
			if query == "" {
				tab.matches = nil
				return m, nil
			}
			return m, m.searchNotesCmd(tab.id, query)
		}

		tab.filterQuery = query
		if query == "" {
			tab.matches = nil
			return m, nil
		}
		tab.matches = m.fuzzyMatches(tab, query)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// afterCursorMove refreshes the inline preview and lets the sync
// controller decide whether the companion needs a push.
func (m *Model) afterCursorMove(tab *tabState) tea.Cmd {
	var cmds []tea.Cmd

	if n := tab.tree.Cursor(); n != nil && !n.ContentLoaded {
		cmds = append(cmds, m.loadContentCmd(tab.id, n.ID))
	}
	if cmd := m.pushFor(tab, tab.sync.CursorMoved(tab.tree.CursorID())); cmd != nil {
		cmds = append(cmds, cmd)
	}

	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// pushFor turns a sync controller decision into a preview push command.
// A request that no longer resolves to a node (empty tree, note deleted
// mid-flight) must still release its in-flight slot, or every later
// push would queue behind it forever.
func (m *Model) pushFor(tab *tabState, req *syncer.Request) tea.Cmd {
	for req != nil {
		if n := tab.tree.Node(req.NoteID); n != nil {
			return m.pushPreviewCmd(tab.id, n.ID, req.Seq, n.Content, n.ContentLoaded)
		}
		req = tab.sync.Done()
	}
	return nil
}

func (m *Model) expandCursor(tab *tabState) tea.Cmd {
	id := tab.tree.CursorID()
	needsFetch, err := tab.tree.Expand(id)
	if err != nil {
		return nil
	}
	if !needsFetch {
		return nil
	}
	token := tab.tree.NextToken(id)
	return m.loadChildrenCmd(tab.id, id, token)
}

func (m *Model) promoteCursor(tab *tabState) tea.Cmd {
	id := tab.tree.CursorID()
	snap := tab.tree.Snapshot()
	if err := tab.tree.Promote(id); err != nil {
		m.status = errorStyle("cannot promote a root note")
		return nil
	}
	tab.rollback = snap
	return m.reparentCmd(tab.id, []tree.NodeID{id}, tab.tree.Node(id).Parent)
}

func (m *Model) demoteCursor(tab *tabState) tea.Cmd {
	id := tab.tree.CursorID()
	snap := tab.tree.Snapshot()
	if err := tab.tree.Demote(id); err != nil {
		m.status = errorStyle("no preceding sibling to demote under")
		return nil
	}
	tab.rollback = snap
	return m.reparentCmd(tab.id, []tree.NodeID{id}, tab.tree.Node(id).Parent)
}

func (m *Model) pasteMarks(tab *tabState) tea.Cmd {
	ids := tab.marks.MoveMarks()
	if len(ids) == 0 {
		m.status = errorStyle("no notes marked for moving")
		return nil
	}

	dest := tab.tree.CursorID()
	snap := tab.tree.Snapshot()
	if err := tab.marks.PasteAsChildren(tab.tree, dest); err != nil {
		if errors.Is(err, tree.ErrCycleDetected) {
			m.status = errorStyle("cannot move a note into its own subtree")
		} else {
			m.status = errorStyle("paste failed: " + err.Error())
		}
		return nil
	}

	tab.rollback = snap
	ordered := make([]tree.NodeID, len(ids))
	copy(ordered, ids)
	return m.reparentCmd(tab.id, ordered, dest)
}

func (m *Model) createNote(tab *tabState) tea.Cmd {
	parent := tab.tree.CursorID()
	title := utils.TimestampedTitle(time.Now())

	snap := tab.tree.Snapshot()
	placeholder, err := tab.tree.CreateChild(parent, title)
	if err != nil {
		m.status = errorStyle("create failed: " + err.Error())
		return nil
	}
	tab.rollback = snap
	return m.createNoteCmd(tab.id, placeholder, parent, title)
}

func (m *Model) deleteCursor(tab *tabState) tea.Cmd {
	id := tab.tree.CursorID()
	if id == "" {
		return nil
	}
	title := cursorTitle(tab)

	snap := tab.tree.Snapshot()
	removed, err := tab.tree.DeleteSubtree(id)
	if err != nil {
		return nil
	}
	tab.droppedMarks, tab.droppedJump = marksOn(tab.marks, removed)
	tab.marks.Remove(removed...)
	for _, r := range removed {
		m.renders.Invalidate(r)
	}
	tab.rollback = snap
	m.status = statusStyle("deleted " + title)
	return m.deleteNoteCmd(tab.id, id)
}

// marksOn reports which of ids carry a move mark, and whether one of
// them is the jump mark, before a delete drops them.
func marksOn(store *marks.Store, ids []tree.NodeID) ([]tree.NodeID, tree.NodeID) {
	var moved []tree.NodeID
	var jump tree.NodeID
	j, jumpErr := store.JumpMark()
	for _, id := range ids {
		if store.IsMarked(id) {
			moved = append(moved, id)
		}
		if jumpErr == nil && id == j {
			jump = id
		}
	}
	return moved, jump
}

func (m *Model) handleTreeLoaded(msg treeLoadedMsg) (tea.Model, tea.Cmd) {
	tab := m.tabByID(msg.tabID)
	if tab == nil {
		return m, nil
	}
	if msg.err != nil {
		m.status = errorStyle(backendStatus(msg.err))
		return m, nil
	}

	tab.tree.Load(msg.notes)
	if !tab.loaded {
		tab.loaded = true
		tab.tree.FoldToLevel(1)
	}
	if tab.filterQuery != "" {
		tab.matches = m.fuzzyMatches(tab, tab.filterQuery)
	}
	return m, nil
}

func (m *Model) handleChildrenLoaded(msg childrenLoadedMsg) (tea.Model, tea.Cmd) {
	tab := m.tabByID(msg.tabID)
	if tab == nil {
		return m, nil
	}
	if msg.err != nil {
		m.status = errorStyle(backendStatus(msg.err))
		return m, nil
	}
	if !tab.tree.AcceptToken(msg.parent, msg.token) {
		return m, nil
	}
	tab.tree.AttachChildren(msg.parent, msg.children)
	tab.tree.Expand(msg.parent)
	return m, nil
}

func (m *Model) handleContentLoaded(msg contentLoadedMsg) (tea.Model, tea.Cmd) {
	tab := m.tabByID(msg.tabID)
	if tab == nil {
		return m, nil
	}
	if msg.err != nil {
		if m.pendingEdit == msg.id {
			m.pendingEdit = ""
		}
		m.status = errorStyle(backendStatus(msg.err))
		return m, nil
	}

	changed := false
	if n := tab.tree.Node(msg.id); n != nil {
		changed = n.ContentLoaded && n.Content != msg.note.Content
		tab.tree.SetContent(msg.id, msg.note.Content)
	}
	if changed {
		m.renders.Invalidate(msg.id)
	}

	if m.pendingEdit == msg.id {
		m.pendingEdit = ""
		return m, m.openEditor(tab, msg.id, msg.note.Content)
	}

	if changed && !tab.sync.Stale(msg.id, tab.tree.CursorID()) {
		return m, m.pushFor(tab, tab.sync.ContentRefreshed(msg.id))
	}
	return m, nil
}

func (m *Model) handleNoteCreated(msg noteCreatedMsg) (tea.Model, tea.Cmd) {
	tab := m.tabByID(msg.tabID)
	if tab == nil {
		return m, nil
	}
	if msg.err != nil {
		if tab.rollback != nil {
			tab.tree.Restore(tab.rollback)
			tab.rollback = nil
		}
		m.status = errorStyle(backendStatus(msg.err))
		return m, nil
	}

	tab.rollback = nil
	if err := tab.tree.ConfirmCreate(msg.placeholder, tree.NodeID(msg.note.ID)); err != nil {
		// The placeholder vanished under a concurrent reload; fall back
		// to a full refresh so the new note still shows up.
		return m, m.loadTreeCmd(tab.id)
	}
	m.status = statusStyle("created " + msg.note.Title)
	return m, nil
}

func (m *Model) handleReparentDone(msg reparentDoneMsg) (tea.Model, tea.Cmd) {
	tab := m.tabByID(msg.tabID)
	if tab == nil {
		return m, nil
	}
	if msg.err != nil {
		if tab.rollback != nil {
			tab.tree.Restore(tab.rollback)
			tab.rollback = nil
		}
		remark(tab.marks, msg.ids)
		m.status = errorStyle(backendStatus(msg.err))
		return m, nil
	}
	tab.rollback = nil
	if len(msg.ids) > 1 {
		m.status = statusStyle(fmt.Sprintf("moved %d notes", len(msg.ids)))
	}
	return m, nil
}

func (m *Model) handleNoteDeleted(msg noteDeletedMsg) (tea.Model, tea.Cmd) {
	tab := m.tabByID(msg.tabID)
	if tab == nil {
		return m, nil
	}
	if msg.err != nil {
		if tab.rollback != nil {
			tab.tree.Restore(tab.rollback)
			tab.rollback = nil
		}
		remark(tab.marks, tab.droppedMarks)
		if tab.droppedJump != "" {
			tab.marks.SetJumpMark(tab.droppedJump)
		}
		tab.droppedMarks, tab.droppedJump = nil, ""
		m.status = errorStyle(backendStatus(msg.err))
		return m, nil
	}
	tab.rollback = nil
	tab.droppedMarks, tab.droppedJump = nil, ""
	return m, nil
}

func (m *Model) handleNoteSaved(msg noteSavedMsg) (tea.Model, tea.Cmd) {
	tab := m.tabByID(msg.tabID)
	if tab == nil {
		return m, nil
	}
	if msg.err != nil {
		m.status = errorStyle(backendStatus(msg.err))
		return m, nil
	}

	m.renders.Invalidate(msg.id)
	m.status = statusStyle("saved")
	if !tab.sync.Stale(msg.id, tab.tree.CursorID()) {
		return m, m.pushFor(tab, tab.sync.ContentRefreshed(msg.id))
	}
	return m, nil
}

func (m *Model) handlePreviewPushed(msg previewPushedMsg) (tea.Model, tea.Cmd) {
	tab := m.tabByID(msg.tabID)
	if tab == nil {
		return m, nil
	}
	if msg.err != nil {
		m.status = errorStyle(previewStatus(msg.err))
	}

	next := tab.sync.Done()
	if next == nil {
		return m, nil
	}
	return m, m.pushFor(tab, next)
}

func (m *Model) handleSearchResult(msg searchResultMsg) (tea.Model, tea.Cmd) {
	tab := m.tabByID(msg.tabID)
	if tab == nil || msg.query != tab.searchQuery {
		return m, nil
	}
	if msg.err != nil {
		m.status = errorStyle(backendStatus(msg.err))
		return m, nil
	}

	matches := make(map[tree.NodeID]bool, len(msg.notes))
	for _, n := range msg.notes {
		matches[tree.NodeID(n.ID)] = true
	}
	tab.matches = matches
	m.status = statusStyle(fmt.Sprintf("%d search hits", len(msg.notes)))
	return m, nil
}

func (m *Model) handleLinksLoaded(msg linksLoadedMsg) (tea.Model, tea.Cmd) {
	tab := m.tabByID(msg.tabID)
	if tab == nil || tab.sync.Stale(msg.id, tab.tree.CursorID()) {
		return m, nil
	}
	if msg.err != nil {
		m.status = errorStyle(backendStatus(msg.err))
		return m, nil
	}
	m.status = statusStyle(linkSummary(cursorTitle(tab), msg.backlinks, msg.forward))
	return m, nil
}

func linkSummary(title string, backlinks, forward []api.Note) string {
	return fmt.Sprintf("%s: %d backlinks, %d links out", title, len(backlinks), len(forward))
}

func (m *Model) handleFollowTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{followTick()}
	tab := m.activeTab()
	if tab.sync.Mode() == syncer.Follow {
		if id := tab.tree.CursorID(); id != "" {
			cmds = append(cmds, m.loadContentCmd(tab.id, id))
		}
	}
	return m, tea.Batch(cmds...)
}

// fuzzyMatches runs the local filter over every known note title.
func (m *Model) fuzzyMatches(tab *tabState, query string) map[tree.NodeID]bool {
	ids, titles := collectTitles(tab.tree)
	matches := make(map[tree.NodeID]bool)
	for _, match := range fuzzyFind(query, titles) {
		matches[ids[match]] = true
	}
	return matches
}

func collectTitles(t *tree.Tree) ([]tree.NodeID, []string) {
	var ids []tree.NodeID
	var titles []string
	var walk func(id tree.NodeID)
	walk = func(id tree.NodeID) {
		n := t.Node(id)
		if n == nil {
			return
		}
		ids = append(ids, n.ID)
		titles = append(titles, n.Title)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, root := range t.Roots() {
		walk(root)
	}
	return ids, titles
}

func remark(store *marks.Store, ids []tree.NodeID) {
	for _, id := range ids {
		if !store.IsMarked(id) {
			store.ToggleMoveMark(id)
		}
	}
}

func cursorTitle(tab *tabState) string {
	if n := tab.tree.Cursor(); n != nil {
		return n.Title
	}
	return ""
}

func foldStatus(level int) string {
	switch level {
	case -1:
		return "fold: everything unfolded"
	case 0:
		return "fold: all collapsed"
	default:
		return fmt.Sprintf("fold: level %d", level)
	}
}

func backendStatus(err error) string {
	if errors.Is(err, api.ErrBackendUnavailable) {
		return "backend unreachable; showing last loaded state"
	}
	return err.Error()
}
