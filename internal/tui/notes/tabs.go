package notes

import (
	"github.com/quellen/nt/internal/marks"
	"github.com/quellen/nt/internal/syncer"
	"github.com/quellen/nt/internal/tree"
)

// tabState is one independent view over the note tree. Each tab owns
// its tree, marks, and sync controller so fold state and modes never
// bleed across tabs.
type tabState struct {
	id    int
	tree  *tree.Tree
	marks *marks.Store
	sync  *syncer.Controller

	flatView    bool
	filterQuery string
	searchQuery string
	// matches limits the projection while a filter or search is live;
	// nil means unfiltered.
	matches map[tree.NodeID]bool
	loaded  bool

	// rollback is the pre-mutation snapshot for the most recent
	// optimistic change, restored when the backend rejects it.
	rollback *tree.SnapshotState

	// droppedMarks and droppedJump record the marks an optimistic delete
	// cleared, re-applied if the backend rejects the delete.
	droppedMarks []tree.NodeID
	droppedJump  tree.NodeID
}

func (m *Model) newTab() *tabState {
	m.nextTabID++
	t := tree.New()
	if len(m.foldLevels) > 0 {
		t.SetFoldLevels(m.foldLevels)
	}
	return &tabState{
		id:    m.nextTabID,
		tree:  t,
		marks: marks.NewStore(),
		sync:  syncer.NewController(m.defaultSyncMode),
	}
}

func (m *Model) activeTab() *tabState {
	return m.tabs[m.active]
}

// tabByID resolves a message's tab, nil when the tab closed while the
// request was in flight.
func (m *Model) tabByID(id int) *tabState {
	for _, tab := range m.tabs {
		if tab.id == id {
			return tab
		}
	}
	return nil
}

func (m *Model) openTab() *tabState {
	tab := m.newTab()
	m.tabs = append(m.tabs, tab)
	m.active = len(m.tabs) - 1
	return tab
}

// closeTab removes the active tab, keeping at least one open.
func (m *Model) closeTab() {
	if len(m.tabs) <= 1 {
		return
	}
	m.tabs = append(m.tabs[:m.active], m.tabs[m.active+1:]...)
	if m.active > 0 {
		m.active--
	}
}

func (m *Model) nextTab() {
	m.active = (m.active + 1) % len(m.tabs)
}

func (m *Model) prevTab() {
	m.active = (m.active - 1 + len(m.tabs)) % len(m.tabs)
}
