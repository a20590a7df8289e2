package notes

import (
	"github.com/quellen/nt/internal/api"
	"github.com/quellen/nt/internal/tree"
)

// Messages carry the tab they were issued for so completions landing
// after a tab closes are discarded instead of hitting the wrong tree.

type treeLoadedMsg struct {
	tabID int
	notes []tree.NoteData
	err   error
}

type childrenLoadedMsg struct {
	tabID    int
	parent   tree.NodeID
	token    uint64
	children []tree.NoteData
	err      error
}

type contentLoadedMsg struct {
	tabID int
	id    tree.NodeID
	note  *api.Note
	err   error
}

type noteCreatedMsg struct {
	tabID       int
	placeholder tree.NodeID
	parent      tree.NodeID
	note        *api.Note
	err         error
}

// reparentDoneMsg reports the outcome of the detach/attach sequence
// behind a promote, demote, or paste.
type reparentDoneMsg struct {
	tabID int
	ids   []tree.NodeID
	err   error
}

type noteDeletedMsg struct {
	tabID int
	id    tree.NodeID
	err   error
}

type noteSavedMsg struct {
	tabID int
	id    tree.NodeID
	err   error
}

type previewPushedMsg struct {
	tabID int
	seq   uint64
	err   error
}

type searchResultMsg struct {
	tabID int
	query string
	notes []api.Note
	err   error
}

type editorClosedMsg struct {
	tabID int
	id    tree.NodeID
	path  string
	err   error
}

// linksLoadedMsg carries both link directions for the cursored note.
type linksLoadedMsg struct {
	tabID     int
	id        tree.NodeID
	backlinks []api.Note
	forward   []api.Note
	err       error
}

type clipboardWrittenMsg struct {
	link string
	err  error
}

// followTickMsg drives the periodic content poll in follow mode.
type followTickMsg struct{}
