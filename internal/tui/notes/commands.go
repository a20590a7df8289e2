package notes

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quellen/nt/internal/api"
	"github.com/quellen/nt/internal/parser"
	"github.com/quellen/nt/internal/preview"
	"github.com/quellen/nt/internal/tree"
)

const requestTimeout = 10 * time.Second
const followPollInterval = 15 * time.Second

func (m *Model) loadTreeCmd(tabID int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		notes, err := m.gateway.FetchTree(ctx)
		return treeLoadedMsg{tabID: tabID, notes: api.ToNoteData(notes), err: err}
	}
}

func (m *Model) loadChildrenCmd(tabID int, parent tree.NodeID, token uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		children, err := m.gateway.FetchChildren(ctx, parent)
		return childrenLoadedMsg{
			tabID:    tabID,
			parent:   parent,
			token:    token,
			children: api.ToNoteData(children),
			err:      err,
		}
	}
}

func (m *Model) loadContentCmd(tabID int, id tree.NodeID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		note, err := m.gateway.FetchContent(ctx, id)
		return contentLoadedMsg{tabID: tabID, id: id, note: note, err: err}
	}
}

func (m *Model) createNoteCmd(tabID int, placeholder, parent tree.NodeID, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		note, err := m.gateway.CreateNote(ctx, title, "")
		if err == nil && parent != "" {
			err = m.gateway.AttachToParent(ctx, tree.NodeID(note.ID), parent)
		}
		return noteCreatedMsg{
			tabID:       tabID,
			placeholder: placeholder,
			parent:      parent,
			note:        note,
			err:         err,
		}
	}
}

// reparentCmd replays a local move against the backend: each note is
// detached from its old parent, then attached to dest unless dest is
// the root level.
func (m *Model) reparentCmd(tabID int, ids []tree.NodeID, dest tree.NodeID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		for _, id := range ids {
			// A root note has no parent to detach from; the backend
			// treats that as a no-op failure we can ignore.
			_ = m.gateway.DetachFromParent(ctx, id)

			if dest == "" {
				continue
			}
			if err := m.gateway.AttachToParent(ctx, id, dest); err != nil {
				return reparentDoneMsg{tabID: tabID, ids: ids, err: err}
			}
		}
		return reparentDoneMsg{tabID: tabID, ids: ids}
	}
}

func (m *Model) deleteNoteCmd(tabID int, id tree.NodeID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := m.gateway.DeleteNote(ctx, id)
		return noteDeletedMsg{tabID: tabID, id: id, err: err}
	}
}

func (m *Model) saveNoteCmd(tabID int, id tree.NodeID, content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		_, err := m.gateway.UpdateNote(ctx, id, nil, &content)
		return noteSavedMsg{tabID: tabID, id: id, err: err}
	}
}

// pushPreviewCmd sends one render request to the companion, fetching
// the note body first when the tree has not loaded it yet.
func (m *Model) pushPreviewCmd(tabID int, id tree.NodeID, seq uint64, body string, haveBody bool) tea.Cmd {
	return func() tea.Msg {
		if !haveBody {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			note, err := m.gateway.FetchContent(ctx, id)
			if err != nil {
				return previewPushedMsg{tabID: tabID, seq: seq, err: err}
			}
			body = note.Content
		}

		err := m.channel.Push(preview.Payload{
			NoteID:       string(id),
			MarkdownBody: body,
			AssetBaseRef: m.gateway.BaseURL() + "/assets/",
		})
		return previewPushedMsg{tabID: tabID, seq: seq, err: err}
	}
}

// loadLinksCmd fetches both link directions for the status summary.
func (m *Model) loadLinksCmd(tabID int, id tree.NodeID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		backlinks, err := m.gateway.FetchBacklinks(ctx, id)
		if err != nil {
			return linksLoadedMsg{tabID: tabID, id: id, err: err}
		}
		forward, err := m.gateway.FetchForwardLinks(ctx, id)
		return linksLoadedMsg{tabID: tabID, id: id, backlinks: backlinks, forward: forward, err: err}
	}
}

func (m *Model) searchNotesCmd(tabID int, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		notes, err := m.gateway.SearchNotes(ctx, query)
		return searchResultMsg{tabID: tabID, query: query, notes: notes, err: err}
	}
}

func yankLinkCmd(title string) tea.Cmd {
	link := parser.Wikilink(title)
	return func() tea.Msg {
		err := clipboard.WriteAll(link)
		return clipboardWrittenMsg{link: link, err: err}
	}
}

func followTick() tea.Cmd {
	return tea.Tick(followPollInterval, func(time.Time) tea.Msg {
		return followTickMsg{}
	})
}
