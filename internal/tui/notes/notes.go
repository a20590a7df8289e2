// Package notes is the tree navigator TUI: tabbed outline views over
// the note hierarchy with an inline preview pane and a channel to the
// GUI preview companion.
package notes

import (
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quellen/nt/internal/api"
	"github.com/quellen/nt/internal/cache"
	"github.com/quellen/nt/internal/config"
	"github.com/quellen/nt/internal/preview"
	"github.com/quellen/nt/internal/syncer"
	"github.com/quellen/nt/internal/tree"
)

const renderCacheSize = 256

type inputMode int

const (
	inputNone inputMode = iota
	inputFilter
	inputSearch
)

type Model struct {
	cfg     *config.Config
	gateway *api.Client
	channel *preview.Channel
	renders *cache.RenderCache
	keys    *treeKeyMap

	tabs            []*tabState
	active          int
	nextTabID       int
	foldLevels      []int
	defaultSyncMode syncer.Mode

	input     textinput.Model
	inputMode inputMode

	// pendingEdit is the note whose content fetch should open the
	// editor once it lands.
	pendingEdit tree.NodeID

	width  int
	height int
	status string
}

func NewModel(cfg *config.Config) *Model {
	input := textinput.New()
	input.CharLimit = 128

	m := &Model{
		cfg:             cfg,
		gateway:         api.NewClient(cfg.BaseURL()),
		channel:         preview.New(cfg.SocketPath),
		renders:         cache.NewRenderCache(renderCacheSize),
		keys:            newTreeKeyMap(),
		foldLevels:      cfg.FoldLevels,
		defaultSyncMode: syncer.ParseMode(cfg.SyncMode),
		input:           input,
	}
	m.tabs = []*tabState{m.newTab()}
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadTreeCmd(m.activeTab().id), followTick())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.inputMode != inputNone {
			return m.handleInputUpdate(msg)
		}
		return m.handleDefaultUpdate(msg)

	case treeLoadedMsg:
		return m.handleTreeLoaded(msg)
	case childrenLoadedMsg:
		return m.handleChildrenLoaded(msg)
	case contentLoadedMsg:
		return m.handleContentLoaded(msg)
	case noteCreatedMsg:
		return m.handleNoteCreated(msg)
	case reparentDoneMsg:
		return m.handleReparentDone(msg)
	case noteDeletedMsg:
		return m.handleNoteDeleted(msg)
	case noteSavedMsg:
		return m.handleNoteSaved(msg)
	case previewPushedMsg:
		return m.handlePreviewPushed(msg)
	case searchResultMsg:
		return m.handleSearchResult(msg)
	case linksLoadedMsg:
		return m.handleLinksLoaded(msg)
	case editorClosedMsg:
		return m.handleEditorClosed(msg)
	case clipboardWrittenMsg:
		if msg.err != nil {
			m.status = errorStyle("clipboard: " + msg.err.Error())
		} else {
			m.status = statusStyle("yanked " + msg.link)
		}
		return m, nil
	case followTickMsg:
		return m.handleFollowTick()
	}

	return m, nil
}

// Run starts the navigator and blocks until it exits. The preview
// channel is closed on every exit path.
func Run(cfg *config.Config) error {
	m := NewModel(cfg)
	defer m.channel.Close()

	if _, err := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithAltScreen()).Run(); err != nil {
		if strings.Contains(err.Error(), "resource temporarily unavailable") {
			os.Exit(0)
		} else {
			log.Fatalf("Error running program: %v", err)
		}
	}

	return nil
}
