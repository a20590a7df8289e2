package notes

import "github.com/charmbracelet/bubbles/key"

type treeKeyMap struct {
	cursorDown      key.Binding
	cursorUp        key.Binding
	collapse        key.Binding
	expand          key.Binding
	foldCycle       key.Binding
	foldCycleBack   key.Binding
	unfoldAll       key.Binding
	foldToFirst     key.Binding
	newTab          key.Binding
	closeTab        key.Binding
	nextTab         key.Binding
	prevTab         key.Binding
	editNote        key.Binding
	guiEditNote     key.Binding
	filterNotes     key.Binding
	searchNotes     key.Binding
	toggleFlatView  key.Binding
	triggerPreview  key.Binding
	toggleSyncMode  key.Binding
	markForMove     key.Binding
	pasteAsChildren key.Binding
	clearMarks      key.Binding
	setJumpMark     key.Binding
	jumpToMark      key.Binding
	yankLink        key.Binding
	showLinks       key.Binding
	promote         key.Binding
	demote          key.Binding
	newNote         key.Binding
	deleteNote      key.Binding
	refresh         key.Binding
	submitInput     key.Binding
	cancelInput     key.Binding
	quit            key.Binding
}

func newTreeKeyMap() *treeKeyMap {
	return &treeKeyMap{
		cursorDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j", "down"),
		),
		cursorUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k", "up"),
		),
		collapse: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h", "collapse"),
		),
		expand: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l", "expand"),
		),
		foldCycle: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "fold →"),
		),
		foldCycleBack: key.NewBinding(
			key.WithKeys("Z"),
			key.WithHelp("Z", "← fold"),
		),
		unfoldAll: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "unfold"),
		),
		foldToFirst: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "level 1"),
		),
		newTab: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "new tab"),
		),
		closeTab: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "close tab"),
		),
		nextTab: key.NewBinding(
			key.WithKeys(">"),
			key.WithHelp(">", "next tab"),
		),
		prevTab: key.NewBinding(
			key.WithKeys("<"),
			key.WithHelp("<", "prev tab"),
		),
		editNote: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		guiEditNote: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "gui edit"),
		),
		filterNotes: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter"),
		),
		searchNotes: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "search"),
		),
		toggleFlatView: key.NewBinding(
			key.WithKeys("f5"),
			key.WithHelp("f5", "flat view"),
		),
		triggerPreview: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "preview"),
		),
		toggleSyncMode: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "sync mode"),
		),
		markForMove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "mark"),
		),
		pasteAsChildren: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "paste"),
		),
		clearMarks: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear marks"),
		),
		setJumpMark: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "set mark"),
		),
		jumpToMark: key.NewBinding(
			key.WithKeys("'"),
			key.WithHelp("'", "jump to mark"),
		),
		yankLink: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yank link"),
		),
		showLinks: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "links"),
		),
		promote: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "promote"),
		),
		demote: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "demote"),
		),
		newNote: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new note"),
		),
		deleteNote: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		submitInput: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "submit"),
		),
		cancelInput: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// shortHelp is the binding subset shown on the footer line.
func (m treeKeyMap) shortHelp() []key.Binding {
	return []key.Binding{
		m.cursorDown,
		m.collapse,
		m.foldCycle,
		m.markForMove,
		m.pasteAsChildren,
		m.editNote,
		m.triggerPreview,
		m.quit,
	}
}
