// Package tree owns the in-memory note forest: fold state, cursor,
// structural mutations, and the visible projection the renderer consumes.
// It performs no I/O; fetches and confirmations are driven by the caller.
package tree

import (
	"fmt"
)

// NodeID is the backend-assigned note identifier, opaque and stable
// across sessions. Placeholder ids are used for optimistic inserts until
// the backend confirms.
type NodeID string

// Node is a single note in the forest.
type Node struct {
	ID       NodeID
	Title    string
	Parent   NodeID // empty means root
	Children []NodeID
	Folded   bool

	// Content is lazily populated and invalidated on edit or refresh.
	Content        string
	ContentLoaded  bool
	ChildrenLoaded bool
}

// NoteData is the loader input: a subtree as returned by the backend.
// ChildrenKnown distinguishes "no children" from "children not fetched".
type NoteData struct {
	ID            NodeID
	Title         string
	Content       string
	HasContent    bool
	Children      []NoteData
	ChildrenKnown bool
}

// Row is one line of the visible projection.
type Row struct {
	Node  *Node
	Depth int
}

// Tree is a forest of notes keyed by id. Not safe for concurrent use;
// the TUI loop is the single writer.
type Tree struct {
	nodes  map[NodeID]*Node
	roots  []NodeID
	cursor NodeID

	foldLevels []int
	foldStep   int

	tokens      map[NodeID]uint64
	placeholder int
}

// DefaultFoldLevels is the cycle the z key walks through: roots only,
// two levels, everything, all collapsed. -1 means unlimited depth.
var DefaultFoldLevels = []int{1, 2, -1, 0}

func New() *Tree {
	return &Tree{
		nodes:      make(map[NodeID]*Node),
		tokens:     make(map[NodeID]uint64),
		foldLevels: DefaultFoldLevels,
	}
}

// SetFoldLevels overrides the fold cycle sequence. Empty input keeps the
// current sequence.
func (t *Tree) SetFoldLevels(levels []int) {
	if len(levels) == 0 {
		return
	}
	t.foldLevels = append([]int(nil), levels...)
	t.foldStep = 0
}

// Load replaces the forest with a freshly fetched set of subtrees. Fold
// state survives for ids that still exist; state for vanished ids is
// dropped. The cursor is kept when its node survives, otherwise it moves
// to the first visible row.
func (t *Tree) Load(roots []NoteData) {
	folded := make(map[NodeID]bool, len(t.nodes))
	for id, n := range t.nodes {
		folded[id] = n.Folded
	}

	t.nodes = make(map[NodeID]*Node)
	t.roots = t.roots[:0]
	for _, data := range roots {
		t.insertSubtree(data, "")
		t.roots = append(t.roots, data.ID)
	}

	for id, wasFolded := range folded {
		if n, ok := t.nodes[id]; ok {
			n.Folded = wasFolded
		}
	}

	if _, ok := t.nodes[t.cursor]; !ok || !t.isVisible(t.cursor) {
		t.cursor = ""
		if rows := t.VisibleRows(); len(rows) > 0 {
			t.cursor = rows[0].Node.ID
		}
	}
}

func (t *Tree) insertSubtree(data NoteData, parent NodeID) {
	n := &Node{
		ID:             data.ID,
		Title:          data.Title,
		Parent:         parent,
		Content:        data.Content,
		ContentLoaded:  data.HasContent,
		ChildrenLoaded: data.ChildrenKnown,
		Folded:         true,
	}
	t.nodes[data.ID] = n
	for _, child := range data.Children {
		n.Children = append(n.Children, child.ID)
		t.insertSubtree(child, data.ID)
	}
}

// AttachChildren fulfils a lazy child fetch for id, replacing any
// previously known children. New children come in collapsed.
func (t *Tree) AttachChildren(id NodeID, children []NoteData) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("attach children %q: %w", id, ErrUnknownNode)
	}

	for _, old := range n.Children {
		t.removeSubtree(old)
	}
	n.Children = n.Children[:0]
	for _, child := range children {
		n.Children = append(n.Children, child.ID)
		t.insertSubtree(child, id)
	}
	n.ChildrenLoaded = true
	return nil
}

// Node returns the node for id, or nil.
func (t *Tree) Node(id NodeID) *Node {
	return t.nodes[id]
}

// Roots returns the root ids in order.
func (t *Tree) Roots() []NodeID {
	return append([]NodeID(nil), t.roots...)
}

// Len reports the number of nodes in the forest.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Cursor returns the currently highlighted node, or nil when the tree is
// empty.
func (t *Tree) Cursor() *Node {
	return t.nodes[t.cursor]
}

// CursorID returns the highlighted id, empty when the tree is empty.
func (t *Tree) CursorID() NodeID {
	return t.cursor
}

// SetCursor moves the cursor to id, expanding ancestors so the node is
// visible.
func (t *Tree) SetCursor(id NodeID) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("set cursor %q: %w", id, ErrUnknownNode)
	}
	for p := t.nodes[n.Parent]; p != nil; p = t.nodes[p.Parent] {
		p.Folded = false
	}
	t.cursor = id
	return nil
}

// CursorDown moves the cursor one visible row down.
func (t *Tree) CursorDown() {
	t.moveCursor(1)
}

// CursorUp moves the cursor one visible row up.
func (t *Tree) CursorUp() {
	t.moveCursor(-1)
}

func (t *Tree) moveCursor(delta int) {
	rows := t.VisibleRows()
	if len(rows) == 0 {
		t.cursor = ""
		return
	}
	idx := t.rowIndex(rows, t.cursor)
	if idx < 0 {
		t.cursor = rows[0].Node.ID
		return
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(rows) {
		idx = len(rows) - 1
	}
	t.cursor = rows[idx].Node.ID
}

func (t *Tree) rowIndex(rows []Row, id NodeID) int {
	for i, r := range rows {
		if r.Node.ID == id {
			return i
		}
	}
	return -1
}

// Expand unfolds id. The returned flag reports whether the node's
// children have never been fetched, in which case the caller owes the
// tree an AttachChildren call.
func (t *Tree) Expand(id NodeID) (needsFetch bool, err error) {
	n, ok := t.nodes[id]
	if !ok {
		return false, fmt.Errorf("expand %q: %w", id, ErrUnknownNode)
	}
	n.Folded = false
	return !n.ChildrenLoaded, nil
}

// Collapse folds id. Fetched children stay cached; folding is a view
// operation. A cursor hidden by the fold snaps to the folded node.
func (t *Tree) Collapse(id NodeID) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("collapse %q: %w", id, ErrUnknownNode)
	}
	n.Folded = true
	if t.cursor != "" && t.cursor != id && t.isAncestor(id, t.cursor) {
		t.cursor = id
	}
	return nil
}

// isAncestor reports whether a is a strict ancestor of b.
func (t *Tree) isAncestor(a, b NodeID) bool {
	n := t.nodes[b]
	if n == nil {
		return false
	}
	for p := n.Parent; p != ""; {
		if p == a {
			return true
		}
		pn := t.nodes[p]
		if pn == nil {
			return false
		}
		p = pn.Parent
	}
	return false
}

func (t *Tree) isVisible(id NodeID) bool {
	n := t.nodes[id]
	if n == nil {
		return false
	}
	for p := t.nodes[n.Parent]; p != nil; p = t.nodes[p.Parent] {
		if p.Folded {
			return false
		}
	}
	return true
}

// Walk traverses the visible projection depth-first in sibling order,
// stopping early when fn returns false.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	var walk func(id NodeID, depth int) bool
	walk = func(id NodeID, depth int) bool {
		n := t.nodes[id]
		if n == nil {
			return true
		}
		if !fn(n, depth) {
			return false
		}
		if n.Folded {
			return true
		}
		for _, child := range n.Children {
			if !walk(child, depth+1) {
				return false
			}
		}
		return true
	}
	for _, root := range t.roots {
		if !walk(root, 0) {
			return
		}
	}
}

// VisibleRows materialises the visible projection.
func (t *Tree) VisibleRows() []Row {
	var rows []Row
	t.Walk(func(n *Node, depth int) bool {
		rows = append(rows, Row{Node: n, Depth: depth})
		return true
	})
	return rows
}

// Promote reattaches id to its grandparent, immediately after its former
// parent. A child of a root becomes a root. Promoting a root fails.
func (t *Tree) Promote(id NodeID) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("promote %q: %w", id, ErrUnknownNode)
	}
	if n.Parent == "" {
		return fmt.Errorf("promote %q: already a root: %w", id, ErrInvalidOperation)
	}

	parent := t.nodes[n.Parent]
	t.detach(id)
	if parent.Parent == "" {
		idx := indexOf(t.roots, parent.ID)
		t.roots = insertAt(t.roots, idx+1, id)
		n.Parent = ""
	} else {
		grand := t.nodes[parent.Parent]
		idx := indexOf(grand.Children, parent.ID)
		grand.Children = insertAt(grand.Children, idx+1, id)
		n.Parent = grand.ID
	}
	return nil
}

// Demote reattaches id as the last child of its preceding sibling, which
// is unfolded so the node stays visible. Fails when there is no
// preceding sibling.
func (t *Tree) Demote(id NodeID) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("demote %q: %w", id, ErrUnknownNode)
	}

	siblings := t.siblingsOf(n)
	idx := indexOf(siblings, id)
	if idx <= 0 {
		return fmt.Errorf("demote %q: no preceding sibling: %w", id, ErrInvalidOperation)
	}
	prev := t.nodes[siblings[idx-1]]

	t.detach(id)
	prev.Children = append(prev.Children, id)
	prev.Folded = false
	n.Parent = prev.ID
	return nil
}

func (t *Tree) siblingsOf(n *Node) []NodeID {
	if n.Parent == "" {
		return t.roots
	}
	return t.nodes[n.Parent].Children
}

// Move reparents every marked node under dest (empty dest means root
// level), preserving their relative projection order. The operation is
// atomic: if any marked node contains dest in its subtree, nothing moves.
func (t *Tree) Move(marked []NodeID, dest NodeID) error {
	if dest != "" {
		if _, ok := t.nodes[dest]; !ok {
			return fmt.Errorf("move to %q: %w", dest, ErrUnknownNode)
		}
	}
	for _, id := range marked {
		if _, ok := t.nodes[id]; !ok {
			return fmt.Errorf("move %q: %w", id, ErrUnknownNode)
		}
		if dest != "" && (id == dest || t.isAncestor(id, dest)) {
			return fmt.Errorf("move %q under %q: %w", id, dest, ErrCycleDetected)
		}
	}

	ordered := t.inTreeOrder(marked)
	for _, id := range ordered {
		t.detach(id)
		n := t.nodes[id]
		if dest == "" {
			t.roots = append(t.roots, id)
			n.Parent = ""
		} else {
			d := t.nodes[dest]
			d.Children = append(d.Children, id)
			d.Folded = false
			n.Parent = dest
		}
	}
	return nil
}

// inTreeOrder sorts ids by their depth-first traversal position,
// ignoring fold state.
func (t *Tree) inTreeOrder(ids []NodeID) []NodeID {
	want := make(map[NodeID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	ordered := make([]NodeID, 0, len(ids))
	var walk func(id NodeID)
	walk = func(id NodeID) {
		if want[id] {
			ordered = append(ordered, id)
		}
		for _, child := range t.nodes[id].Children {
			walk(child)
		}
	}
	for _, root := range t.roots {
		walk(root)
	}
	return ordered
}

// DeleteSubtree removes id and all descendants, returning the removed
// ids so the caller can clear marks. The cursor moves to the nearest
// surviving visible row.
func (t *Tree) DeleteSubtree(id NodeID) ([]NodeID, error) {
	if _, ok := t.nodes[id]; !ok {
		return nil, fmt.Errorf("delete %q: %w", id, ErrUnknownNode)
	}

	rows := t.VisibleRows()
	idx := t.rowIndex(rows, t.cursor)

	t.detach(id)
	removed := t.removeSubtree(id)

	if _, ok := t.nodes[t.cursor]; !ok {
		t.cursor = ""
		rows = t.VisibleRows()
		if len(rows) > 0 {
			if idx >= len(rows) {
				idx = len(rows) - 1
			}
			if idx < 0 {
				idx = 0
			}
			t.cursor = rows[idx].Node.ID
		}
	}
	return removed, nil
}

func (t *Tree) removeSubtree(id NodeID) []NodeID {
	n := t.nodes[id]
	if n == nil {
		return nil
	}
	removed := []NodeID{id}
	for _, child := range n.Children {
		removed = append(removed, t.removeSubtree(child)...)
	}
	delete(t.nodes, id)
	delete(t.tokens, id)
	return removed
}

// CreateChild inserts an optimistic placeholder node under parent (empty
// parent means a new root) and returns its temporary id. The caller
// replaces it via ConfirmCreate once the backend answers, or rolls the
// whole mutation back from a snapshot.
func (t *Tree) CreateChild(parent NodeID, title string) (NodeID, error) {
	if parent != "" {
		if _, ok := t.nodes[parent]; !ok {
			return "", fmt.Errorf("create under %q: %w", parent, ErrUnknownNode)
		}
	}

	t.placeholder++
	id := NodeID(fmt.Sprintf("pending/%d", t.placeholder))
	n := &Node{
		ID:             id,
		Title:          title,
		Parent:         parent,
		ContentLoaded:  true,
		ChildrenLoaded: true,
	}
	t.nodes[id] = n
	if parent == "" {
		t.roots = append(t.roots, id)
	} else {
		p := t.nodes[parent]
		p.Children = append(p.Children, id)
		p.ChildrenLoaded = true
		p.Folded = false
	}
	t.cursor = id
	return id, nil
}

// ConfirmCreate swaps a placeholder id for the backend-assigned one.
func (t *Tree) ConfirmCreate(placeholder, assigned NodeID) error {
	n, ok := t.nodes[placeholder]
	if !ok {
		return fmt.Errorf("confirm create %q: %w", placeholder, ErrUnknownNode)
	}

	delete(t.nodes, placeholder)
	n.ID = assigned
	t.nodes[assigned] = n

	siblings := t.siblingsOf(n)
	if idx := indexOf(siblings, placeholder); idx >= 0 {
		siblings[idx] = assigned
	}
	for _, child := range n.Children {
		t.nodes[child].Parent = assigned
	}
	if t.cursor == placeholder {
		t.cursor = assigned
	}
	return nil
}

// SetContent stores a fetched or edited body on the node.
func (t *Tree) SetContent(id NodeID, content string) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("set content %q: %w", id, ErrUnknownNode)
	}
	n.Content = content
	n.ContentLoaded = true
	return nil
}

// InvalidateContent drops the cached body so the next view refetches.
func (t *Tree) InvalidateContent(id NodeID) {
	if n, ok := t.nodes[id]; ok {
		n.ContentLoaded = false
		n.Content = ""
	}
}

// detach unlinks id from its parent's child list (or the root list)
// without touching the node set.
func (t *Tree) detach(id NodeID) {
	n := t.nodes[id]
	if n == nil {
		return
	}
	if n.Parent == "" {
		t.roots = removeID(t.roots, id)
		return
	}
	p := t.nodes[n.Parent]
	p.Children = removeID(p.Children, id)
}

// NextToken issues a fetch token for a subtree. Completions carrying an
// older token than the latest issued for that id must be discarded.
func (t *Tree) NextToken(id NodeID) uint64 {
	t.tokens[id]++
	return t.tokens[id]
}

// AcceptToken reports whether a completion token is still the latest.
func (t *Tree) AcceptToken(id NodeID, token uint64) bool {
	return t.tokens[id] == token
}

// Snapshot captures the full structural state for all-or-nothing
// mutations.
type SnapshotState struct {
	nodes       map[NodeID]*Node
	roots       []NodeID
	cursor      NodeID
	foldStep    int
	placeholder int
}

// Snapshot deep-copies the forest. Restore puts it back verbatim.
func (t *Tree) Snapshot() *SnapshotState {
	nodes := make(map[NodeID]*Node, len(t.nodes))
	for id, n := range t.nodes {
		cp := *n
		cp.Children = append([]NodeID(nil), n.Children...)
		nodes[id] = &cp
	}
	return &SnapshotState{
		nodes:       nodes,
		roots:       append([]NodeID(nil), t.roots...),
		cursor:      t.cursor,
		foldStep:    t.foldStep,
		placeholder: t.placeholder,
	}
}

// Restore reverts the forest to a snapshot.
func (t *Tree) Restore(s *SnapshotState) {
	nodes := make(map[NodeID]*Node, len(s.nodes))
	for id, n := range s.nodes {
		cp := *n
		cp.Children = append([]NodeID(nil), n.Children...)
		nodes[id] = &cp
	}
	t.nodes = nodes
	t.roots = append([]NodeID(nil), s.roots...)
	t.cursor = s.cursor
	t.foldStep = s.foldStep
	t.placeholder = s.placeholder
}

// Check verifies the structural invariants: acyclic, every non-root
// parent present, and child lists consistent with parent fields. Used by
// tests and after rollback.
func (t *Tree) Check() error {
	seen := make(map[NodeID]bool, len(t.nodes))
	var walk func(id NodeID, parent NodeID) error
	walk = func(id, parent NodeID) error {
		n, ok := t.nodes[id]
		if !ok {
			return fmt.Errorf("child %q of %q missing from node set", id, parent)
		}
		if seen[id] {
			return fmt.Errorf("node %q reachable twice", id)
		}
		seen[id] = true
		if n.Parent != parent {
			return fmt.Errorf("node %q parent field %q, listed under %q", id, n.Parent, parent)
		}
		for _, child := range n.Children {
			if err := walk(child, id); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range t.roots {
		if err := walk(root, ""); err != nil {
			return err
		}
	}
	if len(seen) != len(t.nodes) {
		return fmt.Errorf("%d nodes reachable, %d in set", len(seen), len(t.nodes))
	}
	return nil
}

func indexOf(ids []NodeID, id NodeID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func insertAt(ids []NodeID, idx int, id NodeID) []NodeID {
	if idx < 0 {
		idx = 0
	}
	if idx > len(ids) {
		idx = len(ids)
	}
	ids = append(ids, "")
	copy(ids[idx+1:], ids[idx:])
	ids[idx] = id
	return ids
}

func removeID(ids []NodeID, id NodeID) []NodeID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
