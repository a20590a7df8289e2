package tree

// FoldToLevel expands every node above depth n and collapses the rest.
// n = 1 leaves only roots expanded; n = 0 collapses everything; n < 0
// unfolds the whole tree.
func (t *Tree) FoldToLevel(n int) {
	var walk func(id NodeID, depth int)
	walk = func(id NodeID, depth int) {
		node := t.nodes[id]
		if node == nil {
			return
		}
		if n < 0 || depth < n {
			node.Folded = false
		} else {
			node.Folded = true
		}
		for _, child := range node.Children {
			walk(child, depth+1)
		}
	}
	for _, root := range t.roots {
		walk(root, 0)
	}
	t.snapCursor()
}

// UnfoldAll expands the whole tree.
func (t *Tree) UnfoldAll() {
	t.FoldToLevel(-1)
}

// CycleFold advances the tree-wide fold level through the configured
// sequence. Direction +1 steps forward, -1 backward. It returns the
// level that was applied (-1 meaning fully unfolded).
func (t *Tree) CycleFold(direction int) int {
	if len(t.foldLevels) == 0 {
		return -1
	}
	step := t.foldStep + direction
	for step < 0 {
		step += len(t.foldLevels)
	}
	t.foldStep = step % len(t.foldLevels)
	level := t.foldLevels[t.foldStep]
	t.FoldToLevel(level)
	return level
}

// FoldLevel reports the level most recently applied by CycleFold.
func (t *Tree) FoldLevel() int {
	if len(t.foldLevels) == 0 {
		return -1
	}
	return t.foldLevels[t.foldStep]
}

// MaxDepth returns the deepest depth in the forest, -1 when empty.
func (t *Tree) MaxDepth() int {
	max := -1
	var walk func(id NodeID, depth int)
	walk = func(id NodeID, depth int) {
		if depth > max {
			max = depth
		}
		for _, child := range t.nodes[id].Children {
			walk(child, depth+1)
		}
	}
	for _, root := range t.roots {
		walk(root, 0)
	}
	return max
}

// snapCursor moves a cursor hidden by a fold change up to its nearest
// visible ancestor.
func (t *Tree) snapCursor() {
	if t.cursor == "" {
		return
	}
	id := t.cursor
	for !t.isVisible(id) {
		n := t.nodes[id]
		if n == nil || n.Parent == "" {
			break
		}
		id = n.Parent
	}
	t.cursor = id
}

// FilterRows projects the rows whose node, or any descendant, is in the
// match set, keeping ancestor paths so matches stay anchored in the
// hierarchy. Fold state is ignored; a filtered view is always unfolded.
func (t *Tree) FilterRows(matches map[NodeID]bool) []Row {
	var rows []Row
	var walk func(id NodeID, depth int) bool
	walk = func(id NodeID, depth int) bool {
		n := t.nodes[id]
		if n == nil {
			return false
		}
		keep := matches[id]
		mark := len(rows)
		rows = append(rows, Row{Node: n, Depth: depth})
		for _, child := range n.Children {
			if walk(child, depth+1) {
				keep = true
			}
		}
		if !keep {
			rows = rows[:mark]
		}
		return keep
	}
	for _, root := range t.roots {
		walk(root, 0)
	}
	return rows
}
