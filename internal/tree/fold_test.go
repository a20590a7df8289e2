package tree

import (
	"reflect"
	"testing"
)

func foldStates(t *Tree) map[NodeID]bool {
	states := make(map[NodeID]bool, len(t.nodes))
	for id, n := range t.nodes {
		states[id] = n.Folded
	}
	return states
}

func TestFoldToLevelOneShowsOnlyRootChildren(t *testing.T) {
	t.Parallel()

	tr := fixture()
	tr.FoldToLevel(1)

	got := visibleIDs(tr)
	want := []NodeID{"root", "A", "B", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("level 1 projection: got %v, want %v", got, want)
	}
}

func TestFoldToLevelZeroCollapsesEverything(t *testing.T) {
	t.Parallel()

	tr := fixture()
	tr.UnfoldAll()
	tr.FoldToLevel(0)

	got := visibleIDs(tr)
	want := []NodeID{"root", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("level 0 projection: got %v, want %v", got, want)
	}
}

func TestCycleFoldIsCyclic(t *testing.T) {
	t.Parallel()

	tr := fixture()
	tr.CycleFold(1) // establish a known point in the sequence
	before := foldStates(tr)

	for i := 0; i < len(DefaultFoldLevels); i++ {
		tr.CycleFold(1)
	}

	if got := foldStates(tr); !reflect.DeepEqual(got, before) {
		t.Fatalf("fold assignment after full cycle: got %v, want %v", got, before)
	}
}

func TestCycleFoldReverseUndoesForward(t *testing.T) {
	t.Parallel()

	tr := fixture()
	tr.CycleFold(1)
	before := foldStates(tr)

	tr.CycleFold(1)
	tr.CycleFold(-1)

	if got := foldStates(tr); !reflect.DeepEqual(got, before) {
		t.Fatalf("reverse step: got %v, want %v", got, before)
	}
}

func TestCycleFoldHonoursConfiguredSequence(t *testing.T) {
	t.Parallel()

	tr := fixture()
	tr.SetFoldLevels([]int{0, -1})

	if level := tr.CycleFold(1); level != -1 {
		t.Fatalf("first step: got level %d, want -1", level)
	}
	if got, want := visibleIDs(tr), []NodeID{"root", "A", "A1", "A2", "B", "C"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("unfolded projection: got %v, want %v", got, want)
	}
	if level := tr.CycleFold(1); level != 0 {
		t.Fatalf("second step: got level %d, want 0", level)
	}
}

func TestFoldChangeKeepsCursorVisible(t *testing.T) {
	t.Parallel()

	tr := fixture()
	tr.UnfoldAll()
	if err := tr.SetCursor("A2"); err != nil {
		t.Fatalf("set cursor: %v", err)
	}

	tr.FoldToLevel(1)
	if tr.CursorID() != "A" {
		t.Fatalf("cursor after fold: got %q, want A", tr.CursorID())
	}

	for _, r := range tr.VisibleRows() {
		if r.Node.ID == tr.CursorID() {
			return
		}
	}
	t.Fatalf("cursor %q not in visible projection", tr.CursorID())
}

func TestMaxDepth(t *testing.T) {
	t.Parallel()

	tr := fixture()
	if got := tr.MaxDepth(); got != 2 {
		t.Fatalf("max depth: got %d, want 2", got)
	}
	if got := New().MaxDepth(); got != -1 {
		t.Fatalf("empty max depth: got %d, want -1", got)
	}
}

func TestFilterRowsKeepsAncestorPaths(t *testing.T) {
	t.Parallel()

	tr := fixture()
	rows := tr.FilterRows(map[NodeID]bool{"A2": true})

	var got []NodeID
	for _, r := range rows {
		got = append(got, r.Node.ID)
	}
	want := []NodeID{"root", "A", "A2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filtered rows: got %v, want %v", got, want)
	}
}

func TestFilterRowsEmptyMatchSet(t *testing.T) {
	t.Parallel()

	tr := fixture()
	if rows := tr.FilterRows(nil); len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
