package marks

import (
	"errors"
	"reflect"
	"testing"

	"github.com/quellen/nt/internal/tree"
)

func TestJumpMarkLifecycle(t *testing.T) {
	t.Parallel()

	s := NewStore()
	if _, err := s.JumpMark(); !errors.Is(err, ErrNoMarkSet) {
		t.Fatalf("empty jump: got %v, want ErrNoMarkSet", err)
	}

	s.SetJumpMark("a")
	got, err := s.JumpMark()
	if err != nil || got != "a" {
		t.Fatalf("jump mark: got %q, %v", got, err)
	}

	s.SetJumpMark("b")
	if got, _ := s.JumpMark(); got != "b" {
		t.Fatalf("jump mark is single-slot: got %q, want b", got)
	}

	s.ClearMarks()
	if _, err := s.JumpMark(); !errors.Is(err, ErrNoMarkSet) {
		t.Fatalf("cleared jump: got %v, want ErrNoMarkSet", err)
	}
}

func TestToggleMoveMark(t *testing.T) {
	t.Parallel()

	s := NewStore()
	if !s.ToggleMoveMark("a") {
		t.Fatal("first toggle should mark")
	}
	if !s.IsMarked("a") {
		t.Fatal("a should be marked")
	}
	if s.ToggleMoveMark("a") {
		t.Fatal("second toggle should unmark")
	}
	if s.MarkCount() != 0 {
		t.Fatalf("mark count: got %d, want 0", s.MarkCount())
	}
}

func TestRemoveDropsDeletedIDs(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.SetJumpMark("a")
	s.ToggleMoveMark("a")
	s.ToggleMoveMark("b")

	s.Remove("a")

	if s.IsMarked("a") {
		t.Fatal("removed id still move-marked")
	}
	if !s.IsMarked("b") {
		t.Fatal("unrelated mark dropped")
	}
	if _, err := s.JumpMark(); !errors.Is(err, ErrNoMarkSet) {
		t.Fatalf("jump mark to deleted note survived: %v", err)
	}
}

func pasteFixture() *tree.Tree {
	tr := tree.New()
	tr.Load([]tree.NoteData{
		{ID: "A", Title: "A", ChildrenKnown: true},
		{ID: "B", Title: "B", ChildrenKnown: true},
		{ID: "C", Title: "C", ChildrenKnown: true},
	})
	return tr
}

func TestPasteAsChildrenMovesAndClears(t *testing.T) {
	t.Parallel()

	tr := pasteFixture()
	s := NewStore()
	s.ToggleMoveMark("A")
	s.ToggleMoveMark("B")

	if err := s.PasteAsChildren(tr, "C"); err != nil {
		t.Fatalf("paste: %v", err)
	}

	want := []tree.NodeID{"A", "B"}
	if got := tr.Node("C").Children; !reflect.DeepEqual(got, want) {
		t.Fatalf("C children: got %v, want %v", got, want)
	}
	if s.MarkCount() != 0 {
		t.Fatalf("move marks not cleared: %d left", s.MarkCount())
	}
}

func TestPasteFailureKeepsMarks(t *testing.T) {
	t.Parallel()

	tr := tree.New()
	tr.Load([]tree.NoteData{
		{
			ID: "A", Title: "A", ChildrenKnown: true,
			Children: []tree.NoteData{{ID: "A1", Title: "A1", ChildrenKnown: true}},
		},
	})

	s := NewStore()
	s.ToggleMoveMark("A")

	err := s.PasteAsChildren(tr, "A1")
	if !errors.Is(err, tree.ErrCycleDetected) {
		t.Fatalf("paste into own subtree: got %v, want ErrCycleDetected", err)
	}
	if !s.IsMarked("A") {
		t.Fatal("marks must survive a failed paste")
	}
}
