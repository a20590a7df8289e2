// Package marks tracks the jump mark and the move-mark staging set
// consumed by tree paste operations.
package marks

import (
	"errors"

	"github.com/quellen/nt/internal/tree"
)

// ErrNoMarkSet is returned when a jump is requested with no mark stored.
var ErrNoMarkSet = errors.New("no jump mark set")

// Store holds one optional jump mark and a set of notes staged for a
// pending move. Marks are session-only state.
type Store struct {
	jump    tree.NodeID
	hasJump bool
	move    map[tree.NodeID]struct{}
}

func NewStore() *Store {
	return &Store{move: make(map[tree.NodeID]struct{})}
}

// SetJumpMark stores id as the single jump target, replacing any
// previous mark.
func (s *Store) SetJumpMark(id tree.NodeID) {
	s.jump = id
	s.hasJump = true
}

// JumpMark returns the stored jump target.
func (s *Store) JumpMark() (tree.NodeID, error) {
	if !s.hasJump {
		return "", ErrNoMarkSet
	}
	return s.jump, nil
}

// ToggleMoveMark adds id to the move set, or removes it when already
// staged. It reports whether the id is marked afterwards.
func (s *Store) ToggleMoveMark(id tree.NodeID) bool {
	if _, ok := s.move[id]; ok {
		delete(s.move, id)
		return false
	}
	s.move[id] = struct{}{}
	return true
}

// IsMarked reports whether id is staged for a move.
func (s *Store) IsMarked(id tree.NodeID) bool {
	_, ok := s.move[id]
	return ok
}

// MoveMarks returns the staged ids in no particular order; the tree
// applies its own traversal ordering on paste.
func (s *Store) MoveMarks() []tree.NodeID {
	ids := make([]tree.NodeID, 0, len(s.move))
	for id := range s.move {
		ids = append(ids, id)
	}
	return ids
}

// MarkCount reports the number of staged move marks.
func (s *Store) MarkCount() int {
	return len(s.move)
}

// Remove drops ids from both mark kinds, used when notes are deleted.
func (s *Store) Remove(ids ...tree.NodeID) {
	for _, id := range ids {
		delete(s.move, id)
		if s.hasJump && s.jump == id {
			s.hasJump = false
			s.jump = ""
		}
	}
}

// ClearMarks empties the jump mark and the move set.
func (s *Store) ClearMarks() {
	s.move = make(map[tree.NodeID]struct{})
	s.jump = ""
	s.hasJump = false
}

// PasteAsChildren reparents every staged note under dest via the tree,
// clearing the move set only when the move succeeded.
func (s *Store) PasteAsChildren(t *tree.Tree, dest tree.NodeID) error {
	if err := t.Move(s.MoveMarks(), dest); err != nil {
		return err
	}
	s.move = make(map[tree.NodeID]struct{})
	return nil
}
