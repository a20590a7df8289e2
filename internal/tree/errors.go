package tree

import "errors"

var (
	// ErrInvalidOperation is returned for structurally impossible edits,
	// such as promoting a root note or demoting a first sibling.
	ErrInvalidOperation = errors.New("invalid tree operation")

	// ErrCycleDetected is returned when a reparent would make a note its
	// own ancestor. The tree is left untouched.
	ErrCycleDetected = errors.New("reparent would create a cycle")

	// ErrUnknownNode is returned when an operation names an id that is not
	// part of the tree.
	ErrUnknownNode = errors.New("unknown note id")
)
