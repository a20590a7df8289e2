// Package syncer decides when the companion preview has to be pushed to.
// Each tree view owns its own Controller so tabs keep independent sync
// modes.
package syncer

import "github.com/quellen/nt/internal/tree"

// Mode governs how eagerly cursor and content changes reach the preview.
type Mode int

const (
	// Manual pushes only on the explicit preview keystroke.
	Manual Mode = iota
	// Auto additionally pushes on every committed cursor move.
	Auto
	// Follow additionally re-pushes when the displayed note's content
	// changes underneath it.
	Follow
)

func (m Mode) String() string {
	switch m {
	case Auto:
		return "auto"
	case Follow:
		return "follow"
	default:
		return "manual"
	}
}

// ParseMode maps a configuration string to a Mode, defaulting to Manual.
func ParseMode(s string) Mode {
	switch s {
	case "auto":
		return Auto
	case "follow":
		return Follow
	default:
		return Manual
	}
}

// Request is one decided push. Seq orders requests so completions can be
// matched to the decision that caused them.
type Request struct {
	NoteID tree.NodeID
	Seq    uint64
}

// Controller is the per-view push state machine. Pushes are coalesced:
// at most one is in flight, and a newer request replaces any queued one
// so the preview never plays back stale renders.
type Controller struct {
	mode     Mode
	seq      uint64
	inFlight bool
	pending  *Request
}

func NewController(mode Mode) *Controller {
	return &Controller{mode: mode}
}

// Mode returns the current sync mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Toggle cycles manual → auto → follow → manual and returns the new
// mode.
func (c *Controller) Toggle() Mode {
	switch c.mode {
	case Manual:
		c.mode = Auto
	case Auto:
		c.mode = Follow
	default:
		c.mode = Manual
	}
	return c.mode
}

// CursorMoved reports the push due for a committed cursor change, nil
// when the mode does not auto-push or when it was absorbed into the
// pending slot behind an in-flight push.
func (c *Controller) CursorMoved(id tree.NodeID) *Request {
	if c.mode == Manual {
		return nil
	}
	return c.admit(id)
}

// ContentRefreshed reports the push due when a background refresh finds
// new content for the displayed note. Only follow mode reacts.
func (c *Controller) ContentRefreshed(id tree.NodeID) *Request {
	if c.mode != Follow {
		return nil
	}
	return c.admit(id)
}

// Trigger reports the push for the explicit preview keystroke, which
// fires in every mode.
func (c *Controller) Trigger(id tree.NodeID) *Request {
	return c.admit(id)
}

func (c *Controller) admit(id tree.NodeID) *Request {
	c.seq++
	req := &Request{NoteID: id, Seq: c.seq}
	if c.inFlight {
		// Latest supersedes; earlier queued pushes are dropped unsent.
		c.pending = req
		return nil
	}
	c.inFlight = true
	return req
}

// Done marks the in-flight push finished and hands back the pending
// request, if any, which immediately becomes the new in-flight push.
func (c *Controller) Done() *Request {
	if !c.inFlight {
		return nil
	}
	next := c.pending
	c.pending = nil
	if next == nil {
		c.inFlight = false
	}
	return next
}

// Stale reports whether a completed fetch for id should be ignored
// because the cursor has since moved elsewhere.
func (c *Controller) Stale(id, cursor tree.NodeID) bool {
	return id != cursor
}
