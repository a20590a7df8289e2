// Package preview speaks to the companion GUI renderer over a local
// socket. The channel is single-owner: one connection, one writer, and
// pushes are never interleaved at the byte level.
package preview

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// ErrPreviewUnavailable means the companion process is unreachable. The
// caller degrades preview pushes only; navigation is unaffected.
var ErrPreviewUnavailable = errors.New("preview companion unavailable")

// ErrAckTimeout is the soft failure for a push that was written but not
// acknowledged within the wait window. It is reported, not fatal, and
// does not tear the connection down.
var ErrAckTimeout = errors.New("preview did not acknowledge in time")

// WireVersion tags every frame so the two processes can evolve
// independently.
const WireVersion = 1

const defaultAckWait = 2 * time.Second

// Payload is what the caller wants rendered.
type Payload struct {
	NoteID       string
	MarkdownBody string
	AssetBaseRef string
}

// Frame is the on-wire render request, newline-delimited JSON.
type Frame struct {
	V            int    `json:"v"`
	RequestID    uint64 `json:"request_id"`
	NoteID       string `json:"note_id"`
	MarkdownBody string `json:"markdown_body"`
	AssetBaseRef string `json:"asset_base_ref"`
}

// Ack is the companion's answer to a frame.
type Ack struct {
	RequestID uint64 `json:"request_id"`
	Status    string `json:"status"`
}

// Channel is a lazily connected client for the companion socket.
// Connect happens on first push; a broken pipe earns exactly one
// reconnect attempt per push, never a retry loop.
type Channel struct {
	path    string
	ackWait time.Duration

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	nextID uint64
}

// New prepares a channel for the socket at path without connecting.
func New(path string) *Channel {
	return &Channel{path: path, ackWait: defaultAckWait}
}

// SetAckWait overrides the acknowledgment deadline, mainly for tests.
func (c *Channel) SetAckWait(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ackWait = d
}

// Connect dials the companion socket. Safe to call when already
// connected.
func (c *Channel) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Channel) connectLocked() error {
	if c.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("unix", c.path, time.Second)
	if err != nil {
		return fmt.Errorf("dial %s: %w: %v", c.path, ErrPreviewUnavailable, err)
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Connected reports whether a connection is currently held.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Push sends one render request and waits for its acknowledgment. A
// write failure closes the connection and retries through exactly one
// reconnect; a second failure surfaces ErrPreviewUnavailable. A missing
// ack is returned as ErrAckTimeout and leaves the connection up.
func (c *Channel) Push(p Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(); err != nil {
		return err
	}

	c.nextID++
	frame := Frame{
		V:            WireVersion,
		RequestID:    c.nextID,
		NoteID:       p.NoteID,
		MarkdownBody: p.MarkdownBody,
		AssetBaseRef: p.AssetBaseRef,
	}

	err := c.attemptLocked(frame)
	if !errors.Is(err, errBrokenPipe) {
		return err
	}

	// One reconnect, one more try; never a retry loop.
	c.closeLocked()
	if err := c.connectLocked(); err != nil {
		return err
	}
	if err := c.attemptLocked(frame); err != nil {
		if errors.Is(err, errBrokenPipe) {
			c.closeLocked()
			return fmt.Errorf("push note %s: %w: %v", p.NoteID, ErrPreviewUnavailable, err)
		}
		return err
	}
	return nil
}

// errBrokenPipe marks connection-level failures eligible for the single
// reconnect attempt.
var errBrokenPipe = errors.New("preview connection broken")

func (c *Channel) attemptLocked(frame Frame) error {
	if err := c.writeLocked(frame); err != nil {
		return fmt.Errorf("%w: %v", errBrokenPipe, err)
	}
	return c.awaitAckLocked(frame.RequestID)
}

func (c *Channel) writeLocked(frame Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = c.conn.Write(data)
	return err
}

func (c *Channel) awaitAckLocked(requestID uint64) error {
	deadline := time.Now().Add(c.ackWait)
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	defer c.conn.SetReadDeadline(time.Time{})

	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				return fmt.Errorf("request %d: %w", requestID, ErrAckTimeout)
			}
			return fmt.Errorf("request %d ack: %w: %v", requestID, errBrokenPipe, err)
		}

		var ack Ack
		if err := json.Unmarshal(line, &ack); err != nil {
			continue // tolerate junk lines from older companions
		}
		if ack.RequestID < requestID {
			continue // late ack for a superseded push
		}
		if ack.Status != "" && ack.Status != "ok" {
			return fmt.Errorf("request %d: companion reported %q", requestID, ack.Status)
		}
		return nil
	}
}

func (c *Channel) closeLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.reader = nil
	}
}

// Close releases the connection. Always safe; wired to every exit path.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}
