package preview

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// fakeCompanion accepts connections on a unix socket and acknowledges
// every frame, recording what it saw.
type fakeCompanion struct {
	ln     net.Listener
	frames chan Frame

	mu    sync.Mutex
	conns []net.Conn
}

func newFakeCompanion(t *testing.T, path string) *fakeCompanion {
	t.Helper()
	os.Remove(path) // a restarted companion rebinds the same path
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	f := &fakeCompanion{ln: ln, frames: make(chan Frame, 16)}
	go f.serve()
	t.Cleanup(f.shutdown)
	return f
}

func (f *fakeCompanion) shutdown() {
	f.ln.Close()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conn := range f.conns {
		conn.Close()
	}
	f.conns = nil
}

func (f *fakeCompanion) serve() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		f.mu.Lock()
		f.conns = append(f.conns, conn)
		f.mu.Unlock()
		go func(conn net.Conn) {
			defer conn.Close()
			scanner := bufio.NewScanner(conn)
			scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
			for scanner.Scan() {
				var frame Frame
				if err := json.Unmarshal(scanner.Bytes(), &frame); err != nil {
					continue
				}
				f.frames <- frame
				ack, _ := json.Marshal(Ack{RequestID: frame.RequestID, Status: "ok"})
				conn.Write(append(ack, '\n'))
			}
		}(conn)
	}
}

func sockPath(t *testing.T) string {
	t.Helper()
	// Keep the path short; unix socket paths have a tight limit.
	return filepath.Join(t.TempDir(), "p.sock")
}

func TestPushDeliversFrameAndReadsAck(t *testing.T) {
	t.Parallel()

	path := sockPath(t)
	companion := newFakeCompanion(t, path)

	ch := New(path)
	defer ch.Close()

	err := ch.Push(Payload{
		NoteID:       "42",
		MarkdownBody: "# hello",
		AssetBaseRef: "http://localhost:37240/assets/",
	})
	if err != nil {
		t.Fatalf("push: %v", err)
	}

	select {
	case frame := <-companion.frames:
		if frame.V != WireVersion {
			t.Fatalf("wire version: got %d, want %d", frame.V, WireVersion)
		}
		if frame.NoteID != "42" || frame.MarkdownBody != "# hello" {
			t.Fatalf("frame payload: %+v", frame)
		}
		if frame.RequestID == 0 {
			t.Fatal("request id must be set for ack correlation")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("companion never received the frame")
	}
}

func TestConnectMissingSocket(t *testing.T) {
	t.Parallel()

	ch := New(filepath.Join(t.TempDir(), "absent.sock"))
	err := ch.Push(Payload{NoteID: "1"})
	if !errors.Is(err, ErrPreviewUnavailable) {
		t.Fatalf("push without companion: got %v, want ErrPreviewUnavailable", err)
	}
}

func TestMissingAckIsSoftFailure(t *testing.T) {
	t.Parallel()

	path := sockPath(t)
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		// Accept and read but never acknowledge.
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		buf := make([]byte, 4096)
		for {
			if _, err := conn.Read(buf); err != nil {
				conn.Close()
				return
			}
		}
	}()

	ch := New(path)
	defer ch.Close()
	ch.SetAckWait(50 * time.Millisecond)

	err = ch.Push(Payload{NoteID: "1", MarkdownBody: "x"})
	if !errors.Is(err, ErrAckTimeout) {
		t.Fatalf("silent companion: got %v, want ErrAckTimeout", err)
	}
	if !ch.Connected() {
		t.Fatal("ack timeout must not tear down the connection")
	}
}

func TestPushReconnectsOnceAfterCompanionRestart(t *testing.T) {
	t.Parallel()

	path := sockPath(t)
	first := newFakeCompanion(t, path)

	ch := New(path)
	defer ch.Close()

	if err := ch.Push(Payload{NoteID: "1", MarkdownBody: "a"}); err != nil {
		t.Fatalf("first push: %v", err)
	}
	<-first.frames

	// Companion goes away and comes back on the same socket.
	first.shutdown()
	time.Sleep(20 * time.Millisecond)
	second := newFakeCompanion(t, path)

	if err := ch.Push(Payload{NoteID: "2", MarkdownBody: "b"}); err != nil {
		t.Fatalf("push after restart: %v", err)
	}
	select {
	case frame := <-second.frames:
		if frame.NoteID != "2" {
			t.Fatalf("frame after reconnect: %+v", frame)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("restarted companion never received the frame")
	}
}

func TestPushFailsWithoutRetryStormWhenCompanionStaysDown(t *testing.T) {
	t.Parallel()

	path := sockPath(t)
	companion := newFakeCompanion(t, path)

	ch := New(path)
	defer ch.Close()

	if err := ch.Push(Payload{NoteID: "1"}); err != nil {
		t.Fatalf("first push: %v", err)
	}
	<-companion.frames

	companion.shutdown()
	time.Sleep(20 * time.Millisecond)

	start := time.Now()
	err := ch.Push(Payload{NoteID: "2"})
	if !errors.Is(err, ErrPreviewUnavailable) {
		t.Fatalf("companion down: got %v, want ErrPreviewUnavailable", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("push against dead companion took %v, looks like a retry loop", elapsed)
	}
}
