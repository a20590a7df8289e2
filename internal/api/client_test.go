package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchTreeDecodesHierarchy(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notes/tree" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"id": "1", "title": "root", "children": [
				{"id": "2", "title": "child", "content": "body", "children": []}
			]}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	notes, err := c.FetchTree(context.Background())
	if err != nil {
		t.Fatalf("FetchTree: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "root" {
		t.Fatalf("tree: %+v", notes)
	}
	if len(notes[0].Children) != 1 || notes[0].Children[0].ID != "2" {
		t.Fatalf("children: %+v", notes[0].Children)
	}

	data := ToNoteData(notes)
	if data[0].HasContent {
		t.Fatal("root content was omitted by the server")
	}
	if !data[0].Children[0].HasContent || data[0].Children[0].Content != "body" {
		t.Fatalf("child content: %+v", data[0].Children[0])
	}
}

func TestFetchContentParsesLenientTimestamps(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": "7",
			"title": "t",
			"content": "c",
			"created_at": "2024-01-02T10:04:05",
			"modified_at": "2024-01-02 10:04:06Z"
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	note, err := c.FetchContent(context.Background(), "7")
	if err != nil {
		t.Fatalf("FetchContent: %v", err)
	}
	if note.CreatedAt.IsZero() || note.ModifiedAt.IsZero() {
		t.Fatalf("timestamps not parsed: %+v", note)
	}
	if note.ModifiedAt.Second() != 6 {
		t.Fatalf("modified_at: %v", note.ModifiedAt)
	}
}

func TestConcurrentContentFetchesAreDeduplicated(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write([]byte(`{"id": "1", "title": "t", "content": "c"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.FetchContent(context.Background(), "1")
		}(i)
	}

	// Give all callers time to pile onto the flight group, then let the
	// single request finish.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("backend hits: got %d, want 1", got)
	}
}

func TestCreateNoteSendsTitleAndContent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/notes/flat" {
			t.Errorf("request: %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Title != "New Note" || req.Content != "" {
			t.Errorf("body: %+v", req)
		}
		w.Write([]byte(`{"id": "9", "title": "New Note", "content": ""}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	note, err := c.CreateNote(context.Background(), "New Note", "")
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if note.ID != "9" {
		t.Fatalf("created id: %q", note.ID)
	}
}

func TestAttachAndDetach(t *testing.T) {
	t.Parallel()

	var gotAttach attachRequest
	var detachPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST" && r.URL.Path == "/notes/hierarchy/attach":
			json.NewDecoder(r.Body).Decode(&gotAttach)
		case r.Method == "DELETE":
			detachPath = r.URL.Path
		default:
			t.Errorf("request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.AttachToParent(context.Background(), "5", "2"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if gotAttach.ChildNoteID != "5" || gotAttach.ParentNoteID != "2" {
		t.Fatalf("attach body: %+v", gotAttach)
	}
	if err := c.DetachFromParent(context.Background(), "5"); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if detachPath != "/notes/hierarchy/detach/5" {
		t.Fatalf("detach path: %q", detachPath)
	}
}

func TestServerErrorMapsToBackendUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchTree(context.Background())
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("500: got %v, want ErrBackendUnavailable", err)
	}
}

func TestUnreachableBackendMapsToBackendUnavailable(t *testing.T) {
	t.Parallel()

	c := NewClient("http://127.0.0.1:1")
	_, err := c.FetchTree(context.Background())
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("refused: got %v, want ErrBackendUnavailable", err)
	}
}

func TestMissingNoteMapsToNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchContent(context.Background(), "gone")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("404: got %v, want ErrNotFound", err)
	}
}

func TestSearchNotesSendsQuery(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "alpha beta" {
			t.Errorf("query: %q", got)
		}
		w.Write([]byte(`[{"id": "1", "title": "alpha"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	notes, err := c.SearchNotes(context.Background(), "alpha beta")
	if err != nil {
		t.Fatalf("SearchNotes: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "alpha" {
		t.Fatalf("results: %+v", notes)
	}
}
