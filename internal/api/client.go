// Package api is the HTTP gateway to the note backend. It owns the wire
// formats and maps transport failures to ErrBackendUnavailable so the
// rest of the program can degrade without inspecting status codes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/quellen/nt/internal/tree"
)

// ErrBackendUnavailable means the backend could not be reached or
// answered with a server error. Callers keep the last good tree and
// surface a status-line warning.
var ErrBackendUnavailable = errors.New("note backend unavailable")

// ErrNotFound is returned for 404 answers, typically a note deleted by
// another client.
var ErrNotFound = errors.New("note not found")

// Client talks to the backend. Identical concurrent content fetches are
// collapsed through the flight group so cursor scrubbing does not fan
// out into duplicate GETs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	flight     singleflight.Group
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// BaseURL returns the backend root, used to derive asset references for
// the preview companion.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	return c.doRequestWithBody(ctx, method, path, params, nil)
}

func (c *Client) doRequestWithBody(ctx context.Context, method, path string, params url.Values, body interface{}) ([]byte, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, err
	}

	if params != nil {
		u.RawQuery = params.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %v", method, path, ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%s %s: %w: status %d", method, path, ErrBackendUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s %s: status %d - %s", method, path, resp.StatusCode, string(msg))
	}

	return io.ReadAll(resp.Body)
}

// FetchTree retrieves the full hierarchy in one round trip.
func (c *Client) FetchTree(ctx context.Context) ([]TreeNote, error) {
	body, err := c.doRequest(ctx, "GET", "/notes/tree", nil)
	if err != nil {
		return nil, err
	}

	var result []TreeNote
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	return result, nil
}

// FetchNotes retrieves every note flat, without hierarchy. Used by the
// fuzzy finder where nesting does not matter.
func (c *Client) FetchNotes(ctx context.Context) ([]Note, error) {
	return c.fetchNoteList(ctx, "/notes/flat", nil)
}

// FetchChildren retrieves the subtree rooted at id, used when expanding
// a node whose children were never loaded.
func (c *Client) FetchChildren(ctx context.Context, id tree.NodeID) ([]TreeNote, error) {
	body, err := c.doRequest(ctx, "GET", "/notes/tree/"+url.PathEscape(string(id)), nil)
	if err != nil {
		return nil, err
	}

	var result TreeNote
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode subtree: %w", err)
	}
	return result.Children, nil
}

// FetchContent retrieves one note's body. Concurrent calls for the same
// id share a single request.
func (c *Client) FetchContent(ctx context.Context, id tree.NodeID) (*Note, error) {
	v, err, _ := c.flight.Do(string(id), func() (interface{}, error) {
		body, err := c.doRequest(ctx, "GET", "/notes/flat/"+url.PathEscape(string(id)), nil)
		if err != nil {
			return nil, err
		}
		var note Note
		if err := json.Unmarshal(body, &note); err != nil {
			return nil, fmt.Errorf("decode note: %w", err)
		}
		return &note, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Note), nil
}

// CreateNote makes a new flat note. It is never retried by callers: a
// timeout leaves the server state unknown and a retry could duplicate
// the note.
func (c *Client) CreateNote(ctx context.Context, title, content string) (*Note, error) {
	body, err := c.doRequestWithBody(ctx, "POST", "/notes/flat", nil, createNoteRequest{
		Title:   title,
		Content: content,
	})
	if err != nil {
		return nil, err
	}

	var note Note
	if err := json.Unmarshal(body, &note); err != nil {
		return nil, fmt.Errorf("decode created note: %w", err)
	}
	return &note, nil
}

// UpdateNote replaces a note's title and/or content. Nil fields are
// left untouched on the server.
func (c *Client) UpdateNote(ctx context.Context, id tree.NodeID, title, content *string) (*Note, error) {
	body, err := c.doRequestWithBody(ctx, "PUT", "/notes/flat/"+url.PathEscape(string(id)), nil, updateNoteRequest{
		Title:   title,
		Content: content,
	})
	if err != nil {
		return nil, err
	}

	var note Note
	if err := json.Unmarshal(body, &note); err != nil {
		return nil, fmt.Errorf("decode updated note: %w", err)
	}
	return &note, nil
}

// DeleteNote removes a note and its descendants.
func (c *Client) DeleteNote(ctx context.Context, id tree.NodeID) error {
	_, err := c.doRequest(ctx, "DELETE", "/notes/flat/"+url.PathEscape(string(id)), nil)
	return err
}

// AttachToParent makes child a child of parent.
func (c *Client) AttachToParent(ctx context.Context, child, parent tree.NodeID) error {
	_, err := c.doRequestWithBody(ctx, "POST", "/notes/hierarchy/attach", nil, attachRequest{
		ChildNoteID:  string(child),
		ParentNoteID: string(parent),
	})
	return err
}

// DetachFromParent promotes a note to the root level.
func (c *Client) DetachFromParent(ctx context.Context, id tree.NodeID) error {
	_, err := c.doRequest(ctx, "DELETE", "/notes/hierarchy/detach/"+url.PathEscape(string(id)), nil)
	return err
}

// FetchBacklinks lists the notes that link to id.
func (c *Client) FetchBacklinks(ctx context.Context, id tree.NodeID) ([]Note, error) {
	return c.fetchNoteList(ctx, "/notes/flat/"+url.PathEscape(string(id))+"/backlinks", nil)
}

// FetchForwardLinks lists the notes that id links to.
func (c *Client) FetchForwardLinks(ctx context.Context, id tree.NodeID) ([]Note, error) {
	return c.fetchNoteList(ctx, "/notes/flat/"+url.PathEscape(string(id))+"/forward-links", nil)
}

// SearchNotes runs a full-text search on the backend.
func (c *Client) SearchNotes(ctx context.Context, query string) ([]Note, error) {
	params := url.Values{}
	params.Set("q", query)
	return c.fetchNoteList(ctx, "/notes/search/fts", params)
}

func (c *Client) fetchNoteList(ctx context.Context, path string, params url.Values) ([]Note, error) {
	body, err := c.doRequest(ctx, "GET", path, params)
	if err != nil {
		return nil, err
	}

	var result []Note
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode note list: %w", err)
	}
	return result, nil
}

// ToNoteData converts a backend subtree into the form the tree model
// loads.
func ToNoteData(notes []TreeNote) []tree.NoteData {
	out := make([]tree.NoteData, 0, len(notes))
	for _, n := range notes {
		data := tree.NoteData{
			ID:            tree.NodeID(n.ID),
			Title:         n.Title,
			Children:      ToNoteData(n.Children),
			ChildrenKnown: true,
		}
		if n.Content != nil {
			data.Content = *n.Content
			data.HasContent = true
		}
		out = append(out, data)
	}
	return out
}
