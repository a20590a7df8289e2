package api

import (
	"encoding/json"
	"time"

	"github.com/araddon/dateparse"
)

// Note is a flat note record as the backend returns it.
type Note struct {
	ID         string
	Title      string
	Content    string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

type noteJSON struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
}

// UnmarshalJSON parses timestamps leniently; deployments have shipped
// several formats over time.
func (n *Note) UnmarshalJSON(data []byte) error {
	var raw noteJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.ID = raw.ID
	n.Title = raw.Title
	n.Content = raw.Content
	n.CreatedAt = parseTimestamp(raw.CreatedAt)
	n.ModifiedAt = parseTimestamp(raw.ModifiedAt)
	return nil
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ts, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// TreeNote is a hierarchical note as returned by the tree endpoints.
// Content may be omitted by the backend to bound payload size.
type TreeNote struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Content  *string    `json:"content"`
	Children []TreeNote `json:"children"`
}

type createNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type updateNoteRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type attachRequest struct {
	ChildNoteID  string `json:"child_note_id"`
	ParentNoteID string `json:"parent_note_id"`
}
