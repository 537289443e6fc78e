package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// wireNote accepts the unified schema plus the two legacy shapes:
// browser-local records ("_id", "createdAt") and server records ("id", "created").
type wireNote struct {
	ID        string     `json:"id"`
	LegacyID  string     `json:"_id"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"createdAt"`
	Created   *time.Time `json:"created"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

func (w wireNote) note() Note {
	n := Note{
		ID:       w.ID,
		Title:    w.Title,
		Category: w.Category,
		Content:  w.Content,
	}
	if n.ID == "" {
		n.ID = w.LegacyID
	}

	switch {
	case w.CreatedAt != nil:
		n.CreatedAt = w.CreatedAt.UTC()
	case w.Created != nil:
		n.CreatedAt = w.Created.UTC()
	}
	if w.UpdatedAt != nil {
		n.UpdatedAt = w.UpdatedAt.UTC()
	}
	if n.UpdatedAt.Before(n.CreatedAt) {
		n.UpdatedAt = n.CreatedAt
	}
	return n
}

// DecodeNotes parses a persisted JSON array of notes.
// Empty input and a JSON null both decode to an empty collection.
// Any malformed record (bad JSON, missing or duplicate id) rejects the whole
// blob with ErrStorageCorrupt; nothing is partially trusted.
func DecodeNotes(data []byte) ([]Note, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []Note{}, nil
	}

	var wire []wireNote
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageCorrupt, err)
	}

	return fromWire(wire)
}

func fromWire(wire []wireNote) ([]Note, error) {
	notes := make([]Note, 0, len(wire))
	seen := make(map[string]bool, len(wire))
	for i, w := range wire {
		n := w.note()
		if n.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrStorageCorrupt, i)
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrStorageCorrupt, n.ID)
		}
		seen[n.ID] = true
		notes = append(notes, n)
	}
	return notes, nil
}

// EncodeNotes produces the persisted form: an indented JSON array in the
// unified schema. A nil collection encodes as [].
func EncodeNotes(notes []Note) ([]byte, error) {
	if notes == nil {
		notes = []Note{}
	}
	return json.MarshalIndent(notes, "", "  ")
}
