package core

import (
	"sort"
	"strings"
)

// Query selects notes by title substring and category.
// The zero Query matches every note.
type Query struct {
	// Text is matched case-insensitively against the title.
	Text string `json:"q,omitempty"`
	// Category must equal the note's category exactly.
	Category string `json:"category,omitempty"`
}

// Matches reports whether n satisfies both predicates.
func (q Query) Matches(n Note) bool {
	if q.Category != "" && n.Category != q.Category {
		return false
	}
	if q.Text == "" {
		return true
	}
	return strings.Contains(strings.ToLower(n.Title), strings.ToLower(q.Text))
}

// Search returns the notes matching q in their input order.
// The input slice is never modified.
func Search(notes []Note, q Query) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if q.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}

// SortNewestFirst orders notes by CreatedAt descending, ties broken by ID.
// It sorts in place and returns the slice for convenience.
func SortNewestFirst(notes []Note) []Note {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].ID < notes[j].ID
		}
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes
}
