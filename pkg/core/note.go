package core

import (
	"strings"
	"time"
)

// Note is the central entity of the domain.
// It is a short rich-text entry tagged with a category.
// Content is opaque markup (usually HTML produced by an editor widget).
type Note struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Category  string    `json:"category" yaml:"category"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// NoteInput carries the mutable fields of a note for Create and Update.
type NoteInput struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

// NotePatch is a partial update. Nil fields are left untouched.
// Only the fields listed here are mutable; identity and timestamps are not.
type NotePatch struct {
	Title    *string `json:"title,omitempty"`
	Category *string `json:"category,omitempty"`
	Content  *string `json:"content,omitempty"`
}

// Apply returns the input obtained by merging p over n.
func (p NotePatch) Apply(n Note) NoteInput {
	in := NoteInput{Title: n.Title, Category: n.Category, Content: n.Content}
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Category != nil {
		in.Category = *p.Category
	}
	if p.Content != nil {
		in.Content = *p.Content
	}
	return in
}

// Validate checks the preconditions shared by Create and Update.
func (in NoteInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	return nil
}

// EventType represents the type of change in the store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a single note observed in the store.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return string(e.Type) + " " + e.ID
}

type contextKey string

// ChangeReasonKey is the context key for passing the change reason
// (used as the commit message by versioned stores).
const ChangeReasonKey contextKey = "change_reason"
