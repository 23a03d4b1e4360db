// Package core holds the onotes domain: notes, reminders, the persisted
// snapshot and the Store that owns it.
package core

import (
	"fmt"
	"slices"
)

// Defaults applied when normalising notes and reminders.
const (
	DefaultNoteTitle     = "Untitled"
	DefaultFolder        = "General"
	DefaultReminderTitle = "Reminder"
)

// Size is the display size of a note card.
type Size string

const (
	SizeSmall  Size = "s"
	SizeMedium Size = "m"
	SizeLarge  Size = "l"
)

var sizes = []Size{SizeSmall, SizeMedium, SizeLarge}

// Valid reports whether s is one of the known sizes.
func (s Size) Valid() bool {
	return slices.Contains(sizes, s)
}

// Step returns the next size up (grow) or down, clamped to the known range.
func (s Size) Step(grow bool) Size {
	idx := slices.Index(sizes, s)
	if idx < 0 {
		idx = slices.Index(sizes, SizeMedium)
	}
	if grow {
		idx = min(idx+1, len(sizes)-1)
	} else {
		idx = max(idx-1, 0)
	}
	return sizes[idx]
}

// Todo is a checklist item inside a note.
type Todo struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Reminder is a single future-dated trigger.
// Reminders are immutable once created: changing the instant means deleting
// the reminder and creating a new one with a fresh ID.
type Reminder struct {
	ID         string  `json:"id"`
	When       Instant `json:"timestamp"`
	Title      string  `json:"title,omitempty"`
	Body       string  `json:"body,omitempty"`
	TargetDate Instant `json:"targetDate,omitzero"`

	// NoteID is derived from the owning note and never persisted.
	// Empty for standalone reminders.
	NoteID string `json:"-"`
}

// Standalone reports whether the reminder lives outside any note.
func (r Reminder) Standalone() bool {
	return r.NoteID == ""
}

// Note is the central entity of the domain.
type Note struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Reminders []Reminder `json:"reminders"`
	Todos     []Todo     `json:"todos"`
	CreatedAt Instant    `json:"createdAt"`
	Folder    string     `json:"folder"`
	Size      Size       `json:"size"`
}

// Clone returns a deep copy of the note.
func (n Note) Clone() Note {
	n.Reminders = slices.Clone(n.Reminders)
	n.Todos = slices.Clone(n.Todos)
	for i := range n.Reminders {
		n.Reminders[i].NoteID = n.ID
	}
	return n
}

// Snapshot is the full state of the Store at one point in time.
type Snapshot struct {
	Notes     []Note
	Reminders []Reminder
	Order     []string
}

// Clone returns a deep copy so readers can never mutate Store state.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Notes:     make([]Note, len(s.Notes)),
		Reminders: slices.Clone(s.Reminders),
		Order:     slices.Clone(s.Order),
	}
	for i, n := range s.Notes {
		out.Notes[i] = n.Clone()
	}
	return out
}

// NoteIDs returns the ids of all notes in storage order.
func (s Snapshot) NoteIDs() []string {
	ids := make([]string, 0, len(s.Notes))
	for _, n := range s.Notes {
		ids = append(ids, n.ID)
	}
	return ids
}

// EventType represents the type of change in the store.
type EventType string

const (
	EventHydrate EventType = "HYDRATE"
	EventCreate  EventType = "CREATE"
	EventModify  EventType = "MODIFY"
	EventDelete  EventType = "DELETE"
	EventOrder   EventType = "ORDER"
	EventReload  EventType = "RELOAD"
)

// EventKind names the entity an event refers to.
type EventKind string

const (
	KindStore    EventKind = "store"
	KindNote     EventKind = "note"
	KindReminder EventKind = "reminder"
	KindOrder    EventKind = "order"
)

// Event represents a change in the store.
type Event struct {
	Type      EventType
	Kind      EventKind
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements lifecycle.Event.
func (e Event) String() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s", e.Type, e.Kind)
	}
	return fmt.Sprintf("%s %s %s", e.Type, e.Kind, e.ID)
}
