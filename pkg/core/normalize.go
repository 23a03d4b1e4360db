package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.NewString()
}

// normalizer fills in the defaults a note needs before it is stored.
type normalizer struct {
	now   func() time.Time
	newID func() string
}

// note applies defaults to n and returns a copy that shares no slices with it.
// Reminder instants are left untouched: invalid ones are kept as data and
// skipped by the scheduler.
func (z normalizer) note(n Note) Note {
	n = n.Clone()
	if n.ID == "" {
		n.ID = z.newID()
	}
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		n.Title = DefaultNoteTitle
	}
	n.Folder = strings.TrimSpace(n.Folder)
	if n.Folder == "" {
		n.Folder = DefaultFolder
	}
	if !n.Size.Valid() {
		n.Size = SizeMedium
	}
	if !n.CreatedAt.Valid() {
		n.CreatedAt = At(z.now())
	}
	for i := range n.Todos {
		if n.Todos[i].ID == "" {
			n.Todos[i].ID = z.newID()
		}
	}
	for i := range n.Reminders {
		if n.Reminders[i].ID == "" {
			n.Reminders[i].ID = z.newID()
		}
		n.Reminders[i].NoteID = n.ID
	}
	return n
}

// loaded applies defaults to a note read from storage. Unlike note, it never
// invents reminder ids: a reminder without one would get a different id on
// every load and be delivered again.
func (z normalizer) loaded(n Note) Note {
	ids := make([]bool, len(n.Reminders))
	for i, r := range n.Reminders {
		ids[i] = r.ID != ""
	}
	out := z.note(n)
	for i := range out.Reminders {
		if !ids[i] {
			out.Reminders[i].ID = ""
		}
	}
	return out
}

// reminder applies defaults to a standalone reminder.
func (z normalizer) reminder(r Reminder) Reminder {
	if r.ID == "" {
		r.ID = z.newID()
	}
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		r.Title = DefaultReminderTitle
	}
	r.Body = strings.TrimSpace(r.Body)
	r.NoteID = ""
	return r
}
