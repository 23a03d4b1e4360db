// Package reminders turns stored reminders into exactly-once notifications.
//
// Extract flattens a store snapshot into schedulable reminders, the Engine
// reconciles them against its TimerTable, and the Runtime drives the Engine
// from store events on a single goroutine.
package reminders

import (
	"log/slog"
	"time"

	"github.com/aretw0/onotes/pkg/core"
)

// UntitledNote is used when neither the reminder nor its note has a title.
const UntitledNote = "Untitled note"

// Pending is a reminder ready to be scheduled.
type Pending struct {
	ID     string
	When   time.Time
	Title  string
	NoteID string
}

// Extract flattens the reminders of snap: embedded reminders first, in note
// then reminder order, followed by standalone reminders. Reminders without an
// id or a valid instant are skipped; for duplicate ids the first occurrence
// wins. Both anomalies are logged when logger is not nil.
func Extract(snap core.Snapshot, logger *slog.Logger) []Pending {
	var out []Pending
	seen := make(map[string]bool)

	add := func(r core.Reminder, noteID, title string) {
		if r.ID == "" || !r.When.Valid() {
			if logger != nil {
				logger.Warn("malformed reminder", "id", r.ID, "note", noteID, "when", r.When.String())
			}
			return
		}
		if seen[r.ID] {
			if logger != nil {
				logger.Warn("duplicate reminder id", "id", r.ID, "note", noteID)
			}
			return
		}
		seen[r.ID] = true
		out = append(out, Pending{ID: r.ID, When: r.When.Time(), Title: title, NoteID: noteID})
	}

	for _, n := range snap.Notes {
		for _, r := range n.Reminders {
			title := firstNonEmpty(r.Title, n.Title, UntitledNote)
			add(r, n.ID, title)
		}
	}
	for _, r := range snap.Reminders {
		add(r, "", firstNonEmpty(r.Title, core.DefaultReminderTitle))
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
