package reminders_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/onotes/pkg/core"
	"github.com/aretw0/onotes/pkg/reminders"
)

func TestExtract(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	snap := core.Snapshot{
		Notes: []core.Note{
			{ID: "n1", Title: "groceries", Reminders: []core.Reminder{
				{ID: "r1", When: core.At(t0)},
				{ID: "r2", Title: "own title", When: core.At(t0.Add(time.Hour))},
				{ID: "", When: core.At(t0)},
			}},
			{ID: "n2", Reminders: []core.Reminder{
				{ID: "r3", When: core.Instant{}},
				{ID: "r1", When: core.At(t0.Add(time.Minute))},
				{ID: "r4", When: core.At(t0)},
			}},
		},
		Reminders: []core.Reminder{
			{ID: "s1", When: core.At(t0)},
			{ID: "r2", When: core.At(t0)},
		},
	}

	got := reminders.Extract(snap, logger)
	require.Len(t, got, 4)

	assert.Equal(t, "r1", got[0].ID)
	assert.True(t, got[0].When.Equal(t0))
	assert.Equal(t, "groceries", got[0].Title)
	assert.Equal(t, "n1", got[0].NoteID)
	assert.Equal(t, "own title", got[1].Title)
	assert.Equal(t, reminders.UntitledNote, got[2].Title)
	assert.Equal(t, "n2", got[2].NoteID)
	assert.Equal(t, "s1", got[3].ID)
	assert.Equal(t, core.DefaultReminderTitle, got[3].Title)
	assert.Empty(t, got[3].NoteID)

	out := buf.String()
	assert.Contains(t, out, "malformed reminder")
	assert.Contains(t, out, "duplicate reminder id")
}

func TestExtract_Deterministic(t *testing.T) {
	snap := core.Snapshot{Reminders: []core.Reminder{at("a", 0), at("b", time.Hour)}}
	assert.Equal(t, reminders.Extract(snap, nil), reminders.Extract(snap, nil))
}
