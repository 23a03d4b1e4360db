package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/onotes/pkg/core"
	"github.com/aretw0/onotes/pkg/notify"
	"github.com/aretw0/onotes/pkg/reminders"
)

func execute(t *testing.T, args ...string) {
	t.Helper()
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
}

func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ONOTES_DATA_DIR", dir)
	t.Setenv("ONOTES_LOG_LEVEL", "error")
	return dir
}

func TestCLI_NotesAndReminders(t *testing.T) {
	setupCLI(t)
	ctx := context.Background()

	execute(t, "note", "add", "Groceries", "--folder", "Home", "--todo", "milk", "--todo", "eggs")
	execute(t, "reminder", "add", "Call mom", "--at", time.Now().Add(time.Hour).Format(time.RFC3339))

	store, err := openStore(ctx)
	require.NoError(t, err)
	snap := store.Snapshot()
	require.Len(t, snap.Notes, 1)
	require.Len(t, snap.Reminders, 1)
	assert.Equal(t, "Home", snap.Notes[0].Folder)
	assert.Len(t, snap.Notes[0].Todos, 2)
	assert.Equal(t, "Call mom", snap.Reminders[0].Title)

	noteID := snap.Notes[0].ID
	execute(t, "note", "resize", noteID, "--grow")

	oldID := snap.Reminders[0].ID
	execute(t, "reminder", "edit", oldID, "--at", time.Now().Add(2*time.Hour).Format(time.RFC3339))
	store, err = openStore(ctx)
	require.NoError(t, err)
	_, ok := store.Reminder(oldID)
	assert.False(t, ok, "a retimed reminder is stored under a new id")
	snap = store.Snapshot()
	require.Len(t, snap.Reminders, 1)
	assert.Equal(t, "Call mom", snap.Reminders[0].Title)

	execute(t, "reminder", "rm", snap.Reminders[0].ID)

	store, err = openStore(ctx)
	require.NoError(t, err)
	n, ok := store.Note(noteID)
	require.True(t, ok)
	assert.Equal(t, core.SizeLarge, n.Size)
	assert.Empty(t, store.Snapshot().Reminders)
}

func TestPlannedTimes(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	t.Cleanup(func() {
		remindAt, remindTarget, remindCustom = "", "", ""
		remindOffsets = nil
	})

	remindAt, remindTarget = "", "2030-01-10T12:00:00Z"
	remindOffsets = []string{"week", "day", "event"}
	var in core.ReminderInput
	times, err := plannedTimes(&in, now)
	require.NoError(t, err)
	require.Len(t, times, 3)
	assert.Equal(t, 3, times[0].Day())
	assert.False(t, in.TargetDate.IsZero())

	remindOffsets = []string{"yearly"}
	_, err = plannedTimes(&in, now)
	assert.Error(t, err)

	remindTarget = ""
	_, err = plannedTimes(&in, now)
	assert.ErrorContains(t, err, "--at or --target")
}

func TestHandleLine(t *testing.T) {
	inbox := notify.NewLog()
	engine := reminders.NewEngine(inbox, reminders.NewVirtualScheduler(time.Now()))
	inbox.Append(notify.Notification{ID: "a-1", ReminderID: "a", Title: "A"})
	inbox.Append(notify.Notification{ID: "b-1", ReminderID: "b", Title: "B"})

	assert.False(t, handleLine("dismiss a-1", inbox, engine))
	assert.Equal(t, 1, inbox.Len())
	assert.False(t, handleLine("clear", inbox, engine))
	assert.Equal(t, 0, inbox.Len())
	assert.False(t, handleLine("", inbox, engine))
	assert.True(t, handleLine("quit", inbox, engine))
}

func TestRunScheduler_QuitsOnInput(t *testing.T) {
	setupCLI(t)
	execute(t, "version")

	done := make(chan error, 1)
	go func() {
		done <- runScheduler(context.Background(), strings.NewReader("list\nquit\n"))
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop on quit")
	}
}
