package diskv_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/onotes/pkg/adapters/diskv"
	"github.com/aretw0/onotes/pkg/core"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := diskv.NewRepository(diskv.Config{Path: dir})
	require.NoError(t, repo.Initialize(ctx))

	_, err := repo.Get(ctx, core.StorageKey)
	assert.ErrorIs(t, err, core.ErrKeyNotFound)

	require.NoError(t, repo.Put(ctx, core.StorageKey, []byte(`{"notes":[]}`)))
	require.NoError(t, repo.Put(ctx, core.StorageKey, []byte(`{"notes":[],"reminders":[]}`)))

	got, err := repo.Get(ctx, core.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, `{"notes":[],"reminders":[]}`, string(got))
	assert.FileExists(t, filepath.Join(dir, "onotes", "data"))
	assert.Equal(t, []string{core.StorageKey}, repo.Keys(ctx))

	// A fresh instance sees the persisted value.
	again := diskv.NewRepository(diskv.Config{Path: dir})
	got, err = again.Get(ctx, core.StorageKey)
	require.NoError(t, err)
	assert.Contains(t, string(got), "reminders")
}

func TestRepository_BacksStore(t *testing.T) {
	ctx := context.Background()
	repo := diskv.NewRepository(diskv.Config{Path: t.TempDir()})
	require.NoError(t, repo.Initialize(ctx))

	store := core.NewStore(repo)
	require.NoError(t, store.Load(ctx))
	n, err := store.AddNote(ctx, core.NoteInput{Title: "diskv"})
	require.NoError(t, err)

	reloaded := core.NewStore(repo)
	require.NoError(t, reloaded.Load(ctx))
	got, ok := reloaded.Note(n.ID)
	require.True(t, ok)
	assert.Equal(t, "diskv", got.Title)
}
