package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/onotes/pkg/adapters/fs"
	"github.com/aretw0/onotes/pkg/core"
)

func newRepo(t *testing.T, cfg fs.Config) *fs.Repository {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = t.TempDir()
	}
	repo := fs.NewRepository(cfg)
	require.NoError(t, repo.Initialize(context.Background()))
	return repo
}

func TestRepository_GetPut(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, fs.Config{})

	_, err := repo.Get(ctx, core.StorageKey)
	assert.ErrorIs(t, err, core.ErrKeyNotFound)

	require.NoError(t, repo.Put(ctx, core.StorageKey, []byte(`{"notes":[]}`)))
	got, err := repo.Get(ctx, core.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, `{"notes":[]}`, string(got))

	assert.FileExists(t, filepath.Join(repo.Path, "onotes.data.json"))

	state := repo.State().(fs.RepositoryState)
	assert.NotNil(t, state.LastWrite)
	assert.Equal(t, ".json", state.Extension)
}

func TestRepository_Initialize(t *testing.T) {
	t.Run("Creates Missing Directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "data")
		repo := fs.NewRepository(fs.Config{Path: path})
		require.NoError(t, repo.Initialize(context.Background()))
		assert.DirExists(t, path)
	})

	t.Run("Must Exist", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "absent")
		repo := fs.NewRepository(fs.Config{Path: path, MustExist: true})
		assert.Error(t, repo.Initialize(context.Background()))
	})
}

func TestRepository_ReadOnly(t *testing.T) {
	repo := newRepo(t, fs.Config{ReadOnly: true})
	err := repo.Put(context.Background(), core.StorageKey, []byte("x"))
	assert.ErrorIs(t, err, core.ErrReadOnly)
}

func TestRepository_WatchExternalChange(t *testing.T) {
	repo := newRepo(t, fs.Config{Extension: ".yaml", Debounce: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := repo.Watch(ctx, core.StorageKey)
	require.NoError(t, err)

	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(repo.Path, "other.yaml"), []byte("a: 1"), 0644))
	select {
	case e := <-events:
		t.Fatalf("unexpected event %s", e)
	case <-time.After(100 * time.Millisecond):
	}

	// Several writes in a burst collapse into a single reload.
	target := repo.Filename(core.StorageKey)
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte("notes: []"), 0644))
	}

	select {
	case e := <-events:
		assert.Equal(t, core.EventReload, e.Type)
		assert.Equal(t, core.StorageKey, e.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload event")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, open := <-events:
			return !open
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, repo.State().(fs.RepositoryState).WatcherActive)
}

func TestStore_FollowsExternalEdits(t *testing.T) {
	repo := newRepo(t, fs.Config{Debounce: 10 * time.Millisecond})
	store := core.NewStore(repo)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, store.Load(ctx))
	_, err := store.AddNote(ctx, core.NoteInput{Title: "local"})
	require.NoError(t, err)
	require.NoError(t, store.Follow(ctx))

	doc := `{"notes":[{"id":"ext","title":"from another process"}],"reminders":[],"customOrder":["ext"]}`
	require.NoError(t, os.WriteFile(repo.Filename(core.StorageKey), []byte(doc), 0644))

	require.Eventually(t, func() bool {
		n, ok := store.Note("ext")
		return ok && n.Title == "from another process"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, store.Snapshot().Notes, 1)
}
