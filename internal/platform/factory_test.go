package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/onotes/internal/platform"
	"github.com/aretw0/onotes/pkg/adapters/memory"
	"github.com/aretw0/onotes/pkg/core"
)

func TestNew_Adapters(t *testing.T) {
	for _, adapter := range []string{"fs", "diskv", "sqlite", "memory"} {
		t.Run(adapter, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()

			store, err := platform.New(dir, platform.WithAdapter(adapter))
			require.NoError(t, err)
			require.NoError(t, store.Load(ctx))

			n, err := store.AddNote(ctx, core.NoteInput{Title: adapter})
			require.NoError(t, err)
			if adapter == "memory" {
				return
			}

			again, err := platform.New(dir, platform.WithAdapter(adapter))
			require.NoError(t, err)
			require.NoError(t, again.Load(ctx))
			got, ok := again.Note(n.ID)
			require.True(t, ok)
			assert.Equal(t, adapter, got.Title)
		})
	}
}

func TestNew_YAMLFormat(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := platform.New(dir, platform.WithFormat("yaml"))
	require.NoError(t, err)
	require.NoError(t, store.Load(ctx))
	_, err = store.AddNote(ctx, core.NoteInput{Title: "yaml note"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, core.StorageKey+".yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: yaml note")
}

func TestNew_InjectedRepository(t *testing.T) {
	repo := memory.NewRepository()
	store, err := platform.New("ignored", platform.WithRepository(repo), platform.WithAdapter("bogus"))
	require.NoError(t, err)
	require.NoError(t, store.Load(context.Background()))
	assert.True(t, store.Hydrated())
}

func TestInit_UnknownAdapter(t *testing.T) {
	_, err := platform.Init(t.TempDir(), platform.WithAdapter("postgres"))
	assert.ErrorContains(t, err, "unknown adapter")

	_, err = platform.New(t.TempDir(), platform.WithFormat("toml"))
	assert.Error(t, err)
}

func TestInit_ReadOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := platform.Init(dir, platform.WithReadOnly(true))
	require.NoError(t, err)
	err = repo.Put(ctx, core.StorageKey, []byte("{}"))
	assert.ErrorIs(t, err, core.ErrReadOnly)
}
