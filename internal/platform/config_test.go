package platform

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "~/.onotes", cfg.DataDir)
	assert.Equal(t, "fs", cfg.Adapter)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 100, cfg.EventBuffer)
	assert.True(t, cfg.Watch)
	assert.True(t, cfg.DevSafety)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onotes.yaml")
	content := "adapter: sqlite\nformat: yaml\ndebounce_ms: 20\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("ONOTES_ADAPTER", "diskv")
	t.Setenv("ONOTES_DATA_DIR", "/srv/notes")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// Environment beats file, file beats defaults.
	assert.Equal(t, "diskv", cfg.Adapter)
	assert.Equal(t, "/srv/notes", cfg.DataDir)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, 20, cfg.DebounceMS)

	o := buildOptions(cfg.Options())
	assert.Equal(t, "diskv", o.adapter)
	assert.Equal(t, "yaml", o.format)
	assert.Equal(t, 20*time.Millisecond, o.config["debounce"])
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("ONOTES_ADAPTER", "postgres")
	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "unknown adapter")
}
