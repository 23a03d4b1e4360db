package platform

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. ONOTES_DATA_DIR.
const EnvPrefix = "ONOTES_"

// Config is the user-facing configuration, merged from defaults, an
// optional YAML file and ONOTES_* environment variables (in that order).
type Config struct {
	DataDir     string `koanf:"data_dir"`
	Adapter     string `koanf:"adapter"`
	Format      string `koanf:"format"`
	EventBuffer int    `koanf:"event_buffer"`
	Watch       bool   `koanf:"watch"`
	DebounceMS  int    `koanf:"debounce_ms"`
	LogLevel    string `koanf:"log_level"`
	DevSafety   bool   `koanf:"dev_safety"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"data_dir":     "~/.onotes",
		"adapter":      "fs",
		"format":       "json",
		"event_buffer": 100,
		"watch":        true,
		"debounce_ms":  50,
		"log_level":    "info",
		"dev_safety":   true,
	}
}

// LoadConfig reads configuration. A missing configPath (or a missing file)
// falls back to defaults; a .env in the working directory is loaded into
// the environment first when present.
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(DefaultConfig(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = ExpandHome(configPath)
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch c.Adapter {
	case "fs", "diskv", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown adapter: %s (supported: fs, diskv, sqlite, memory)", c.Adapter)
	}
	switch c.Format {
	case "json", "yaml", "yml":
	default:
		return fmt.Errorf("unknown format: %s (supported: json, yaml)", c.Format)
	}
	if c.EventBuffer < 0 {
		return fmt.Errorf("event_buffer must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Options translates the configuration into factory options.
func (c *Config) Options() []Option {
	opts := []Option{
		WithAdapter(c.Adapter),
		WithFormat(c.Format),
		WithEventBuffer(c.EventBuffer),
		WithDevSafety(c.DevSafety),
	}
	if c.DebounceMS > 0 {
		opts = append(opts, WithDebounce(time.Duration(c.DebounceMS)*time.Millisecond))
	}
	return opts
}
