package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/onotes"
	"github.com/aretw0/onotes/pkg/core"
)

// defaultConfigFile is read when no onotes.yaml is found; it may be absent.
const defaultConfigFile = "~/.onotes/config.yaml"

var (
	verbose    bool
	configPath string
	dataDir    string
	adapter    string
	format     string

	cfg *onotes.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "onotes",
	Short: "Notes with reminders that fire exactly once",
	Long: `onotes keeps notes, todos and reminders in a single local document
and delivers each reminder once, even while the document is edited.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			if wd, err := os.Getwd(); err == nil {
				path, _ = onotes.FindConfig(wd)
			}
		}
		if path == "" {
			path = defaultConfigFile
		}

		loaded, err := onotes.LoadConfig(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("data-dir") {
			loaded.DataDir = dataDir
		}
		if cmd.Flags().Changed("adapter") {
			loaded.Adapter = adapter
		}
		if cmd.Flags().Changed("format") {
			loaded.Format = format
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		level, _ := cfg.Level()
		if verbose {
			level = slog.LevelDebug
		}
		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
		logger.Debug("configuration loaded", "file", path, "data_dir", cfg.DataDir, "adapter", cfg.Adapter)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fatal("onotes", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: nearest onotes.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "", "Storage adapter: fs, diskv, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&format, "format", "", "Document format: json or yaml")
}

// newStore builds the configured store without loading it.
func newStore() (*core.Store, error) {
	opts := append(cfg.Options(), onotes.WithLogger(slog.Default()))
	return onotes.New(cfg.DataDir, opts...)
}

// openStore builds and loads the store. Commands that write refuse to
// continue on a failed load so a damaged document is not overwritten.
func openStore(ctx context.Context) (*core.Store, error) {
	store, err := newStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
