package platform

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aretw0/onotes/pkg/adapters/diskv"
	"github.com/aretw0/onotes/pkg/adapters/fs"
	"github.com/aretw0/onotes/pkg/adapters/memory"
	"github.com/aretw0/onotes/pkg/adapters/sqlite"
	"github.com/aretw0/onotes/pkg/core"
)

// DatabaseFile is the sqlite adapter's file name inside the data directory.
const DatabaseFile = "onotes.db"

// Init prepares the storage adapter selected by opts and returns it.
// The 'uri' argument is the data directory; adapters derive their own
// layout below it.
func Init(uri string, opts ...Option) (core.Repository, error) {
	o := buildOptions(opts)

	if o.repository != nil {
		return o.repository, nil
	}

	var repo core.Repository
	switch o.adapter {
	case "fs", "":
		repo = initFS(uri, o)
	case "diskv":
		repo = diskv.NewRepository(diskv.Config{Path: resolvePath(uri, o)})
	case "sqlite":
		db, err := sqlite.Open(filepath.Join(resolvePath(uri, o), DatabaseFile))
		if err != nil {
			return nil, err
		}
		repo = db
	case "memory":
		repo = memory.NewRepository()
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// resolvePath applies the dev sandbox to uri.
func resolvePath(uri string, o *options) string {
	tempDir, _ := o.config["temp_dir"].(bool)
	readOnly, _ := o.config["read_only"].(bool)
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	// Read-only access and an explicit opt-out both bypass the sandbox.
	bypass := readOnly || !devSafety
	useTemp := tempDir || (IsDevRun() && !bypass)
	resolved := ResolveDataPath(uri, useTemp)

	if o.logger != nil && IsDevRun() {
		switch {
		case readOnly:
			o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolved)
		case bypass:
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
		default:
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "original_path", uri, "path", resolved)
		}
	}
	return resolved
}

func initFS(uri string, o *options) *fs.Repository {
	mustExist, _ := o.config["must_exist"].(bool)
	readOnly, _ := o.config["read_only"].(bool)
	debounce, _ := o.config["debounce"].(time.Duration)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))

	ext := ".json"
	if o.format == "yaml" || o.format == "yml" {
		ext = ".yaml"
	}

	return fs.NewRepository(fs.Config{
		Path:         resolvePath(uri, o),
		Extension:    ext,
		MustExist:    mustExist,
		ReadOnly:     readOnly,
		Debounce:     debounce,
		Logger:       o.logger,
		ErrorHandler: errorHandler,
	})
}
