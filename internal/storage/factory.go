package storage

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/nixlim/cc-view/internal/config"
	"github.com/nixlim/cc-view/internal/state"
)

// NewStore creates the session store for the given storage config. The second
// return value reports whether persistence is active: a missing db_path or a
// failed SQLite open both fall back to the in-memory store.
func NewStore(cfg config.StorageConfig) (state.Store, bool, error) {
	if cfg.DBPath == "" {
		return state.NewMemoryStore(), false, nil
	}

	dbPath := expandTilde(cfg.DBPath)

	store, err := NewSQLiteStore(dbPath, cfg.RetentionDays)
	if err != nil {
		log.Printf("WARNING: SQLite storage unavailable (%v), falling back to in-memory store", err)
		return state.NewMemoryStore(), false, nil
	}

	return store, true, nil
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
