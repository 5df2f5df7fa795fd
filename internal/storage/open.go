package storage

import (
	"fmt"

	"supaops/internal/config"
)

// Open constructs the store described by cfg. A nil or empty config yields
// ErrDisabled so callers can treat persistence as optional.
func Open(cfg *config.StorageConfig) (Store, error) {
	if cfg == nil || cfg.Driver == "" {
		return nil, ErrDisabled
	}
	switch cfg.Driver {
	case "file":
		return openFileStore(cfg.Path)
	case "sqlite":
		return openSQLiteStore(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
