//go:build !sqlite

package storage

import (
	"fmt"

	"supaops/internal/config"
)

func openSQLiteStore(_ *config.StorageConfig) (Store, error) {
	return nil, fmt.Errorf("sqlite storage: not compiled in (build with -tags sqlite)")
}
