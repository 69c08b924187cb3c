package server

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formplugin/internal/config"
	"github.com/goliatone/go-formplugin/pkg/storage"
)

// OpenStore builds the configured init-data store. The returned close
// function releases it.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, func() error, error) {
	switch cfg.Driver {
	case "", config.StorageMemory:
		return storage.NewMemory(), func() error { return nil }, nil
	case config.StorageSQLite:
		store, err := storage.OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("server: open store: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("server: unknown storage driver %q", cfg.Driver)
	}
}
