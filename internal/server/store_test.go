package server_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formplugin/internal/config"
	"github.com/goliatone/go-formplugin/internal/server"
	"github.com/goliatone/go-formplugin/pkg/storage"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	mem, closeMem, err := server.OpenStore(ctx, config.StorageConfig{Driver: config.StorageMemory})
	require.NoError(t, err)
	assert.IsType(t, &storage.Memory{}, mem)
	assert.NoError(t, closeMem())

	dsn := "file:" + filepath.Join(t.TempDir(), "plugin.db")
	store, closeStore, err := server.OpenStore(ctx, config.StorageConfig{Driver: config.StorageSQLite, DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, store.SetItem(ctx, "k", "v"))
	got, err := store.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	assert.NoError(t, closeStore())

	_, _, err = server.OpenStore(ctx, config.StorageConfig{Driver: "redis"})
	assert.Error(t, err)
}
