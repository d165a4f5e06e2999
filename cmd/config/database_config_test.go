package config

import (
	"Marketplace-Cart/internal/utils"
	"Marketplace-Cart/internal/utils/storage"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	utils.LoadConfigFrom(path)
}

func TestConnectStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		loadTestConfig(t, "STORAGE_DRIVER: memory\n")
		kv, err := ConnectStorage(ctx)
		require.NoError(t, err)
		assert.IsType(t, &storage.MemoryStore{}, kv)
	})

	t.Run("sqlite", func(t *testing.T) {
		loadTestConfig(t, "STORAGE_DRIVER: sqlite\nSQLITE_PATH: "+filepath.Join(t.TempDir(), "cart.db")+"\n")
		kv, err := ConnectStorage(ctx)
		require.NoError(t, err)
		require.IsType(t, &storage.SQLiteStore{}, kv)

		require.NoError(t, kv.Set(ctx, "cart_items", "{}"))
		v, found, err := kv.Get(ctx, "cart_items")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "{}", v)
	})

	t.Run("unknown driver", func(t *testing.T) {
		loadTestConfig(t, "STORAGE_DRIVER: floppy\n")
		kv, err := ConnectStorage(ctx)
		assert.Error(t, err)
		assert.Nil(t, kv)
	})
}
