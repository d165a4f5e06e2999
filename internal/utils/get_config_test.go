package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFrom(t *testing.T) {
	t.Cleanup(func() { config = Config{} })

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
APP_PORT: "9090"
CART_NAMESPACE: "marketplace_cart"
STORAGE_DRIVER: "redis"
REDIS_ADDR: "localhost:6380"
REDIS_DB: 3
JWT_SECRET: "s3cret"
`), 0o600))

	LoadConfigFrom(path)

	assert.Equal(t, "9090", GetConfig("APP_PORT"))
	assert.Equal(t, "marketplace_cart", GetConfig("CART_NAMESPACE"))
	assert.Equal(t, "redis", GetConfig("STORAGE_DRIVER"))
	assert.Equal(t, "localhost:6380", GetConfig("REDIS_ADDR"))
	assert.Equal(t, 3, GetRedisDB())
	assert.Equal(t, "s3cret", GetConfig("JWT_SECRET"))
	assert.Equal(t, "", GetConfig("UNKNOWN"))
}

func TestGetConfigDefaults(t *testing.T) {
	t.Cleanup(func() { config = Config{} })
	config = Config{}

	assert.Equal(t, "8080", GetConfig("APP_PORT"))
	assert.Equal(t, "memory", GetConfig("STORAGE_DRIVER"))
	assert.Equal(t, "cart.db", GetConfig("SQLITE_PATH"))
	assert.Equal(t, "30m", GetConfig("CART_IDLE_TTL"))
}
