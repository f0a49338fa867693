package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/constants"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
)

// isolate keeps config files and .env files of the developer out of a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, config.Store)
	assert.Equal(t, "wircatalog.db", config.DSN)
	assert.True(t, config.Embedded)
	assert.Equal(t, LockLocal, config.Lock)
	assert.Equal(t, constants.LockTTL, config.LockTTL)
	assert.Equal(t, constants.ApplyTimeout, config.ApplyTimeout)
	assert.Empty(t, config.ConfigFile)
}

func TestLoadConfig_Environment(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		envValue string
		check    func(*Config) any
		want     any
	}{
		{
			name:     "Store",
			envVar:   "WIRCATALOG_STORE",
			envValue: "MEMORY",
			check:    func(c *Config) any { return c.Store },
			want:     StoreMemory,
		},
		{
			name:     "BatchDir",
			envVar:   "WIRCATALOG_BATCH_DIR",
			envValue: "/srv/seeds",
			check:    func(c *Config) any { return c.BatchDir },
			want:     "/srv/seeds",
		},
		{
			name:     "ApplyTimeout",
			envVar:   "WIRCATALOG_APPLY_TIMEOUT",
			envValue: "45s",
			check:    func(c *Config) any { return c.ApplyTimeout },
			want:     45 * time.Second,
		},
		{
			name:     "RedisDB",
			envVar:   "WIRCATALOG_REDIS_DB",
			envValue: "3",
			check:    func(c *Config) any { return c.RedisDB },
			want:     3,
		},
		{
			name:     "Strict",
			envVar:   "WIRCATALOG_STRICT",
			envValue: "true",
			check:    func(c *Config) any { return c.Strict },
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.envVar, tt.envValue)

			config, err := LoadConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.check(config))
		})
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := isolate(t)
	content := "store: memory\nlock: redis\nredis_addr: cache:6379\nlock_ttl: 10s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".wircatalog.yaml"), []byte(content), constants.FilePermissions))

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, config.Store)
	assert.Equal(t, LockRedis, config.Lock)
	assert.Equal(t, "cache:6379", config.RedisAddr)
	assert.Equal(t, 10*time.Second, config.LockTTL)
	assert.NotEmpty(t, config.ConfigFile)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".wircatalog.yaml"), []byte("store: memory\n"), constants.FilePermissions))
	t.Setenv("WIRCATALOG_STORE", "sqlite")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, config.Store)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WIRCATALOG_DSN=from-env.db\n"), constants.FilePermissions))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("WIRCATALOG_DSN=from-local.db\n"), constants.FilePermissions))
	t.Cleanup(func() { _ = os.Unsetenv("WIRCATALOG_DSN") })

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-local.db", config.DSN)
}

func TestLoadConfig_Invalid(t *testing.T) {
	isolate(t)
	t.Setenv("WIRCATALOG_STORE", "postgres")

	_, err := LoadConfig()
	require.Error(t, err)
	var cfgErr *errors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "store", cfgErr.Component)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Store: StoreSQLite, DSN: "x.db", Lock: LockLocal, Embedded: true}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store", func(c *Config) { c.Store = "postgres" }},
		{"mysql without dsn", func(c *Config) { c.Store = StoreMySQL; c.DSN = "" }},
		{"unknown lock", func(c *Config) { c.Lock = "etcd" }},
		{"no batches", func(c *Config) { c.Embedded = false; c.BatchDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.True(t, errors.Is(c.Validate(), errors.ErrInvalidInput))
		})
	}
}
