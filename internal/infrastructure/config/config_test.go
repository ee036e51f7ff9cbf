package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearCRMEnv unsets every CRM_ variable for the duration of the test
func clearCRMEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "CRM_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearCRMEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "crm-opportunity-store", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "crm", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
		assert.Equal(t, "recentOppty", cfg.Cache.KeyPrefix)
		assert.Equal(t, 5, cfg.Cache.Capacity)
		assert.Equal(t, ResetModeScan, cfg.Cache.ResetMode)
		assert.False(t, cfg.Cache.AllowMemoryFallback)
		assert.Equal(t, 3*time.Second, cfg.Store.OperationTimeout)
		assert.Equal(t, 3, cfg.Store.AllocationRetries)
	})

	t.Run("loads values from environment variables with CRM prefix", func(t *testing.T) {
		clearCRMEnv(t)
		t.Setenv("CRM_APP_PORT", "9000")
		t.Setenv("CRM_DATABASE_DRIVER", "sqlite")
		t.Setenv("CRM_DATABASE_SQLITE_PATH", ":memory:")
		t.Setenv("CRM_REDIS_HOST", "cache.local")
		t.Setenv("CRM_REDIS_DB", "2")
		t.Setenv("CRM_CACHE_BACKEND", "memory")
		t.Setenv("CRM_CACHE_KEY_PREFIX", "recent")
		t.Setenv("CRM_CACHE_CAPACITY", "10")
		t.Setenv("CRM_CACHE_RESET_MODE", "flushdb")
		t.Setenv("CRM_CACHE_ALLOW_MEMORY_FALLBACK", "true")
		t.Setenv("CRM_STORE_OPERATION_TIMEOUT", "750ms")
		t.Setenv("CRM_STORE_ALLOCATION_RETRIES", "5")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, ":memory:", cfg.Database.SQLitePath)
		assert.Equal(t, "cache.local:6379", cfg.Redis.Addr())
		assert.Equal(t, 2, cfg.Redis.DB)
		assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
		assert.Equal(t, "recent", cfg.Cache.KeyPrefix)
		assert.Equal(t, 10, cfg.Cache.Capacity)
		assert.Equal(t, ResetModeFlushDB, cfg.Cache.ResetMode)
		assert.True(t, cfg.Cache.AllowMemoryFallback)
		assert.Equal(t, 750*time.Millisecond, cfg.Store.OperationTimeout)
		assert.Equal(t, 5, cfg.Store.AllocationRetries)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearCRMEnv(t)
		t.Setenv("CRM_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("CRM_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"unknown driver", "CRM_DATABASE_DRIVER", "mongo", "database.driver"},
		{"unknown backend", "CRM_CACHE_BACKEND", "memcached", "cache.backend"},
		{"unknown reset mode", "CRM_CACHE_RESET_MODE", "flushall", "cache.reset_mode"},
		{"negative capacity", "CRM_CACHE_CAPACITY", "-1", "cache.capacity"},
		{"glob prefix", "CRM_CACHE_KEY_PREFIX", "recent*", "glob"},
		{"negative timeout", "CRM_STORE_OPERATION_TIMEOUT", "-1s", "store.operation_timeout"},
		{"negative retries", "CRM_STORE_ALLOCATION_RETRIES", "-2", "store.allocation_retries"},
		{"sampling ratio", "CRM_TELEMETRY_SAMPLING_RATIO", "1.5", "sampling_ratio"},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			clearCRMEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearCRMEnv(t)
		t.Setenv("CRM_APP_ENV", "production")
		t.Setenv("CRM_DATABASE_PASSWORD", "secure-password")
		t.Setenv("CRM_DATABASE_SSLMODE", "require")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		os.Unsetenv("CRM_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("CRM_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects sqlite in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("CRM_DATABASE_DRIVER", "sqlite")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "postgres in production")
	})
}

func TestLoadFile(t *testing.T) {
	clearCRMEnv(t)
	path := filepath.Join(t.TempDir(), "crm.toml")
	content := `
[database]
driver = "sqlite"
sqlite_path = "/tmp/crm-test.db"

[cache]
backend = "memory"
capacity = 8

[store]
operation_timeout = "2s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Run("reads explicit file", func(t *testing.T) {
		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, "/tmp/crm-test.db", cfg.Database.SQLitePath)
		assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
		assert.Equal(t, 8, cfg.Cache.Capacity)
		assert.Equal(t, 2*time.Second, cfg.Store.OperationTimeout)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("CRM_CACHE_CAPACITY", "3")

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Cache.Capacity)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
		assert.Error(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}
