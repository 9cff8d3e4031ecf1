package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"LEDGER_APP_NAME":           os.Getenv("LEDGER_APP_NAME"),
		"LEDGER_APP_ENV":            os.Getenv("LEDGER_APP_ENV"),
		"LEDGER_APP_PORT":           os.Getenv("LEDGER_APP_PORT"),
		"LEDGER_DATABASE_HOST":      os.Getenv("LEDGER_DATABASE_HOST"),
		"LEDGER_DATABASE_PORT":      os.Getenv("LEDGER_DATABASE_PORT"),
		"LEDGER_DATABASE_USER":      os.Getenv("LEDGER_DATABASE_USER"),
		"LEDGER_DATABASE_PASSWORD":  os.Getenv("LEDGER_DATABASE_PASSWORD"),
		"LEDGER_DATABASE_DBNAME":    os.Getenv("LEDGER_DATABASE_DBNAME"),
		"LEDGER_DATABASE_SSLMODE":   os.Getenv("LEDGER_DATABASE_SSLMODE"),
		"LEDGER_INVENTORY_TIMEOUT":  os.Getenv("LEDGER_INVENTORY_TIMEOUT"),
		"LEDGER_RETRY_MAX_ATTEMPTS": os.Getenv("LEDGER_RETRY_MAX_ATTEMPTS"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "ledger-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "ledger", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 3, cfg.Retry.MaxAttempts)
		assert.True(t, cfg.Idempotency.Enabled)
	})

	t.Run("loads values from environment variables with LEDGER prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("LEDGER_APP_NAME", "test-app")
		os.Setenv("LEDGER_APP_PORT", "9000")
		os.Setenv("LEDGER_DATABASE_HOST", "testdb.local")
		os.Setenv("LEDGER_DATABASE_PORT", "5433")
		os.Setenv("LEDGER_DATABASE_USER", "testuser")
		os.Setenv("LEDGER_DATABASE_PASSWORD", "testpass")
		os.Setenv("LEDGER_DATABASE_DBNAME", "testdb")
		os.Setenv("LEDGER_INVENTORY_TIMEOUT", "10s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "10s", cfg.Inventory.Timeout.String())
	})

	t.Run("production requires password and ssl", func(t *testing.T) {
		clearEnv()
		os.Setenv("LEDGER_APP_ENV", "production")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.local",
		Port:     5432,
		User:     "ledger",
		Password: "p@ss:word/1",
		DBName:   "ledger",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.local:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss:word/1")
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache.local", Port: 6380}
	assert.Equal(t, "cache.local:6380", r.Addr())
}
