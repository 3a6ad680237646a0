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
		"POS_APP_NAME":                os.Getenv("POS_APP_NAME"),
		"POS_APP_ENV":                 os.Getenv("POS_APP_ENV"),
		"POS_APP_PORT":                os.Getenv("POS_APP_PORT"),
		"POS_DATABASE_HOST":           os.Getenv("POS_DATABASE_HOST"),
		"POS_DATABASE_PORT":           os.Getenv("POS_DATABASE_PORT"),
		"POS_DATABASE_USER":           os.Getenv("POS_DATABASE_USER"),
		"POS_DATABASE_PASSWORD":       os.Getenv("POS_DATABASE_PASSWORD"),
		"POS_DATABASE_DBNAME":         os.Getenv("POS_DATABASE_DBNAME"),
		"POS_DATABASE_SSLMODE":        os.Getenv("POS_DATABASE_SSLMODE"),
		"POS_DATABASE_MAX_OPEN_CONNS": os.Getenv("POS_DATABASE_MAX_OPEN_CONNS"),
		"POS_DATABASE_MAX_IDLE_CONNS": os.Getenv("POS_DATABASE_MAX_IDLE_CONNS"),
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

		assert.Equal(t, "pharmacy-pos", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "pharmacy", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	})

	t.Run("loads values from environment variables with POS prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("POS_APP_NAME", "test-app")
		os.Setenv("POS_APP_PORT", "9000")
		os.Setenv("POS_DATABASE_HOST", "testdb.local")
		os.Setenv("POS_DATABASE_PORT", "5433")
		os.Setenv("POS_DATABASE_USER", "testuser")
		os.Setenv("POS_DATABASE_PASSWORD", "testpass")
		os.Setenv("POS_DATABASE_DBNAME", "testdb")
		os.Setenv("POS_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
	})

	t.Run("production requires a database password", func(t *testing.T) {
		clearEnv()
		os.Setenv("POS_APP_ENV", "production")
		os.Setenv("POS_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required")
	})

	t.Run("production rejects sslmode disable", func(t *testing.T) {
		clearEnv()
		os.Setenv("POS_APP_ENV", "production")
		os.Setenv("POS_DATABASE_PASSWORD", "secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "pharmacy",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.local", Port: 6380}
	assert.Equal(t, "cache.local:6380", cfg.Addr())
}
