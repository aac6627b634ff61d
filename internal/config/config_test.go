package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("MINIO_USE_SSL", "true")
	os.Setenv("DIRECTORY_BACKEND", "mongo")
	os.Setenv("AUTH_ANONYMOUS_ENABLED", "false")
	defer func() {
		os.Unsetenv("DB_MAX_OPEN_CONNS")
		os.Unsetenv("MINIO_USE_SSL")
		os.Unsetenv("DIRECTORY_BACKEND")
		os.Unsetenv("AUTH_ANONYMOUS_ENABLED")
	}()

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, BackendMongo, cfg.DirectoryBackend)
	assert.False(t, cfg.Auth.AnonymousEnabled)
}

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("DIRECTORY_BACKEND")
	os.Unsetenv("STORAGE_BACKEND")
	os.Unsetenv("UPLOAD_PRESET")

	cfg := Load()

	assert.Equal(t, BackendPostgres, cfg.DirectoryBackend)
	assert.Equal(t, StorageMinIO, cfg.StorageBackend)
	assert.Equal(t, "docs_unsigned", cfg.Upload.Preset)
	assert.Equal(t, 86400, cfg.Auth.SessionTTLSec)
	assert.True(t, cfg.Auth.AnonymousEnabled)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}
