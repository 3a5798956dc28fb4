package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9000")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, http://localhost:3001")
	t.Setenv("MONGODB_DATABASE", "")
	t.Setenv("JWT_TTL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "taskmanager", cfg.Database.Name)
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	path := writeYAML(t, `
server:
  port: 8080
database:
  uri: mongodb://file-host:27017
  name: tasks
auth:
  jwt_secret: from-file
  token_ttl: 2h
telegram:
  bot_token: abc
  chat_id: 42
`)
	t.Setenv("MONGODB_URI", "mongodb://env-host:27017")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")
	t.Setenv("NODE_ENV", "")
	t.Setenv("MONGODB_DATABASE", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mongodb://env-host:27017", cfg.Database.URI)
	assert.Equal(t, "tasks", cfg.Database.Name)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Telegram.Enabled())
	assert.False(t, cfg.Email.Enabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeYAML(t, "server: [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_ENV_VAR", "value")

	assert.Equal(t, "value", getEnv("TEST_ENV_VAR", "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT_TEST_VAR", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	t.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	t.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	t.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	t.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	t.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))
}
