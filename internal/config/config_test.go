package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "http://localhost:3000", cfg.Server.CORSOrigin)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "player-scores", cfg.Kafka.Topic)
	assert.False(t, cfg.Kafka.Enabled)
	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Sync.Interval)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
postgres:
  database: scores
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "scores", cfg.Postgres.Database)
	// Untouched fields fall back to defaults
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_PG_PASSWORD", "hunter2")
	path := writeConfig(t, `
postgres:
  password: ${TEST_PG_PASSWORD}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.Postgres.Password)
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("API_KEY", "sekrit")

	cfg := DefaultConfig()
	assert.Equal(t, "sekrit", cfg.Auth.APIKey)
}

func TestAPIKeyConfigOverridesEnvironment(t *testing.T) {
	t.Setenv("API_KEY", "from-env")
	path := writeConfig(t, `
auth:
  api_key: from-file
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Auth.APIKey)
}

func TestAPIKeyUnset(t *testing.T) {
	t.Setenv("API_KEY", "")

	cfg := DefaultConfig()
	assert.Empty(t, cfg.Auth.APIKey)
}

func TestConnectionString(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "pw",
		Database: "leaderboard",
	}
	assert.Equal(t,
		"postgres://app:pw@db.internal:5433/leaderboard?sslmode=disable",
		cfg.ConnectionString())
}
