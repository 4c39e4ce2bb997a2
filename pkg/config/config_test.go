package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `bind_addr: "0.0.0.0"
port: "9090"
env: "production"
database:
  host: "db.internal"
  port: 5433
  user: "app"
  database: "analytics"
  ssl_mode: "require"
  max_connections: 50
  run_migrations: true
templates:
  overrides_path: "overrides.yaml"
cache:
  capacity: 250
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFrom(path, "1.2.3")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.BindAddr)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, int32(50), cfg.Database.MaxConnections)
	assert.True(t, cfg.Database.RunMigrations)
	assert.Equal(t, "overrides.yaml", cfg.Templates.OverridesPath)
	assert.Equal(t, 250, cfg.Cache.Capacity)
}

func TestLoadFrom_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9090\"\n"), 0o644))

	t.Setenv("PORT", "7070")
	t.Setenv("PGPASSWORD", "s3cret")

	cfg, err := LoadFrom(path, "test")
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "s3cret", cfg.Database.Password)
}

func TestLoadFrom_MissingFileUsesEnvAndDefaults(t *testing.T) {
	t.Setenv("PGHOST", "env-host")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"), "test")
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, "127.0.0.1", cfg.BindAddr)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 100, cfg.Cache.Capacity)
	assert.Equal(t, "migrations", cfg.Database.MigrationsPath)
}

func TestConnectionString(t *testing.T) {
	db := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "dynasql",
		Password: "pw",
		Database: "dynasql",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=dynasql password=pw dbname=dynasql sslmode=disable",
		db.ConnectionString(),
	)
}
