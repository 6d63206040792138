package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("BH_TEST_HOST", "db.internal")

	assert.Equal(t, "host: db.internal", expandEnv("host: ${BH_TEST_HOST}"))
	assert.Equal(t, "port: 5432", expandEnv("port: ${BH_TEST_UNSET_PORT:5432}"))
	assert.Equal(t, "empty: ", expandEnv("empty: ${BH_TEST_UNSET_EMPTY:}"))
	assert.Equal(t, "keep: ${BH_TEST_UNSET}", expandEnv("keep: ${BH_TEST_UNSET}"))
}

func TestLoadFrom_DefaultsOnly(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("SECURITY_JWT_SECRET", "s3cret")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "bookhatch-api", cfg.App.Name)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 168*time.Hour, cfg.Drafts.TTL)
	assert.Equal(t, "placeholder", cfg.Assist.Cover.Provider)
	assert.Equal(t, 10, cfg.Assist.Recommendation.MaxItems)
	assert.Equal(t, "s3cret", cfg.Security.JWT.Secret)
}

func TestLoadFrom_FileWithPlaceholdersAndEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APP_ENV", "staging")
	t.Setenv("BH_TEST_JWT", "from-env")

	base := `
database:
  driver: memory
security:
  jwt:
    secret: ${BH_TEST_JWT:fallback}
drafts:
  ttl: 2h
`
	overlay := `
drafts:
  ttl: 30m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(base), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.staging.yaml"), []byte(overlay), 0o600))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.Security.JWT.Secret)
	assert.Equal(t, 30*time.Minute, cfg.Drafts.TTL)
}

func TestLoadFrom_RejectsUnknownDriver(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APP_ENV", "test")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("database:\n  driver: mongo\nsecurity:\n  jwt:\n    secret: x\n"), 0o600))

	_, err := LoadFrom(dir)
	assert.Error(t, err)
}

func TestPostgresConfig_DSN(t *testing.T) {
	c := PostgresConfig{Host: "h", Port: 1, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=d sslmode=disable", c.DSN())
}
