package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/ladak/internal/auth"
	"github.com/erazemk/ladak/internal/model"
)

const sampleYAML = `
env: development
log:
  level: debug
http:
  addr: ":9000"
store:
  driver: sqlite
  sqlite_path: /tmp/ladak-test.db
auth:
  jwt_secret: file-secret
  users:
    - pin: "0717"
      name: Admin
      role: admin
    - pin_hash: "$2a$04$abcdefghijklmnopqrstuu5Y7hTtGMqv1B0hU2wGmW9Iq4Bny8wIi"
      name: Gyuri
      role: driver
export:
  charset: windows-1250
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ladak.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.True(t, cfg.Development())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/ladak-test.db", cfg.Store.SQLitePath)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "windows-1250", cfg.Export.Charset)

	require.Len(t, cfg.Auth.Users, 2)
	assert.Equal(t, "0717", cfg.Auth.Users[0].PIN)
	assert.Equal(t, "Admin", cfg.Auth.Users[0].Name)
	assert.Equal(t, model.RoleAdmin, cfg.Auth.Users[0].Role)
	assert.NotEmpty(t, cfg.Auth.Users[1].PINHash)
	assert.Empty(t, cfg.Auth.Users[1].PIN)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LADAK_HTTP_ADDR", ":7000")
	t.Setenv("LADAK_AUTH_JWT_SECRET", "env-secret")
	t.Setenv("LADAK_STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://ladak@localhost/ladak")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://ladak@localhost/ladak", cfg.Store.DatabaseURL)
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Development())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "ladak.db", cfg.Store.SQLitePath)
	assert.Equal(t, "utf-8", cfg.Export.Charset)
	assert.Empty(t, cfg.Auth.Users)
}

func TestLoadPostgresWithoutURL(t *testing.T) {
	t.Setenv("LADAK_STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LADAK_STORE_DATABASE_URL", "")

	cfg, err := Load(writeConfig(t, "env: test\n"))
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Empty(t, cfg.Store.DatabaseURL)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "store:\n  driver: mysql\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "export:\n  charset: ebcdic\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "ladak.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	require.Len(t, cfg.Auth.Users, 4)

	users, err := auth.NewDirectory(cfg.Auth.Users)
	require.NoError(t, err)
	u, err := users.Lookup("0717")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
}
