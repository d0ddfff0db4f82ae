package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 5*time.Second, cfg.Order.ReservationTxTimeout)
	assert.Equal(t, 3, cfg.Order.MaxRetryAttempts)
	assert.Equal(t, 720*time.Hour, cfg.Cart.Expiry)
	assert.Equal(t, 5, cfg.Review.RateLimit)
	assert.Equal(t, 10*time.Minute, cfg.Review.RateWindow)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
database:
  driver: sqlite
  dsn: "file:store.db"
order:
  max_retry_attempts: 5
cart:
  max_recovery_attempts: 2
`), 0o600))

	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port, "environment wins over file")
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:store.db", cfg.Database.DSN)
	assert.Equal(t, 5, cfg.Order.MaxRetryAttempts)
	assert.Equal(t, 2, cfg.Cart.MaxRecoveryAttempts)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DB_NAME=from_dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DB_NAME") })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from_dotenv", cfg.Database.Name)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
