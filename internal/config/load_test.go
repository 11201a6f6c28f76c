package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(discardLogger(), "config")
	require.NoError(t, err)
	require.Equal(t, ":8008", cfg.Server.Address)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	require.Equal(t, 256, cfg.Realtime.SendBuffer)
	require.Equal(t, 10000, cfg.Rooms.MaxAttempts)
	require.False(t, cfg.Google.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TASKROOMS_SERVER_ADDRESS", ":9999")
	t.Setenv("TASKROOMS_REALTIME_WRITE_TIMEOUT", "3s")
	t.Setenv("TASKROOMS_AUTH_JWT_SECRET", "a-much-longer-test-secret")

	cfg, err := Load(discardLogger(), "config")
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Server.Address)
	require.Equal(t, 3*time.Second, cfg.Realtime.WriteTimeout)
	require.Equal(t, "a-much-longer-test-secret", cfg.Auth.JWTSecret)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := []byte("server:\n  log_level: debug\nrooms:\n  max_attempts: 50\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := Load(discardLogger(), "config")
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, 50, cfg.Rooms.MaxAttempts)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TASKROOMS_SERVER_LOG_LEVEL", "chatty")

	_, err := Load(discardLogger(), "config")
	require.Error(t, err)
}

func TestValidate_GoogleRequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(discardLogger(), "config")
	require.NoError(t, err)

	cfg.Google.ClientID = "client"
	require.Error(t, Validate(cfg))

	cfg.Google.ClientSecret = "secret"
	cfg.Google.RedirectURL = "http://localhost:8008/api/auth/google/callback"
	require.NoError(t, Validate(cfg))
	require.True(t, cfg.Google.Enabled())
}

func TestLoad_WarnsOnDevelopmentSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	cfg, err := Load(logger, "config")
	require.NoError(t, err)
	require.Equal(t, DevelopmentJWTSecret, cfg.Auth.JWTSecret)
	require.Contains(t, buf.String(), "built-in development JWT secret")
}

func TestCheckSecrets(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(discardLogger(), "config")
	require.NoError(t, err)

	require.ErrorIs(t, CheckSecrets(cfg), ErrDevelopmentSecret)

	cfg.Server.LogLevel = "debug"
	require.NoError(t, CheckSecrets(cfg))

	cfg.Server.LogLevel = "info"
	cfg.Auth.JWTSecret = "a-much-longer-test-secret"
	require.NoError(t, CheckSecrets(cfg))
}
