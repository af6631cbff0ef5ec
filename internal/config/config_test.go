package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"SERVER_ADDR", "PORT", "CORS_ORIGIN", "STORAGE_DRIVER", "DATABASE_PATH",
		"JWT_SECRET", "UPLOAD_DIR", "SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, 300, cfg.Server.RateLimit.Requests)
	assert.Equal(t, 15*time.Minute, cfg.Server.RateLimit.Window)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "prism.yaml")

	cfg := DefaultConfig()
	cfg.Storage.Driver = "memory"
	cfg.Auth.TokenTTL = time.Hour
	cfg.SMTP = SMTPConfig{Host: "smtp.example.com", Port: 465, User: "me", Pass: "pw"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", loaded.Storage.Driver)
	assert.Equal(t, time.Hour, loaded.Auth.TokenTTL)
	assert.True(t, loaded.SMTP.Enabled())
}

func TestLoadYAMLDurations(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "prism.yaml")
	data := []byte("server:\n  addr: \":9000\"\n  rate_limit:\n    requests: 10\n    window: 1m\nauth:\n  token_ttl: 2h\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Server.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.Server.RateLimit.Window)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	// untouched sections keep defaults
	assert.Equal(t, "uploads", cfg.Uploads.Dir)
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("CORS_ORIGIN", "https://a.example, https://b.example,")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("DATABASE_PATH", "/tmp/x.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Server.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.Path)

	t.Setenv("SERVER_ADDR", "127.0.0.1:7000")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)

	t.Setenv("SMTP_PORT", "many")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate(), "dev secret outside development")

	cfg.Logging.Development = true
	assert.NoError(t, cfg.Validate())

	cfg.Auth.JWTSecret = "real"
	cfg.Logging.Development = false
	assert.NoError(t, cfg.Validate())

	cfg.Storage.Driver = "mongo"
	cfg.Auth.TokenTTL = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver")
	assert.Contains(t, err.Error(), "auth.token_ttl")
}
