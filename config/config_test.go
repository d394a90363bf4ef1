package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_MODE", "dev")
	t.Setenv("PORT", "")
	t.Setenv("SYNC_ROLLBACK", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "creates", cfg.Sync.Rollback)
	assert.Equal(t, 10*time.Second, cfg.Sync.WriteTimeout)
	assert.False(t, cfg.Sync.CascadeRemote)
	assert.Equal(t, "dev", cfg.Auth.Mode)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_MODE", "dev")
	t.Setenv("SYNC_ROLLBACK", "all")
	t.Setenv("SYNC_CASCADE_REMOTE", "true")
	t.Setenv("SYNC_WRITE_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_RPS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "all", cfg.Sync.Rollback)
	assert.True(t, cfg.Sync.CascadeRemote)
	assert.Equal(t, 3*time.Second, cfg.Sync.WriteTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, float64(20), cfg.RateLimit.RequestsPerSecond)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{Host: "localhost"},
			Auth:     AuthConfig{Mode: "dev"},
			Sync:     SyncConfig{Rollback: "creates", WriteTimeout: time.Second},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("firebase needs credentials", func(t *testing.T) {
		c := base()
		c.Auth.Mode = "firebase"
		assert.Error(t, c.Validate())
	})

	t.Run("dev auth refused in production", func(t *testing.T) {
		c := base()
		c.App.Environment = "production"
		assert.Error(t, c.Validate())
	})

	t.Run("unknown rollback policy", func(t *testing.T) {
		c := base()
		c.Sync.Rollback = "sometimes"
		assert.Error(t, c.Validate())
	})
}

func TestPostgresDSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5433, Name: "n", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p@h:5433/n?sslmode=require", d.PostgresDSN())

	d.DSN = "postgres://override"
	assert.Equal(t, "postgres://override", d.PostgresDSN())
}
