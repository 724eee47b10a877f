package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dineqr/dineqr/internal/auth"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "https://menus.example.com", cfg.Server.BaseURL)
	require.True(t, cfg.Server.Production)
	require.Equal(t, 30, cfg.Server.RateLimit.MaxRequests)
	require.Equal(t, 30*time.Second, cfg.Server.RateLimit.Window)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.True(t, cfg.Database.Postgres.Enabled)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, "dineqr-test", cfg.Auth.JWT.Issuer)
	require.Equal(t, 360*time.Hour, cfg.Auth.JWT.SessionTTL)
	require.Equal(t, 5*time.Minute, cfg.Auth.Verification.CodeTTL)

	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "smtp.example.com", cfg.Email.SMTP.Host)
	require.Equal(t, 2525, cfg.Email.SMTP.Port)
	require.Equal(t, 15*time.Second, cfg.Email.SMTP.Timeout)

	require.Equal(t, "/var/lib/dineqr/uploads", cfg.Uploads.Dir)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 720*time.Hour, cfg.Auth.JWT.SessionTTL)
	require.Equal(t, 10*time.Minute, cfg.Auth.Verification.CodeTTL)
	require.False(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "./data/uploads", cfg.Uploads.Dir)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
}

func TestTokenServiceConfigAdapter(t *testing.T) {
	cfg := AuthSettings{
		JWT: JWTSettings{Secret: "secret", Issuer: "issuer", SessionTTL: 10 * time.Hour},
	}
	require.Equal(t, auth.TokenConfig{
		Secret:     "secret",
		Issuer:     "issuer",
		SessionTTL: 10 * time.Hour,
	}, cfg.TokenServiceConfig())

	var empty AuthSettings
	require.Equal(t, auth.DefaultSessionTTL, empty.TokenServiceConfig().SessionTTL)
}

func TestEmailConfigAdapter(t *testing.T) {
	cfg := EmailConfig{
		SMTP: SMTPConfig{
			Enabled: true,
			Host:    "smtp.example.com",
			Port:    2525,
			From:    "no-reply@example.com",
			UseTLS:  true,
			Timeout: 10 * time.Second,
		},
	}

	settings := cfg.SMTPSettings()
	require.True(t, settings.Enabled)
	require.Equal(t, "smtp.example.com", settings.Host)
	require.Equal(t, 2525, settings.Port)
	require.Equal(t, "no-reply@example.com", settings.From)
	require.True(t, settings.UseTLS)
	require.Equal(t, 10*time.Second, settings.Timeout)
}

func TestDatabaseSettingsAdapter(t *testing.T) {
	cfg := DatabaseConfig{
		Driver: "postgres",
		Postgres: DBAuthConfig{
			Host: "db.example.com", Port: 5433, Database: "dineqr", Username: "u", Password: "p",
		},
	}

	settings := cfg.DatabaseSettings()
	require.Equal(t, "postgres", settings.Driver)
	require.Equal(t, "db.example.com", settings.Host)
	require.Equal(t, 5433, settings.Port)
	require.Equal(t, "dineqr", settings.Name)
}

func TestApplyRuntimeDefaults(t *testing.T) {
	cfg := &Config{}

	generated, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Auth.JWT.Secret)
	require.True(t, generated["auth.jwt.secret"])

	// Existing secrets are preserved.
	cfg = &Config{}
	cfg.Auth.JWT.Secret = "pinned"
	generated, err = ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.Equal(t, "pinned", cfg.Auth.JWT.Secret)
	require.Empty(t, generated)

	_, err = ApplyRuntimeDefaults(nil)
	require.Error(t, err)
}
