package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, 100, cfg.Server.RateLimitPerMinute)

	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/shof.sqlite", cfg.Database.Path)

	require.False(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "127.0.0.1:6379", cfg.Cache.Redis.Address)

	require.Equal(t, 720*time.Hour, cfg.Auth.SessionTTL)
	require.Equal(t, 32, cfg.Auth.SessionTokenLength)
	require.Equal(t, 10*time.Minute, cfg.Auth.VerificationTTL)
	require.Equal(t, time.Hour, cfg.Auth.ResetTTL)

	require.False(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, 587, cfg.Email.SMTP.Port)

	require.Empty(t, cfg.Report.DiscordWebhookURL)
	require.Equal(t, "./web/dist", cfg.Static.Dir)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("SHOF_SERVER_PORT", "9000")
	t.Setenv("SHOF_SERVER_LOG_LEVEL", "debug")
	t.Setenv("SHOF_AUTH_SESSION_TTL", "48h")
	t.Setenv("SHOF_CACHE_REDIS_ENABLED", "true")
	t.Setenv("SHOF_REPORT_DISCORD_WEBHOOK_URL", "https://discord.example/webhook")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, 48*time.Hour, cfg.Auth.SessionTTL)
	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "https://discord.example/webhook", cfg.Report.DiscordWebhookURL)
}
