package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:8080,http://127.0.0.1:8080")
	t.Setenv("SEED_ADMIN_EMAIL", "admin@tripnest.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 8081, cfg.Port)
	require.Equal(t, "tripnest-devapi", cfg.Issuer)
	require.Equal(t, 7*24*time.Hour, cfg.InviteTTL)
	require.Equal(t, 12*time.Hour, cfg.SessionTTL)
	require.Equal(t, "Platform Admin", cfg.SeedAdminName)
	require.Equal(t, []string{"http://localhost:8080", "http://127.0.0.1:8080"}, cfg.CORSAllowedOrigins)
	require.Empty(t, cfg.SigningKeyFile)
}

func TestLoadConfigRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("INVITE_TTL", "0s")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("HOUSEKEEPING_INTERVAL", "hourly")
	_, err := LoadConfig()
	require.Error(t, err)
}
