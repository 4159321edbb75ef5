package app

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitSigningKeysPersistent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := Config{Issuer: "tripnest-test", SigningKeyFile: filepath.Join(t.TempDir(), "keys", "signing.pem")}

	first, err := InitSigningKeys(cfg, logger)
	require.NoError(t, err)
	second, err := InitSigningKeys(cfg, logger)
	require.NoError(t, err)

	require.Equal(t, first.KeySet.PublicJWKS(), second.KeySet.PublicJWKS())
}

func TestInitSigningKeysEphemeral(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := InitSigningKeys(Config{Issuer: "tripnest-test"}, logger)
	require.NoError(t, err)
	b, err := InitSigningKeys(Config{Issuer: "tripnest-test"}, logger)
	require.NoError(t, err)

	require.True(t, a.IsReady())
	require.NotEqual(t, a.Signer.KID(), b.Signer.KID())
}
