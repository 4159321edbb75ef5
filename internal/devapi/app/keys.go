package app

import (
	"fmt"
	"log/slog"

	"github.com/tripnest/tripnest/pkg/cryptox"
	"github.com/tripnest/tripnest/pkg/jwtx"
)

const persistentKID = "tripnest-devapi-1"

// InitSigningKeys returns the session-token key manager.
//
//   - With SIGNING_KEY_FILE set the Ed25519 key is read from that file,
//     generated there on first start, and sessions survive restarts.
//   - Otherwise a key is generated in memory and every session is lost on
//     restart.
func InitSigningKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	if cfg.SigningKeyFile == "" {
		km, err := jwtx.NewEphemeralKeyManager(cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("generate ephemeral signing key: %w", err)
		}
		logger.Warn("using ephemeral signing key; sessions end on restart", "kid", km.Signer.KID())
		return km, nil
	}

	pemKey, err := cryptox.LoadOrGenerateEd25519Key(cfg.SigningKeyFile)
	if err != nil {
		return nil, err
	}
	km, err := jwtx.NewKeyManagerFromPEM(persistentKID, pemKey, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("load signing key: %w", err)
	}
	logger.Info("signing key loaded", "path", cfg.SigningKeyFile, "kid", persistentKID)
	return km, nil
}
