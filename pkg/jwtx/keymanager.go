package jwtx

import (
	"fmt"

	"github.com/tripnest/tripnest/pkg/cryptox"
)

// KeyManager bundles the signer, its KeySet and a verifier over that set.
type KeyManager struct {
	Signer   Signer
	Verifier Verifier
	KeySet   *KeySet
	Issuer   string
}

// NewKeyManagerFromPEM loads an Ed25519 signing key.
func NewKeyManagerFromPEM(kid string, pemKey []byte, issuer string) (*KeyManager, error) {
	if issuer == "" {
		return nil, fmt.Errorf("jwtx: issuer is required")
	}

	signer, err := NewSignerEdDSA(kid, pemKey)
	if err != nil {
		return nil, err
	}

	keys := NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("jwtx: add signer to keyset: %w", err)
	}

	return &KeyManager{
		Signer:   signer,
		Verifier: NewVerifierEdDSA(keys, issuer),
		KeySet:   keys,
		Issuer:   issuer,
	}, nil
}

// NewEphemeralKeyManager generates an in-memory key with a random kid. Tokens
// it issued stop verifying once the process exits.
func NewEphemeralKeyManager(issuer string) (*KeyManager, error) {
	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, err
	}

	kid, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate kid: %w", err)
	}
	return NewKeyManagerFromPEM("tripnest-"+kid, pemKey, issuer)
}

// IsReady reports whether the key set can verify tokens.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady()
}
