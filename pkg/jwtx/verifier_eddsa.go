package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultLeeway tolerates small clock differences between issuer and verifier.
const DefaultLeeway = 30 * time.Second

// EdDSAVerifier validates tokens signed by any Ed25519 key in a KeySet.
type EdDSAVerifier struct {
	keys   *KeySet
	issuer string
	now    func() time.Time
}

// NewVerifierEdDSA creates a verifier bound to keys and the expected issuer.
func NewVerifierEdDSA(keys *KeySet, issuer string) *EdDSAVerifier {
	return &EdDSAVerifier{keys: keys, issuer: issuer, now: time.Now}
}

// Verify parses tokenStr, checks its signature against the kid it names and
// validates issuer and lifetime.
func (v *EdDSAVerifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("jwtx: missing kid")
		}

		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("jwtx: kid %q: %w", kid, err)
		}
		return pub, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrNoKey):
		return Claims{}, err
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, ErrInvalidSig
	default:
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiryWithLeeway(v.now().UTC(), DefaultLeeway); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

var _ Verifier = (*EdDSAVerifier)(nil)
