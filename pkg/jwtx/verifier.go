package jwtx

import (
	"errors"
)

// Verifier validates a token and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrRevoked     = errors.New("jwtx: token revoked")
)

// RevocationFunc reports whether the token with the given jti was revoked.
type RevocationFunc func(jti string) (bool, error)

type revocationVerifier struct {
	next    Verifier
	revoked RevocationFunc
}

// WithRevocation wraps v so that tokens whose jti is reported revoked fail
// with ErrRevoked. Lookup errors fail closed.
func WithRevocation(v Verifier, revoked RevocationFunc) Verifier {
	return revocationVerifier{next: v, revoked: revoked}
}

func (r revocationVerifier) Verify(token string) (Claims, error) {
	c, err := r.next.Verify(token)
	if err != nil {
		return Claims{}, err
	}

	gone, err := r.revoked(c.ID)
	if err != nil {
		return Claims{}, err
	}
	if gone {
		return Claims{}, ErrRevoked
	}
	return c, nil
}
