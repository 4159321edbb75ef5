package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrPasswordMismatch is returned by VerifyPassword for a wrong password.
	ErrPasswordMismatch = errors.New("cryptox: password does not match")

	// ErrMalformedHash is returned when the stored hash cannot be parsed.
	ErrMalformedHash = errors.New("cryptox: malformed password hash")
)

// HashPassword returns a PHC-format Argon2id hash:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<hash>
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password+currentPepper()), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword checks password against an encoded hash produced by
// HashPassword.
func VerifyPassword(password, encoded string) error {
	p, err := parsePHC(encoded)
	if err != nil {
		return err
	}

	computed := argon2.IDKey([]byte(password+currentPepper()), p.salt, p.iters, p.mem, p.par, uint32(len(p.hash))) // #nosec G115
	if subtle.ConstantTimeCompare(computed, p.hash) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// NeedsRehash reports whether encoded was produced with parameters weaker
// than the current ones.
func NeedsRehash(encoded string) bool {
	p, err := parsePHC(encoded)
	if err != nil {
		return true
	}
	return p.mem < memory || p.iters < iterations || p.par < parallelism
}

type phc struct {
	mem, iters uint32
	par        uint8
	salt, hash []byte
}

func parsePHC(encoded string) (phc, error) {
	// ["", "argon2id", "v=19", "m=..,t=..,p=..", salt, hash]
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return phc{}, ErrMalformedHash
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return phc{}, fmt.Errorf("%w: unsupported version %q", ErrMalformedHash, parts[2])
	}

	var p phc
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.mem, &p.iters, &p.par); err != nil {
		return phc{}, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return phc{}, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	if p.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return phc{}, fmt.Errorf("%w: hash: %v", ErrMalformedHash, err)
	}
	if len(p.hash) == 0 {
		return phc{}, ErrMalformedHash
	}
	return p, nil
}
