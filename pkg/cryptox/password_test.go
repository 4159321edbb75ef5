package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	SetPepper("test-pepper")

	for _, pw := range []string{"Sunny2024", "P@ssw0rd!#$%^&*()", strings.Repeat("a", 100), "пароль密码1A"} {
		hash, err := HashPassword(pw)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$"))

		require.NoError(t, VerifyPassword(pw, hash))
		require.ErrorIs(t, VerifyPassword(pw+"x", hash), ErrPasswordMismatch)
		require.False(t, NeedsRehash(hash))
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	a, err := HashPassword("samepassword")
	require.NoError(t, err)
	b, err := HashPassword("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestVerifyPassword_PepperChange(t *testing.T) {
	SetPepper("one")
	hash, err := HashPassword("Sunny2024")
	require.NoError(t, err)

	SetPepper("two")
	t.Cleanup(func() { SetPepper("test-pepper") })

	require.ErrorIs(t, VerifyPassword("Sunny2024", hash), ErrPasswordMismatch)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=16$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$",
	}
	for _, c := range cases {
		require.ErrorIs(t, VerifyPassword("x", c), ErrMalformedHash, c)
		require.True(t, NeedsRehash(c))
	}
}

func TestNeedsRehash_WeakParams(t *testing.T) {
	weak := "$argon2id$v=19$m=4096,t=1,p=1$c2FsdHNhbHRzYWx0$aGFzaGhhc2hoYXNo"
	require.True(t, NeedsRehash(weak))
}
