package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is how long a signed-in session token stays valid.
const DefaultSessionTTL = 12 * time.Hour

// Identity is the profile snapshot embedded in a session token so that
// resource handlers can authorise without a user lookup.
type Identity struct {
	Email    string
	Name     string
	Role     string
	AgencyID string
}

// Claims are the session-token claims shared by the backend and its clients.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`

	// Role is one of the platform role names (PLATFORM_ADMIN, AGENCY_STAFF...).
	Role string `json:"role,omitempty"`

	// AgencyID is set for agency roles only.
	AgencyID string `json:"agency_id,omitempty"`
}

// NewUserClaims builds claims for subject valid from now for ttl.
func NewUserClaims(subject string, id Identity, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Email:    id.Email,
		Name:     id.Name,
		Role:     id.Role,
		AgencyID: id.AgencyID,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks the issuer; an empty expectation accepts anything.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiryWithLeeway checks exp and nbf against now, allowing leeway
// for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}

// Identity returns the embedded profile snapshot.
func (c *Claims) Identity() Identity {
	return Identity{Email: c.Email, Name: c.Name, Role: c.Role, AgencyID: c.AgencyID}
}
