package domain

import "github.com/tripnest/tripnest/internal/identity"

// Account is a stored user together with its credentials.
type Account struct {
	identity.User
	PasswordHash string // argon2id PHC string
}
