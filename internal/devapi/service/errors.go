package service

import "errors"

// Sentinels returned by the services. Field-level problems are returned as
// identity.FieldErrors instead.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is not active")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateInvite    = errors.New("email already has a pending invitation")
	ErrTokenInvalid       = errors.New("invitation token is not valid")
	ErrTokenExpired       = errors.New("invitation token has expired")
	ErrForbidden          = errors.New("not permitted")
	ErrNotFound           = errors.New("not found")
	ErrNotPending         = errors.New("invitation is no longer pending")
	ErrUnknownUser        = errors.New("session user no longer exists")
)
