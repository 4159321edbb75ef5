package store

import (
	"context"
	"errors"
	"time"

	"github.com/tripnest/tripnest/internal/devapi/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict is returned by conditional updates whose precondition no
	// longer holds, e.g. completing an invitation that stopped being pending.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. It exposes sub-repositories so
// that a Tx can hand out the same repos bound to the transaction.
type Store interface {
	Users() Users
	Invitations() Invitations
	Revocations() Revocations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise. Repos must be taken from the tx argument.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.Account, error)

	// GetUserByEmail matches the normalised (lower-case) email.
	GetUserByEmail(ctx context.Context, email string) (domain.Account, error)

	// CreateUser inserts a new account. A taken email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, a domain.Account) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Invitations interface {
	// CreateInvitation inserts a new pending invitation. A second pending
	// invitation for the same email yields ErrAlreadyExists.
	CreateInvitation(ctx context.Context, inv domain.Invite) error

	GetInvitationByID(ctx context.Context, id string) (domain.Invite, error)
	GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invite, error)

	// GetPendingInvitationByEmail returns the pending invitation for email,
	// expired or not.
	GetPendingInvitationByEmail(ctx context.Context, email string) (domain.Invite, error)

	// ListInvitations returns matching invitations, newest first.
	ListInvitations(ctx context.Context, f domain.InviteFilter) ([]domain.Invite, error)

	// MarkCompleted flips a pending invitation to COMPLETED. It returns
	// ErrConflict when the invitation is no longer pending.
	MarkCompleted(ctx context.Context, id, userID string, at time.Time) error

	// MarkRevoked flips a pending invitation to REVOKED, or ErrConflict.
	MarkRevoked(ctx context.Context, id string, at time.Time) error

	// Reissue swaps the token fingerprint and expiry of a pending
	// invitation and bumps its resend count, or returns ErrConflict.
	Reissue(ctx context.Context, id, tokenHash string, expiresAt time.Time) error

	// DeleteStalePending removes pending invitations that expired before
	// cutoff and reports how many were removed.
	DeleteStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// Revocations records signed-out session tokens until they would have
// expired anyway.
type Revocations interface {
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	DeleteExpiredRevocations(ctx context.Context, now time.Time) (int64, error)
}
