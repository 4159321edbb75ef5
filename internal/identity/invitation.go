package identity

import (
	"fmt"
	"time"
)

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "PENDING"
	InvitationCompleted InvitationStatus = "COMPLETED"
	InvitationRevoked   InvitationStatus = "REVOKED"
)

func ParseInvitationStatus(s string) (InvitationStatus, error) {
	switch st := InvitationStatus(s); st {
	case InvitationPending, InvitationCompleted, InvitationRevoked:
		return st, nil
	}
	return "", fmt.Errorf("identity: unknown invitation status %q", s)
}

// DefaultInvitationTTL is how long an invitation link stays redeemable.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// Invitation grants one future user the right to register with a fixed
// email, role and agency. Only the transitions
//
//	PENDING -> COMPLETED
//	PENDING -> REVOKED
//	PENDING -> PENDING (resend)
//
// are allowed.
type Invitation struct {
	ID          string
	Email       string
	Role        Role
	AgencyID    string
	Status      InvitationStatus
	InvitedBy   string
	InvitedAt   time.Time
	ExpiresAt   time.Time
	CompletedAt *time.Time
	RevokedAt   *time.Time
	UserID      string
	ResendCount int
}

// Expired reports whether a pending invitation has passed its expiry.
// Completed and revoked invitations are never "expired".
func (inv *Invitation) Expired(now time.Time) bool {
	return inv.Status == InvitationPending && !now.Before(inv.ExpiresAt)
}

// Redeemable reports whether the invitation can still be completed.
func (inv *Invitation) Redeemable(now time.Time) bool {
	return inv.Status == InvitationPending && !inv.Expired(now)
}

// Complete marks the invitation as consumed by userID.
func (inv *Invitation) Complete(now time.Time, userID string) error {
	if inv.Status != InvitationPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, inv.Status, InvitationCompleted)
	}
	if inv.Expired(now) {
		return ErrInvitationExpired
	}
	inv.Status = InvitationCompleted
	inv.CompletedAt = &now
	inv.UserID = userID
	return nil
}

// Revoke withdraws a pending invitation. Expired pending invitations can
// still be revoked.
func (inv *Invitation) Revoke(now time.Time) error {
	if inv.Status != InvitationPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, inv.Status, InvitationRevoked)
	}
	inv.Status = InvitationRevoked
	inv.RevokedAt = &now
	return nil
}

// Resend restarts the expiry window. The caller is responsible for issuing
// a fresh token.
func (inv *Invitation) Resend(now time.Time, ttl time.Duration) error {
	if inv.Status != InvitationPending {
		return fmt.Errorf("%w: resend from %s", ErrInvalidTransition, inv.Status)
	}
	inv.ExpiresAt = now.Add(ttl)
	inv.ResendCount++
	return nil
}
