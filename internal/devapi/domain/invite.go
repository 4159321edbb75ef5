package domain

import "github.com/tripnest/tripnest/internal/identity"

// Invite is a stored invitation. The raw token is never persisted, only its
// fingerprint.
type Invite struct {
	identity.Invitation
	TokenHash string
}

// InviteFilter narrows ListInvitations. Zero values match everything.
type InviteFilter struct {
	Status   identity.InvitationStatus
	AgencyID string
}
