package onboarding

import (
	"fmt"

	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

// InvitationFromWire parses the backend's invitation representation.
func InvitationFromWire(in travelsdk.Invitation) (identity.Invitation, error) {
	role, err := identity.ParseRole(in.Role)
	if err != nil {
		return identity.Invitation{}, fmt.Errorf("invitation %s: %w", in.ID, err)
	}
	status, err := identity.ParseInvitationStatus(in.Status)
	if err != nil {
		return identity.Invitation{}, fmt.Errorf("invitation %s: %w", in.ID, err)
	}

	return identity.Invitation{
		ID:          in.ID,
		Email:       in.Email,
		Role:        role,
		AgencyID:    in.AgencyID,
		Status:      status,
		InvitedBy:   in.InvitedBy,
		InvitedAt:   in.InvitedAt,
		ExpiresAt:   in.ExpiresAt,
		CompletedAt: in.CompletedAt,
		RevokedAt:   in.RevokedAt,
		ResendCount: in.ResendCount,
	}, nil
}
