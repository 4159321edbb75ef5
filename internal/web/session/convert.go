package session

import (
	"fmt"

	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

// UserFromWire parses the backend's user representation.
func UserFromWire(u travelsdk.User) (identity.User, error) {
	role, err := identity.ParseRole(u.Role)
	if err != nil {
		return identity.User{}, fmt.Errorf("session: user %s: %w", u.ID, err)
	}
	status, err := identity.ParseStatus(u.Status)
	if err != nil {
		return identity.User{}, fmt.Errorf("session: user %s: %w", u.ID, err)
	}

	out := identity.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      role,
		Status:    status,
		AgencyID:  u.AgencyID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if err := out.Validate(); err != nil {
		return identity.User{}, fmt.Errorf("session: user %s: %w", u.ID, err)
	}
	return out, nil
}
