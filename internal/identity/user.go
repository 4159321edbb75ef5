package identity

import (
	"fmt"
	"time"
)

// Status of a user account.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusInvited   Status = "INVITED"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusActive, StatusInactive, StatusSuspended, StatusInvited:
		return st, nil
	}
	return "", fmt.Errorf("identity: unknown status %q", s)
}

// User is the identity record held by a session.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	Status    Status    `json:"status"`
	AgencyID  string    `json:"agency_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the role/agency correlation.
func (u User) Validate() error {
	return CheckAgency(u.Role, u.AgencyID).OrNil()
}

// CheckAgency enforces that agency-scoped roles carry an agency id and that
// no other role does.
func CheckAgency(r Role, agencyID string) FieldErrors {
	switch {
	case !r.Valid():
		return FieldErrors{"role": "must be a known role"}
	case r.IsAgencyScoped() && agencyID == "":
		return FieldErrors{"agency_id": "is required for " + r.Label() + " accounts"}
	case !r.IsAgencyScoped() && agencyID != "":
		return FieldErrors{"agency_id": "must be empty for " + r.Label() + " accounts"}
	}
	return nil
}

// CanInvite decides whether inviter may invite a user with role target into
// agencyID. Platform admins may invite any role; agency admins may only
// invite agency roles into their own agency.
func CanInvite(inviter User, target Role, agencyID string) error {
	switch inviter.Role {
	case RolePlatformAdmin:
		return nil
	case RoleAgencyAdmin:
		if !target.IsAgencyScoped() {
			return fmt.Errorf("%w: agency admins can only invite agency roles", ErrNotPermitted)
		}
		if agencyID != inviter.AgencyID {
			return fmt.Errorf("%w: agency admins can only invite into their own agency", ErrNotPermitted)
		}
		return nil
	}
	return fmt.Errorf("%w: %s cannot send invitations", ErrNotPermitted, inviter.Role.Label())
}

// InvitableRoles lists the roles inviter may offer on the invite form.
func InvitableRoles(inviter User) []Role {
	switch inviter.Role {
	case RolePlatformAdmin:
		return []Role{RolePlatformAdmin, RolePlatformStaff, RoleAgencyAdmin, RoleAgencyStaff}
	case RoleAgencyAdmin:
		return []Role{RoleAgencyAdmin, RoleAgencyStaff}
	}
	return nil
}
