package travelsdk

import "time"

// ErrorResponse is the JSON error body of every failed call.
type ErrorResponse struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description,omitempty"`
	Fields           map[string]string `json:"fields,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the dependencies /readyz probes.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// User is the wire form of an account.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	AgencyID  string    `json:"agency_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse is returned by every call that starts a session.
type AuthResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int  `json:"expires_in"`
	User      User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Invitation is the inviter-side view of an invitation. The token itself is
// only ever returned once, by SendInvite and ResendInvite.
type Invitation struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	AgencyID    string     `json:"agency_id,omitempty"`
	Status      string     `json:"status"`
	InvitedBy   string     `json:"invited_by"`
	InvitedAt   time.Time  `json:"invited_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
	ResendCount int        `json:"resend_count"`
}

type SendInviteRequest struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	AgencyID string `json:"agency_id,omitempty"`
}

// InviteIssued carries a freshly minted invitation token.
type InviteIssued struct {
	Invitation Invitation `json:"invitation"`
	Token      string     `json:"token"`
}

type ListInvitesResponse struct {
	Invitations []Invitation `json:"invitations"`
}

// InviteDetails is what an invitee may learn about a pending invitation.
type InviteDetails struct {
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	AgencyID  string    `json:"agency_id,omitempty"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CompleteOnboardingRequest struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}
