// Package onboarding drives the invitation lifecycle from both sides: the
// inviter who sends, resends and revokes, and the invitee who verifies a
// token and completes registration.
//
// Every operation checks its input locally first and returns
// travelsdk.ErrValidation without touching the network when that fails.
// Nothing is retried automatically.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/pkg/slogx"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

// Verifier looks up invitation tokens. *travelsdk.SDKClient implements it.
type Verifier interface {
	VerifyInvite(ctx context.Context, token string) (*travelsdk.InviteDetails, error)
}

// Inviter manages invitations for a signed-in user. *travelsdk.Session
// implements it.
type Inviter interface {
	SendInvite(ctx context.Context, req travelsdk.SendInviteRequest) (*travelsdk.InviteIssued, error)
	ListInvites(ctx context.Context, status string) ([]travelsdk.Invitation, error)
	ResendInvite(ctx context.Context, id string) (*travelsdk.InviteIssued, error)
	RevokeInvite(ctx context.Context, id string) error
}

// Completer redeems a token and signs the new user in. *session.Store
// implements it.
type Completer interface {
	CompleteOnboarding(ctx context.Context, req travelsdk.CompleteOnboardingRequest) (identity.User, error)
}

// Workflow runs the invitation operations.
type Workflow struct {
	Backend Verifier
	Now     func() time.Time
}

func NewWorkflow(backend Verifier) *Workflow {
	return &Workflow{Backend: backend, Now: time.Now}
}

func (w *Workflow) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}

// SendInviteInput is the invite form.
type SendInviteInput struct {
	Email    string `form:"email" validate:"required,email"`
	Role     string `form:"role" validate:"required,role"`
	AgencyID string `form:"agency_id" validate:"max=64"`
}

// Issued is a freshly minted invitation and its one-time token.
type Issued struct {
	Invitation identity.Invitation
	Token      string
}

// SendInvite issues an invitation on behalf of inviter. The email format,
// role, role/agency correlation and inviter's capability are checked
// before any call. Backend failures are travelsdk.ErrDuplicateInvite or
// travelsdk.ErrRequestFailed.
func (w *Workflow) SendInvite(ctx context.Context, inviter identity.User, api Inviter, in SendInviteInput) (Issued, error) {
	fe := identity.Validate(in)
	role, err := identity.ParseRole(in.Role)
	if err == nil {
		fe = fe.Merge(identity.CheckAgency(role, in.AgencyID))
		if len(fe) == 0 {
			if err := identity.CanInvite(inviter, role, in.AgencyID); err != nil {
				fe = identity.FieldErrors{"role": capabilityMessage(inviter, role)}
			}
		}
	}
	if len(fe) > 0 {
		return Issued{}, travelsdk.NewValidationError(fe)
	}
	if api == nil {
		return Issued{}, travelsdk.ErrUnauthenticated
	}

	out, err := api.SendInvite(ctx, travelsdk.SendInviteRequest{
		Email:    identity.NormalizeEmail(in.Email),
		Role:     role.String(),
		AgencyID: in.AgencyID,
	})
	if err != nil {
		return Issued{}, logFailure(ctx, "send invite", err)
	}
	return issuedFromWire(out)
}

func capabilityMessage(inviter identity.User, role identity.Role) string {
	if inviter.Role == identity.RoleAgencyAdmin && role.IsAgencyScoped() {
		return "can only be granted within your own agency"
	}
	return fmt.Sprintf("you cannot invite %s users", role.Label())
}

// InviteDetails is what an invitee learns from a valid token.
type InviteDetails struct {
	Email     string
	Role      identity.Role
	AgencyID  string
	ExpiresAt time.Time
}

// VerifyInviteToken checks token without consuming it. A missing token is
// travelsdk.ErrTokenInvalid without a call; otherwise the backend decides
// between ErrTokenInvalid, ErrTokenExpired and ErrRequestFailed.
func (w *Workflow) VerifyInviteToken(ctx context.Context, token string) (InviteDetails, error) {
	if token == "" {
		return InviteDetails{}, travelsdk.ErrTokenInvalid
	}

	d, err := w.Backend.VerifyInvite(ctx, token)
	if err != nil {
		return InviteDetails{}, logFailure(ctx, "verify invite", err)
	}

	if st, err := identity.ParseInvitationStatus(d.Status); err == nil && st != identity.InvitationPending {
		return InviteDetails{}, travelsdk.ErrTokenInvalid
	}
	if !d.ExpiresAt.IsZero() && !w.now().Before(d.ExpiresAt) {
		return InviteDetails{}, travelsdk.ErrTokenExpired
	}

	role, err := identity.ParseRole(d.Role)
	if err != nil {
		return InviteDetails{}, logFailure(ctx, "verify invite", fmt.Errorf("%w: %v", travelsdk.ErrRequestFailed, err))
	}
	return InviteDetails{Email: d.Email, Role: role, AgencyID: d.AgencyID, ExpiresAt: d.ExpiresAt}, nil
}

// CompleteInput is the onboarding form. ConfirmPassword is only compared
// locally.
type CompleteInput struct {
	Token           string `form:"token"`
	Name            string `form:"name" validate:"required,max=120"`
	Phone           string `form:"phone" validate:"required,phone"`
	Password        string `form:"password" validate:"required,password"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

// Result is a completed onboarding.
type Result struct {
	User identity.User
	// Landing is the new user's home page.
	Landing string
}

// CompleteOnboarding redeems the invitation and signs the new user in
// through c. The backend accepts a token once; a repeat fails with
// travelsdk.ErrTokenInvalid.
func (w *Workflow) CompleteOnboarding(ctx context.Context, c Completer, in CompleteInput) (Result, error) {
	if in.Token == "" {
		return Result{}, travelsdk.ErrTokenInvalid
	}
	if fe := identity.Validate(in); len(fe) > 0 {
		return Result{}, travelsdk.NewValidationError(fe)
	}

	u, err := c.CompleteOnboarding(ctx, travelsdk.CompleteOnboardingRequest{
		Token:    in.Token,
		Name:     in.Name,
		Phone:    in.Phone,
		Password: in.Password,
	})
	if err != nil {
		return Result{}, logFailure(ctx, "complete onboarding", err)
	}

	slogx.FromContext(ctx).Info("onboarding completed", "user_id", u.ID, "role", u.Role.String())
	return Result{User: u, Landing: u.Role.HomePath()}, nil
}

// ListInvites returns the invitations visible to the caller, optionally
// filtered by status.
func (w *Workflow) ListInvites(ctx context.Context, api Inviter, status string) ([]identity.Invitation, error) {
	if status != "" {
		if _, err := identity.ParseInvitationStatus(status); err != nil {
			return nil, travelsdk.NewValidationError(identity.FieldErrors{"status": "must be PENDING, COMPLETED or REVOKED"})
		}
	}
	if api == nil {
		return nil, travelsdk.ErrUnauthenticated
	}

	wire, err := api.ListInvites(ctx, status)
	if err != nil {
		return nil, logFailure(ctx, "list invites", err)
	}

	out := make([]identity.Invitation, 0, len(wire))
	for _, inv := range wire {
		v, err := InvitationFromWire(inv)
		if err != nil {
			return nil, logFailure(ctx, "list invites", fmt.Errorf("%w: %v", travelsdk.ErrRequestFailed, err))
		}
		out = append(out, v)
	}
	return out, nil
}

// ResendInvite rotates the token of a pending invitation. The previous
// token stops working; the invitation stays PENDING.
func (w *Workflow) ResendInvite(ctx context.Context, api Inviter, id string) (Issued, error) {
	if id == "" {
		return Issued{}, travelsdk.NewValidationError(identity.FieldErrors{"id": "is required"})
	}
	if api == nil {
		return Issued{}, travelsdk.ErrUnauthenticated
	}

	out, err := api.ResendInvite(ctx, id)
	if err != nil {
		return Issued{}, logFailure(ctx, "resend invite", err)
	}
	return issuedFromWire(out)
}

// RevokeInvite withdraws a pending invitation for good.
func (w *Workflow) RevokeInvite(ctx context.Context, api Inviter, id string) error {
	if id == "" {
		return travelsdk.NewValidationError(identity.FieldErrors{"id": "is required"})
	}
	if api == nil {
		return travelsdk.ErrUnauthenticated
	}

	if err := api.RevokeInvite(ctx, id); err != nil {
		return logFailure(ctx, "revoke invite", err)
	}
	return nil
}

func issuedFromWire(out *travelsdk.InviteIssued) (Issued, error) {
	inv, err := InvitationFromWire(out.Invitation)
	if err != nil {
		return Issued{}, fmt.Errorf("%w: %v", travelsdk.ErrRequestFailed, err)
	}
	return Issued{Invitation: inv, Token: out.Token}, nil
}

// logFailure records transient failures, which the caller only shows as a
// notice.
func logFailure(ctx context.Context, op string, err error) error {
	if Outcome(err) == Retryable && !errors.Is(err, context.Canceled) {
		slogx.FromContext(ctx).Error(op+" failed", "error", err)
	}
	return err
}
