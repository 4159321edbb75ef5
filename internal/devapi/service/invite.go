package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tripnest/tripnest/internal/devapi/domain"
	"github.com/tripnest/tripnest/internal/devapi/store"
	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/pkg/cryptox"
	"github.com/tripnest/tripnest/pkg/idx"
	"github.com/tripnest/tripnest/pkg/slogx"
)

type SendInput struct {
	Email    string `json:"email"     validate:"required,email,max=254"`
	Role     string `json:"role"      validate:"required,role"`
	AgencyID string `json:"agency_id" validate:"max=64"`
}

type CompleteInput struct {
	Token    string `json:"token"    validate:"required"`
	Name     string `json:"name"     validate:"required,max=120"`
	Phone    string `json:"phone"    validate:"omitempty,phone"`
	Password string `json:"password" validate:"required,password"`
}

// Issued is an invitation together with its raw token. The token is only
// available at the moment it is minted.
type Issued struct {
	Invitation identity.Invitation
	Token      string
}

// InviteService runs the invitation lifecycle: send, list, verify,
// complete, resend and revoke.
type InviteService struct {
	Store  store.Store
	Mailer Mailer

	// TTL is the redeemable window of a new or resent invitation.
	TTL time.Duration

	// BaseURL of the web tier, used to build onboarding links.
	BaseURL string

	Now func() time.Time
}

func (s *InviteService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *InviteService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return identity.DefaultInvitationTTL
}

// Send mints an invitation on behalf of inviter and delivers the link.
func (s *InviteService) Send(ctx context.Context, inviter identity.User, in SendInput) (Issued, error) {
	l := slogx.FromContext(ctx)

	if fe := identity.Validate(in); fe != nil {
		return Issued{}, fe
	}
	role := identity.MustParseRole(in.Role)
	if fe := identity.CheckAgency(role, in.AgencyID); fe != nil {
		return Issued{}, fe
	}
	if err := identity.CanInvite(inviter, role, in.AgencyID); err != nil {
		l.Warn("invitation refused",
			slog.String("inviter_id", inviter.ID),
			slog.String("target_role", role.String()),
			slog.Any("error", err),
		)
		return Issued{}, fmt.Errorf("%w: %w", ErrForbidden, err)
	}

	token, hash, err := newInviteToken()
	if err != nil {
		l.Error("failed to generate invitation token", slog.Any("error", err))
		return Issued{}, err
	}

	now := s.now()
	inv := domain.Invite{
		Invitation: identity.Invitation{
			ID:        idx.NewWithPrefix(idx.PrefixInvitation).String(),
			Email:     identity.NormalizeEmail(in.Email),
			Role:      role,
			AgencyID:  in.AgencyID,
			Status:    identity.InvitationPending,
			InvitedBy: inviter.ID,
			InvitedAt: now,
			ExpiresAt: now.Add(s.ttl()),
		},
		TokenHash: hash,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().GetUserByEmail(ctx, inv.Email)
		switch {
		case err == nil:
			return ErrDuplicateEmail
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		prev, err := tx.Invitations().GetPendingInvitationByEmail(ctx, inv.Email)
		switch {
		case err == nil && !prev.Expired(now):
			return ErrDuplicateInvite
		case err == nil:
			// A lapsed invitation must not block a new one.
			if err := tx.Invitations().MarkRevoked(ctx, prev.ID, now); err != nil {
				return err
			}
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		if err := tx.Invitations().CreateInvitation(ctx, inv); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateInvite
			}
			return err
		}
		return nil
	})
	if err != nil {
		return Issued{}, err
	}

	l.Info("invitation sent",
		slog.String("invitation_id", inv.ID),
		slog.String("inviter_id", inviter.ID),
		slog.String("role", role.String()),
		slog.String("agency_id", inv.AgencyID),
	)
	s.deliver(ctx, inv.Invitation, token, false)

	return Issued{Invitation: inv.Invitation, Token: token}, nil
}

// List returns the invitations viewer may see. Agency roles only see their
// own agency; status narrows the result when set.
func (s *InviteService) List(ctx context.Context, viewer identity.User, status string) ([]identity.Invitation, error) {
	var f domain.InviteFilter

	if status != "" {
		st, err := identity.ParseInvitationStatus(status)
		if err != nil {
			return nil, identity.FieldErrors{"status": "must be one of PENDING, COMPLETED, REVOKED"}
		}
		f.Status = st
	}

	switch viewer.Role.Scope() {
	case identity.ScopePlatform:
	case identity.ScopeAgency:
		f.AgencyID = viewer.AgencyID
	default:
		return nil, ErrForbidden
	}

	rows, err := s.Store.Invitations().ListInvitations(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]identity.Invitation, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Invitation)
	}
	return out, nil
}

// Verify resolves a raw token to its pending invitation.
func (s *InviteService) Verify(ctx context.Context, token string) (identity.Invitation, error) {
	inv, err := s.lookup(ctx, s.Store, token)
	if err != nil {
		return identity.Invitation{}, err
	}
	return inv.Invitation, nil
}

// Complete redeems token: the invitation becomes COMPLETED and an ACTIVE
// user with the invited email, role and agency is created, atomically.
func (s *InviteService) Complete(ctx context.Context, in CompleteInput) (identity.User, error) {
	l := slogx.FromContext(ctx)

	if fe := identity.Validate(in); fe != nil {
		return identity.User{}, fe
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		l.Error("failed to hash password", slog.Any("error", err))
		return identity.User{}, err
	}

	var user identity.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := s.lookup(ctx, tx, in.Token)
		if err != nil {
			return err
		}

		now := s.now()
		user = identity.User{
			ID:        idx.NewWithPrefix(idx.PrefixUser).String(),
			Name:      in.Name,
			Email:     inv.Email,
			Phone:     in.Phone,
			Role:      inv.Role,
			Status:    identity.StatusActive,
			AgencyID:  inv.AgencyID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := user.Validate(); err != nil {
			return err
		}

		err = tx.Users().CreateUser(ctx, domain.Account{User: user, PasswordHash: hash})
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrDuplicateEmail
		}
		if err != nil {
			return err
		}

		err = tx.Invitations().MarkCompleted(ctx, inv.ID, user.ID, now)
		if errors.Is(err, store.ErrConflict) {
			return ErrTokenInvalid
		}
		if err != nil {
			return err
		}

		l.Info("invitation completed",
			slog.String("invitation_id", inv.ID),
			slog.String("user_id", user.ID),
			slog.String("role", user.Role.String()),
		)
		return nil
	})
	if err != nil {
		return identity.User{}, err
	}
	return user, nil
}

// Resend rotates the token of a pending invitation, restarts its expiry
// window and delivers the new link. The previous token stops working.
func (s *InviteService) Resend(ctx context.Context, actor identity.User, id string) (Issued, error) {
	l := slogx.FromContext(ctx)

	inv, err := s.managed(ctx, actor, id)
	if err != nil {
		return Issued{}, err
	}

	if err := inv.Resend(s.now(), s.ttl()); err != nil {
		return Issued{}, ErrNotPending
	}

	token, hash, err := newInviteToken()
	if err != nil {
		l.Error("failed to generate invitation token", slog.Any("error", err))
		return Issued{}, err
	}

	err = s.Store.Invitations().Reissue(ctx, inv.ID, hash, inv.ExpiresAt)
	if errors.Is(err, store.ErrConflict) {
		return Issued{}, ErrNotPending
	}
	if err != nil {
		return Issued{}, err
	}

	l.Info("invitation resent", slog.String("invitation_id", inv.ID), slog.Int("resend_count", inv.ResendCount))
	s.deliver(ctx, inv.Invitation, token, true)

	return Issued{Invitation: inv.Invitation, Token: token}, nil
}

// Revoke withdraws a pending invitation. It is terminal.
func (s *InviteService) Revoke(ctx context.Context, actor identity.User, id string) error {
	inv, err := s.managed(ctx, actor, id)
	if err != nil {
		return err
	}

	now := s.now()
	if err := inv.Revoke(now); err != nil {
		return ErrNotPending
	}

	err = s.Store.Invitations().MarkRevoked(ctx, inv.ID, now)
	if errors.Is(err, store.ErrConflict) {
		return ErrNotPending
	}
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("invitation revoked",
		slog.String("invitation_id", inv.ID),
		slog.String("actor_id", actor.ID),
	)
	return nil
}

// lookup finds the invitation for a raw token and checks it can still be
// redeemed.
func (s *InviteService) lookup(ctx context.Context, st store.Store, token string) (domain.Invite, error) {
	if token == "" {
		return domain.Invite{}, ErrTokenInvalid
	}

	inv, err := st.Invitations().GetInvitationByTokenHash(ctx, cryptox.FingerprintToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return domain.Invite{}, ErrTokenInvalid
	}
	if err != nil {
		return domain.Invite{}, err
	}

	switch {
	case inv.Status != identity.InvitationPending:
		return domain.Invite{}, ErrTokenInvalid
	case inv.Expired(s.now()):
		return domain.Invite{}, ErrTokenExpired
	}
	return inv, nil
}

// managed loads invitation id if actor has authority over it, which is the
// same authority needed to send it in the first place.
func (s *InviteService) managed(ctx context.Context, actor identity.User, id string) (domain.Invite, error) {
	inv, err := s.Store.Invitations().GetInvitationByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Invite{}, ErrNotFound
	}
	if err != nil {
		return domain.Invite{}, err
	}

	if err := identity.CanInvite(actor, inv.Role, inv.AgencyID); err != nil {
		return domain.Invite{}, fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	return inv, nil
}

func (s *InviteService) deliver(ctx context.Context, inv identity.Invitation, token string, resend bool) {
	if s.Mailer == nil {
		return
	}
	err := s.Mailer.SendInvitation(ctx, InvitationMail{
		To:        inv.Email,
		Role:      inv.Role,
		AgencyID:  inv.AgencyID,
		Link:      OnboardingLink(s.BaseURL, token),
		ExpiresAt: inv.ExpiresAt,
		Resend:    resend,
	})
	if err != nil {
		// The inviter still receives the token, so delivery is best effort.
		slogx.FromContext(ctx).Error("invitation delivery failed",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
	}
}

func newInviteToken() (token, hash string, err error) {
	token, err = cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", "", err
	}
	return token, cryptox.FingerprintToken(token), nil
}
