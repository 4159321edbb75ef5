package service

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/tripnest/tripnest/internal/identity"
)

// InvitationMail is everything a delivery channel needs to reach an invitee.
type InvitationMail struct {
	To        string
	Role      identity.Role
	AgencyID  string
	Link      string
	ExpiresAt time.Time
	Resend    bool
}

// Mailer delivers invitation links.
type Mailer interface {
	SendInvitation(ctx context.Context, m InvitationMail) error
}

// LogMailer writes the onboarding link to the log instead of sending mail.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) SendInvitation(ctx context.Context, mail InvitationMail) error {
	m.Logger.InfoContext(ctx, "invitation ready",
		slog.String("to", mail.To),
		slog.String("role", mail.Role.String()),
		slog.String("agency_id", mail.AgencyID),
		slog.String("link", mail.Link),
		slog.Time("expires_at", mail.ExpiresAt),
		slog.Bool("resend", mail.Resend),
	)
	return nil
}

// OnboardingLink builds "<base>/onboarding?token=<token>".
func OnboardingLink(base, token string) string {
	return base + "/onboarding?" + url.Values{"token": {token}}.Encode()
}
