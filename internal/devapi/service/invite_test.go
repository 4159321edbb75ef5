package service_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tripnest/tripnest/internal/devapi/service"
	"github.com/tripnest/tripnest/internal/identity"
)

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	require.Equal(t, "/onboarding", u.Path)
	return u.Query().Get("token")
}

func TestSendInvite(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	issued, err := e.invites.Send(ctx, e.agencyAdmin, service.SendInput{
		Email: "New.Hire@Sunny.travel", Role: "AGENCY_STAFF", AgencyID: "agc_sunny",
	})
	require.NoError(t, err)
	require.Len(t, issued.Token, 43)
	require.Equal(t, "new.hire@sunny.travel", issued.Invitation.Email)
	require.Equal(t, identity.InvitationPending, issued.Invitation.Status)
	require.Equal(t, e.agencyAdmin.ID, issued.Invitation.InvitedBy)
	require.Equal(t, e.clock.Now().Add(identity.DefaultInvitationTTL), issued.Invitation.ExpiresAt)
	require.True(t, strings.HasPrefix(issued.Invitation.ID, "inv_"))

	mail := e.mailer.last()
	require.Equal(t, "new.hire@sunny.travel", mail.To)
	require.Equal(t, issued.Token, tokenFromLink(t, mail.Link))
	require.False(t, mail.Resend)

	tests := []struct {
		name    string
		inviter identity.User
		in      service.SendInput
		err     error
		field   string
	}{
		{
			name:    "pending invitation exists",
			inviter: e.admin,
			in:      service.SendInput{Email: "new.hire@sunny.travel", Role: "AGENCY_ADMIN", AgencyID: "agc_sunny"},
			err:     service.ErrDuplicateInvite,
		},
		{
			name:    "registered email",
			inviter: e.admin,
			in:      service.SendInput{Email: "cara@example.com", Role: "PLATFORM_STAFF"},
			err:     service.ErrDuplicateEmail,
		},
		{
			name:    "agency admin into another agency",
			inviter: e.agencyAdmin,
			in:      service.SendInput{Email: "x@other.travel", Role: "AGENCY_STAFF", AgencyID: "agc_other"},
			err:     service.ErrForbidden,
		},
		{
			name:    "agency admin inviting platform staff",
			inviter: e.agencyAdmin,
			in:      service.SendInput{Email: "x@tripnest.test", Role: "PLATFORM_STAFF"},
			err:     service.ErrForbidden,
		},
		{
			name:    "platform staff cannot invite",
			inviter: e.staff,
			in:      service.SendInput{Email: "x@sunny.travel", Role: "AGENCY_STAFF", AgencyID: "agc_sunny"},
			err:     service.ErrForbidden,
		},
		{
			name:    "agency role without agency",
			inviter: e.admin,
			in:      service.SendInput{Email: "x@sunny.travel", Role: "AGENCY_STAFF"},
			field:   "agency_id",
		},
		{
			name:    "unknown role",
			inviter: e.admin,
			in:      service.SendInput{Email: "x@sunny.travel", Role: "PILOT"},
			field:   "role",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.invites.Send(ctx, tt.inviter, tt.in)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			var fe identity.FieldErrors
			require.ErrorAs(t, err, &fe)
			require.Contains(t, fe, tt.field)
		})
	}
}

func TestSendReplacesLapsedInvitation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	in := service.SendInput{Email: "late@sunny.travel", Role: "AGENCY_STAFF", AgencyID: "agc_sunny"}
	first, err := e.invites.Send(ctx, e.admin, in)
	require.NoError(t, err)

	e.clock.Advance(identity.DefaultInvitationTTL + time.Minute)

	second, err := e.invites.Send(ctx, e.admin, in)
	require.NoError(t, err)
	require.NotEqual(t, first.Invitation.ID, second.Invitation.ID)

	revoked, err := e.invites.List(ctx, e.admin, "REVOKED")
	require.NoError(t, err)
	require.Len(t, revoked, 1)
	require.Equal(t, first.Invitation.ID, revoked[0].ID)
}

func TestVerifyInvite(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	issued, err := e.invites.Send(ctx, e.admin, service.SendInput{Email: "v@tripnest.test", Role: "PLATFORM_STAFF"})
	require.NoError(t, err)

	inv, err := e.invites.Verify(ctx, issued.Token)
	require.NoError(t, err)
	require.Equal(t, identity.RolePlatformStaff, inv.Role)

	_, err = e.invites.Verify(ctx, "")
	require.ErrorIs(t, err, service.ErrTokenInvalid)
	_, err = e.invites.Verify(ctx, "garbage")
	require.ErrorIs(t, err, service.ErrTokenInvalid)

	e.clock.Advance(identity.DefaultInvitationTTL)
	_, err = e.invites.Verify(ctx, issued.Token)
	require.ErrorIs(t, err, service.ErrTokenExpired)
}

func TestCompleteInvite(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	issued, err := e.invites.Send(ctx, e.agencyAdmin, service.SendInput{
		Email: "joiner@sunny.travel", Role: "AGENCY_USER", AgencyID: "agc_sunny",
	})
	require.NoError(t, err)
	require.Equal(t, identity.RoleAgencyStaff, issued.Invitation.Role)

	t.Run("validation leaves the invitation usable", func(t *testing.T) {
		_, err := e.invites.Complete(ctx, service.CompleteInput{Token: issued.Token, Name: "Jo", Password: "short"})
		var fe identity.FieldErrors
		require.ErrorAs(t, err, &fe)
		require.Contains(t, fe, "password")

		_, err = e.invites.Verify(ctx, issued.Token)
		require.NoError(t, err)
	})

	user, err := e.invites.Complete(ctx, service.CompleteInput{
		Token: issued.Token, Name: "Jo Joiner", Phone: "+61 400 000 000", Password: "Joiner2026",
	})
	require.NoError(t, err)
	require.Equal(t, "joiner@sunny.travel", user.Email)
	require.Equal(t, identity.RoleAgencyStaff, user.Role)
	require.Equal(t, "agc_sunny", user.AgencyID)
	require.Equal(t, identity.StatusActive, user.Status)

	_, err = e.auth.Login(ctx, "joiner@sunny.travel", "Joiner2026")
	require.NoError(t, err)

	t.Run("second completion fails", func(t *testing.T) {
		_, err := e.invites.Complete(ctx, service.CompleteInput{Token: issued.Token, Name: "Again", Password: "Joiner2026"})
		require.ErrorIs(t, err, service.ErrTokenInvalid)

		_, err = e.invites.Verify(ctx, issued.Token)
		require.ErrorIs(t, err, service.ErrTokenInvalid)
	})

	t.Run("recorded as completed", func(t *testing.T) {
		list, err := e.invites.List(ctx, e.agencyAdmin, "COMPLETED")
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, user.ID, list[0].UserID)
		require.NotNil(t, list[0].CompletedAt)
	})
}

func TestCompleteInviteConcurrently(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	issued, err := e.invites.Send(ctx, e.admin, service.SendInput{Email: "race@tripnest.test", Role: "PLATFORM_STAFF"})
	require.NoError(t, err)

	const n = 4
	var (
		wg   sync.WaitGroup
		errs = make([]error, n)
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.invites.Complete(ctx, service.CompleteInput{
				Token: issued.Token, Name: "Racer", Password: "Racer2026",
			})
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		default:
			require.True(t, errors.Is(err, service.ErrTokenInvalid) || errors.Is(err, service.ErrDuplicateEmail), err)
		}
	}
	require.Equal(t, 1, ok)
}

func TestResendInvite(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	issued, err := e.invites.Send(ctx, e.agencyAdmin, service.SendInput{
		Email: "again@sunny.travel", Role: "AGENCY_STAFF", AgencyID: "agc_sunny",
	})
	require.NoError(t, err)

	e.clock.Advance(time.Hour)
	again, err := e.invites.Resend(ctx, e.agencyAdmin, issued.Invitation.ID)
	require.NoError(t, err)
	require.NotEqual(t, issued.Token, again.Token)
	require.Equal(t, identity.InvitationPending, again.Invitation.Status)
	require.Equal(t, 1, again.Invitation.ResendCount)
	require.Equal(t, e.clock.Now().Add(identity.DefaultInvitationTTL), again.Invitation.ExpiresAt)
	require.True(t, e.mailer.last().Resend)

	_, err = e.invites.Verify(ctx, issued.Token)
	require.ErrorIs(t, err, service.ErrTokenInvalid, "previous token is dead")

	_, err = e.invites.Verify(ctx, again.Token)
	require.NoError(t, err)

	_, err = e.invites.Resend(ctx, e.customer, issued.Invitation.ID)
	require.ErrorIs(t, err, service.ErrForbidden)

	_, err = e.invites.Resend(ctx, e.admin, "inv_missing")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestRevokeInvite(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	issued, err := e.invites.Send(ctx, e.admin, service.SendInput{Email: "gone@tripnest.test", Role: "PLATFORM_STAFF"})
	require.NoError(t, err)

	require.NoError(t, e.invites.Revoke(ctx, e.admin, issued.Invitation.ID))

	_, err = e.invites.Verify(ctx, issued.Token)
	require.ErrorIs(t, err, service.ErrTokenInvalid)

	require.ErrorIs(t, e.invites.Revoke(ctx, e.admin, issued.Invitation.ID), service.ErrNotPending)
	_, err = e.invites.Resend(ctx, e.admin, issued.Invitation.ID)
	require.ErrorIs(t, err, service.ErrNotPending)
}

func TestListInvitesScope(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.invites.Send(ctx, e.admin, service.SendInput{Email: "a@sunny.travel", Role: "AGENCY_STAFF", AgencyID: "agc_sunny"})
	require.NoError(t, err)
	_, err = e.invites.Send(ctx, e.admin, service.SendInput{Email: "b@other.travel", Role: "AGENCY_STAFF", AgencyID: "agc_other"})
	require.NoError(t, err)

	all, err := e.invites.List(ctx, e.staff, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	own, err := e.invites.List(ctx, e.agencyAdmin, "PENDING")
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, "a@sunny.travel", own[0].Email)

	_, err = e.invites.List(ctx, e.customer, "")
	require.ErrorIs(t, err, service.ErrForbidden)

	_, err = e.invites.List(ctx, e.admin, "LOST")
	var fe identity.FieldErrors
	require.ErrorAs(t, err, &fe)
}
