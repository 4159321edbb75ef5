package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tripnest/tripnest/internal/devapi/service"
	"github.com/tripnest/tripnest/internal/identity"
)

func TestHousekeepingCleanup(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	stale, err := e.invites.Send(ctx, e.admin, service.SendInput{Email: "stale@tripnest.test", Role: "PLATFORM_STAFF"})
	require.NoError(t, err)
	require.NoError(t, e.store.Revocations().RevokeToken(ctx, "jti-old", e.clock.Now().Add(time.Hour)))

	e.clock.Advance(identity.DefaultInvitationTTL + 2*time.Hour)
	fresh, err := e.invites.Send(ctx, e.admin, service.SendInput{Email: "fresh@tripnest.test", Role: "PLATFORM_STAFF"})
	require.NoError(t, err)

	hk := service.NewHousekeepingService(e.store, logger, time.Hour, time.Hour)
	hk.Cleanup(ctx, e.clock.Now())

	_, err = e.store.Invitations().GetInvitationByID(ctx, stale.Invitation.ID)
	require.Error(t, err)
	_, err = e.store.Invitations().GetInvitationByID(ctx, fresh.Invitation.ID)
	require.NoError(t, err)

	gone, err := e.store.Revocations().IsRevoked(ctx, "jti-old")
	require.NoError(t, err)
	require.False(t, gone)
}

func TestHousekeepingStartStop(t *testing.T) {
	e := newEnv(t)
	hk := service.NewHousekeepingService(e.store, slog.New(slog.NewTextHandler(io.Discard, nil)), 0, 0)
	require.Equal(t, time.Hour, hk.Interval)
	require.Equal(t, service.DefaultInviteRetention, hk.Retention)

	hk.Start()
	hk.Stop()
}
