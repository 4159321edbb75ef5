package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tripnest/tripnest/internal/devapi/store"
)

// DefaultInviteRetention is how long an expired pending invitation is kept
// around (it can still be resent) before housekeeping deletes it.
const DefaultInviteRetention = 30 * 24 * time.Hour

// HousekeepingService periodically deletes lapsed revocation records and
// long-expired pending invitations.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = DefaultInviteRetention
	}

	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs cleanup now and then every Interval until Stop.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "retention", s.Retention)
}

// Stop blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background(), time.Now().UTC())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background(), time.Now().UTC())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one pass. Each deletion is independent; a failure in one
// does not skip the other.
func (s *HousekeepingService) Cleanup(ctx context.Context, now time.Time) {
	var revocations, invitations int64

	n, err := s.Store.Revocations().DeleteExpiredRevocations(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired revocations", "error", err)
	} else {
		revocations = n
	}

	n, err = s.Store.Invitations().DeleteStalePending(ctx, now.Add(-s.Retention))
	if err != nil {
		s.Logger.Error("failed to delete stale invitations", "error", err)
	} else {
		invitations = n
	}

	s.Logger.Info("housekeeping cleanup completed",
		"revocations_deleted", revocations,
		"invitations_deleted", invitations,
	)
}
