package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/cache"
	"github.com/aussiebroadwan/iam/internal/iam/metrics"
	"github.com/aussiebroadwan/iam/internal/iam/store"
)

// HousekeepingService periodically removes invitations whose validity
// window has closed.
type HousekeepingService struct {
	Store    store.Store
	Cache    *cache.Tenants
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, c *cache.Tenants, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Cache:    c,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
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

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup purges expired invitations once and returns how many went.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	s.Logger.Debug("starting housekeeping cleanup")

	purged, err := s.Store.Invitations().DeleteExpiredInvitations(ctx, clock(s.Now))
	if err != nil {
		s.Logger.Error("failed to delete expired invitations", "error", err)
		return 0
	}

	if purged > 0 {
		metrics.InvitationsPurged.Add(float64(purged))
		// Cached tenants carry their invitations.
		if s.Cache != nil {
			s.Cache.Clear()
		}
	}

	s.Logger.Info("housekeeping cleanup completed", "invitations_purged", purged)
	return purged
}
