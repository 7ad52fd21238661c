package compat

import (
	"context"
	"time"

	"github.com/sparkevents/spark-backend/internal/logging"
)

// RefreshScheduler reruns stale pair scores once a night, off-peak.
type RefreshScheduler struct {
	service    Service
	hour       int
	staleAfter time.Duration
	stopCh     chan struct{}
}

// NewRefreshScheduler creates a nightly refresh scheduler. hour is the local
// hour of day to run at.
func NewRefreshScheduler(service Service, hour int, staleAfter time.Duration) *RefreshScheduler {
	return &RefreshScheduler{
		service:    service,
		hour:       hour,
		staleAfter: staleAfter,
		stopCh:     make(chan struct{}),
	}
}

// Start runs the scheduler until Stop or context cancellation.
func (s *RefreshScheduler) Start(ctx context.Context) {
	logging.Log.WithField("hour", s.hour).Info("starting compatibility refresh scheduler")

	for {
		timer := time.NewTimer(s.untilNextRun(time.Now()))
		select {
		case <-timer.C:
			s.refresh(ctx)
		case <-s.stopCh:
			timer.Stop()
			logging.Log.Info("stopping compatibility refresh scheduler")
			return
		case <-ctx.Done():
			timer.Stop()
			logging.Log.Info("context cancelled, stopping compatibility refresh scheduler")
			return
		}
	}
}

// Stop stops the scheduler
func (s *RefreshScheduler) Stop() {
	close(s.stopCh)
}

func (s *RefreshScheduler) untilNextRun(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

func (s *RefreshScheduler) refresh(ctx context.Context) {
	start := time.Now()
	cutoff := start.Add(-s.staleAfter)

	count, err := s.service.RefreshStale(ctx, cutoff)
	if err != nil {
		logging.Log.WithError(err).Error("nightly compatibility refresh failed")
		return
	}

	logging.Log.WithFields(map[string]interface{}{
		"refreshed": count,
		"took":      time.Since(start).String(),
	}).Info("nightly compatibility refresh completed")
}
