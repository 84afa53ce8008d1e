package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shelfside/bookforum/internal/forum/store"
)

// HousekeepingService periodically sweeps expired login challenges so
// abandoned password steps do not accumulate.
type HousekeepingService struct {
	Store    store.Store
	Interval time.Duration
	Logger   *slog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// Start launches the background sweep loop. Call Stop to end it.
func (s *HousekeepingService) Start() {
	if s.Interval <= 0 {
		s.Interval = 5 * time.Minute
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.run()
}

// Stop signals the loop to exit and waits for it to finish.
func (s *HousekeepingService) Stop() {
	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	<-s.doneCh
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// One sweep up front so restarts do not wait a full interval.
	s.sweep()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *HousekeepingService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.Store.LoginChallenges().DeleteExpiredLoginChallenges(ctx, time.Now().UTC()); err != nil {
		s.Logger.Error("housekeeping sweep failed", slog.Any("error", err))
	}
}
