package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// Start runs one scan immediately and then on the configured schedule.
func (s *Service) Start(wg *sync.WaitGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errors.New("scheduler already started")
	}

	cronLog := cron.PrintfLogger(s.logger)
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := c.AddFunc(s.schedule, s.runScheduled); err != nil {
		return fmt.Errorf("invalid scan schedule %q: %w", s.schedule, err)
	}
	s.cron = c

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runScheduled()
	}()
	c.Start()

	s.logger.Infof("Notification scheduler started (schedule %s)", s.schedule)
	return nil
}

// Stop halts the schedule and waits for a running scheduled scan to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.logger.Info("Notification scheduler stopped")
}

// runScheduled scans with a context of its own; scans are not cancelled
// part way through.
func (s *Service) runScheduled() {
	if _, err := s.Scan(context.Background()); err != nil {
		if errors.Is(err, ErrScanInProgress) {
			s.logger.Info("Skipping scheduled scan, another scan holds the lock")
			return
		}
		s.logger.WithError(err).Error("Scheduled notification scan failed")
	}
}
