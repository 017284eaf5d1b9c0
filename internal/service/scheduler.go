package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler periodically rescores stored borrowers
type Scheduler struct {
	cron    *cron.Cron
	svc     *Service
	log     *logrus.Logger
	timeout time.Duration
}

// NewScheduler creates a scheduler; overlapping runs are skipped
func NewScheduler(svc *Service, log *logrus.Logger) *Scheduler {
	logger := cron.PrintfLogger(log)
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger))),
		svc:     svc,
		log:     log,
		timeout: time.Hour,
	}
}

// Start registers the rescoring job with a cron spec and starts the scheduler
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return fmt.Errorf("invalid rescore schedule %q: %w", spec, err)
	}
	s.cron.Start()
	s.log.Infof("Batch rescoring scheduled: %s", spec)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.svc.RescoreAll(ctx); err != nil {
		s.log.Errorf("Batch rescoring failed: %v", err)
	}
}
