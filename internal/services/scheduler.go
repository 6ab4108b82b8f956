package services

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SchedulerService rebuilds the dataset on a cron schedule. Overlapping
// runs are skipped, not queued; a rebuild that takes longer than the
// interval just means the next tick does nothing.
type SchedulerService struct {
	builder *BuilderService
	cron    *cron.Cron
	logger  *logrus.Logger
	busy    chan struct{}
}

func NewSchedulerService(builder *BuilderService, logger *logrus.Logger) *SchedulerService {
	return &SchedulerService{
		builder: builder,
		cron:    cron.New(),
		logger:  logger,
		busy:    make(chan struct{}, 1),
	}
}

// Start registers the rebuild job under the given cron spec and starts
// the scheduler. An empty spec disables scheduling.
func (s *SchedulerService) Start(spec string) error {
	if spec == "" {
		s.logger.Info("No rebuild schedule configured, scheduler idle")
		return nil
	}

	_, err := s.cron.AddFunc(spec, s.rebuild)
	if err != nil {
		return fmt.Errorf("invalid rebuild schedule %q: %w", spec, err)
	}

	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"component": "scheduler",
		"schedule":  spec,
	}).Info("Scheduled dataset rebuild")
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *SchedulerService) rebuild() {
	select {
	case s.busy <- struct{}{}:
		defer func() { <-s.busy }()
	default:
		s.logger.Warn("Previous rebuild still running, skipping tick")
		return
	}

	if _, err := s.builder.Run(context.Background()); err != nil {
		s.logger.WithError(err).Error("Scheduled rebuild failed")
	}
}
