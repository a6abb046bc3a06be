package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/service"
)

// Scheduler manages scheduled season re-ingestion and refitting. In-progress
// seasons change daily; a fitted prior model goes stale with them.
type Scheduler struct {
	cron            *cron.Cron
	ingestionSvc    *service.IngestionService
	estimatorSvc    *service.EstimatorService
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(ingestionSvc *service.IngestionService, estimatorSvc *service.EstimatorService, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		ingestionSvc:    ingestionSvc,
		estimatorSvc:    estimatorSvc,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleSeasonRefresh schedules re-ingestion and refit of a season table
func (s *Scheduler) ScheduleSeasonRefresh(cronExpression string, season string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		s.logger.WithField("season", season).Info("Starting scheduled season refresh")

		summary, err := s.ingestionSvc.IngestSeason(ctx, season)
		if err != nil {
			s.logger.WithError(err).WithField("season", season).Error("Scheduled ingestion failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"season":   season,
			"kept":     summary.Kept,
			"rejected": summary.Rejected,
		}).Info("Scheduled ingestion completed")

		outcome, err := s.estimatorSvc.Run(ctx, season)
		if err != nil {
			s.logger.WithError(err).WithField("season", season).Error("Scheduled refit failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"season": season,
			"sigma":  outcome.Model.Sigma,
			"count":  outcome.Model.RecordCount,
		}).Info("Scheduled refit completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":   cronExpression,
		"season": season,
	}).Info("Scheduled season refresh job")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
	defer cancel()

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out with jobs still running")
	}
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}
