package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/jira-digest/internal/domain"
	"github.com/spec-kit/jira-digest/internal/service"
)

// Builder runs one digest build.
type Builder interface {
	Build(ctx context.Context, in service.BuildInput) (*domain.Digest, error)
}

// Scheduler fires periodic digest builds on cron schedules.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	builder Builder
	timeout time.Duration
	logger  *zap.Logger
}

// NewScheduler creates a scheduler. timeout bounds each build; zero means
// no bound.
func NewScheduler(builder Builder, timeout time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(),
		jobs:    make(map[string]cron.EntryID),
		builder: builder,
		timeout: timeout,
		logger:  logger,
	}
}

// Register adds every entry of a schedule file.
func (s *Scheduler) Register(file *ScheduleFile) error {
	for _, entry := range file.Schedules {
		if err := s.AddSchedule(entry); err != nil {
			return err
		}
	}
	return nil
}

// AddSchedule adds or replaces one named schedule.
func (s *Scheduler) AddSchedule(entry ScheduleEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(entry.Cron, func() { s.Run(context.Background(), entry) })
	if err != nil {
		return fmt.Errorf("scheduler: invalid schedule %q for %s: %w", entry.Cron, entry.Name, err)
	}
	if previous, ok := s.jobs[entry.Name]; ok {
		s.cron.Remove(previous)
	}
	s.jobs[entry.Name] = id
	s.logger.Info("digest schedule registered", zap.String("schedule", entry.Name), zap.String("cron", entry.Cron))
	return nil
}

// Run builds the digest for one schedule entry. The digest_built event
// carries the schedule name to the publishers.
func (s *Scheduler) Run(ctx context.Context, entry ScheduleEntry) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Info("scheduled digest fired", zap.String("schedule", entry.Name))
	result, err := s.builder.Build(ctx, service.BuildInput{
		LookbackDays:  entry.LookbackDays,
		AccountIDs:    entry.AccountIDs,
		CommentLength: entry.CommentLength,
		ConnectionID:  entry.ConnectionID,
		Trigger:       "schedule",
		Schedule:      entry.Name,
	})
	if err != nil {
		s.logger.Error("scheduled digest failed", zap.String("schedule", entry.Name), zap.Error(err))
		return
	}
	s.logger.Info("scheduled digest built",
		zap.String("schedule", entry.Name),
		zap.String("digest_id", result.ID),
		zap.Int("tickets", result.TicketCount),
		zap.Int("warnings", len(result.Warnings)))
}

// Start begins firing schedules. Blocks until ctx is cancelled, then waits
// for running builds.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("schedules", s.JobCount()))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return ctx.Err()
}

// JobCount returns the number of registered schedules.
func (s *Scheduler) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
