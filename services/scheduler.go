package services

import (
	"context"
	"fmt"
	"time"

	"spacrm-backend/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper drops expired entries from a process-local store.
type Sweeper interface {
	Sweep(ctx context.Context) int
}

type Scheduler struct {
	cron      *cron.Cron
	reminders *ReminderService
	sweeper   Sweeper
	logger    *zap.Logger
}

func NewScheduler(reminders *ReminderService, sweeper Sweeper, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		reminders: reminders,
		sweeper:   sweeper,
		logger:    logger.OrNop(log),
	}
}

// Register adds the periodic jobs. An empty spec disables the job; a nil
// sweeper (Redis backend) skips the OTP sweep.
func (s *Scheduler) Register(reminderSpec, cleanupSpec string) error {
	if reminderSpec != "" && s.reminders != nil {
		if _, err := s.cron.AddFunc(reminderSpec, s.RunReminders); err != nil {
			return fmt.Errorf("schedule reminders %q: %w", reminderSpec, err)
		}
	}
	if cleanupSpec != "" && s.sweeper != nil {
		if _, err := s.cron.AddFunc(cleanupSpec, s.RunCleanup); err != nil {
			return fmt.Errorf("schedule otp cleanup %q: %w", cleanupSpec, err)
		}
	}
	return nil
}

func (s *Scheduler) RunReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if _, err := s.reminders.SendBirthdayReminders(ctx); err != nil {
		s.logger.Error("birthday reminder job failed", zap.Error(err))
	}
}

func (s *Scheduler) RunCleanup() {
	n := s.sweeper.Sweep(context.Background())
	if n > 0 {
		s.logger.Debug("expired otp entries removed", zap.Int("count", n))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
