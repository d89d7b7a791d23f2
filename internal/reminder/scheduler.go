package reminder

import (
	"context"
	"time"

	"github.com/mopshyai/carebowapp-sub005/internal/repository"
	"go.uber.org/zap"
)

// KindDailyCheckIn is the reminder kind for the daily safety check-in.
const KindDailyCheckIn = "daily_check_in"

// Handler receives reminders as they come due.
type Handler interface {
	HandleReminder(ctx context.Context, r repository.Reminder)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, r repository.Reminder)

// HandleReminder calls f.
func (f HandlerFunc) HandleReminder(ctx context.Context, r repository.Reminder) {
	f(ctx, r)
}

// Scheduler polls the durable reminder table and dispatches due
// reminders to a handler. Scheduling state lives in the database, so
// reminders survive process restarts; an in-memory timer would not.
type Scheduler struct {
	repo         *repository.ReminderRepository
	handler      Handler
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewScheduler creates a Scheduler. pollInterval defaults to 30s when
// zero.
func NewScheduler(repo *repository.ReminderRepository, handler Handler, pollInterval time.Duration, logger *zap.Logger) *Scheduler {
	if pollInterval == 0 {
		pollInterval = 30 * time.Second
	}
	return &Scheduler{
		repo:         repo,
		handler:      handler,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Run polls until ctx is cancelled. Intended to be started in its own
// goroutine from main.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("reminder scheduler started", zap.Duration("poll_interval", s.pollInterval))

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopped")
			return
		case now := <-ticker.C:
			s.dispatchDue(ctx, now)
		}
	}
}

func (s *Scheduler) dispatchDue(ctx context.Context, now time.Time) {
	due, err := s.repo.ClaimDue(ctx, now, 100)
	if err != nil {
		s.logger.Error("failed to claim due reminders", zap.Error(err))
		return
	}

	for _, r := range due {
		s.logger.Info("dispatching reminder",
			zap.String("user_id", r.UserID),
			zap.String("kind", r.Kind),
			zap.Time("fire_at", r.FireAt),
		)
		s.handler.HandleReminder(ctx, r)
	}
}
