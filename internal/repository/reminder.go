package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Reminder is a durable scheduled callback: fire the named kind for a
// user at an absolute time. Rows survive process restarts, unlike an
// in-memory timer.
type Reminder struct {
	ID        string
	UserID    string
	Kind      string // "daily_check_in"
	FireAt    time.Time
	CreatedAt time.Time
}

// ReminderRepository manages durable scheduled reminders
type ReminderRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewReminderRepository creates a new ReminderRepository
func NewReminderRepository(db *pgxpool.Pool, logger *zap.Logger) *ReminderRepository {
	return &ReminderRepository{
		db:     db,
		logger: logger,
	}
}

// Schedule replaces any pending reminder of the same kind for the user
// with one at the given absolute time.
func (r *ReminderRepository) Schedule(ctx context.Context, reminder *Reminder) error {
	query := `
		INSERT INTO scheduled_reminders (id, user_id, kind, fire_at, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, kind) DO UPDATE SET
			id = EXCLUDED.id,
			fire_at = EXCLUDED.fire_at,
			created_at = NOW()
	`

	_, err := r.db.Exec(ctx, query,
		reminder.ID,
		reminder.UserID,
		reminder.Kind,
		reminder.FireAt,
	)

	if err != nil {
		r.logger.Error("failed to schedule reminder",
			zap.Error(err),
			zap.String("user_id", reminder.UserID),
			zap.String("kind", reminder.Kind),
		)
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}

	return nil
}

// Cancel removes a pending reminder of the given kind for a user
func (r *ReminderRepository) Cancel(ctx context.Context, userID, kind string) error {
	query := `DELETE FROM scheduled_reminders WHERE user_id = $1 AND kind = $2`

	if _, err := r.db.Exec(ctx, query, userID, kind); err != nil {
		r.logger.Error("failed to cancel reminder", zap.Error(err), zap.String("user_id", userID))
		return fmt.Errorf("failed to cancel reminder: %w", err)
	}

	return nil
}

// ClaimDue atomically removes and returns reminders whose fire time has
// passed. Deleting in the same statement keeps concurrent workers from
// double-firing.
func (r *ReminderRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]Reminder, error) {
	query := `
		DELETE FROM scheduled_reminders
		WHERE id IN (
			SELECT id FROM scheduled_reminders
			WHERE fire_at <= $1
			ORDER BY fire_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, user_id, kind, fire_at, created_at
	`

	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		r.logger.Error("failed to claim due reminders", zap.Error(err))
		return nil, fmt.Errorf("failed to claim due reminders: %w", err)
	}
	defer rows.Close()

	var due []Reminder
	for rows.Next() {
		var reminder Reminder
		err := rows.Scan(
			&reminder.ID,
			&reminder.UserID,
			&reminder.Kind,
			&reminder.FireAt,
			&reminder.CreatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan reminder", zap.Error(err))
			continue
		}
		due = append(due, reminder)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating reminders", zap.Error(err))
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}

	return due, nil
}
