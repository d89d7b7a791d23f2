package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mopshyai/carebowapp-sub005/pkg/model"
	"go.uber.org/zap"
)

// SafetyRepository manages safety settings and the append-only safety
// event log
type SafetyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewSafetyRepository creates a new SafetyRepository
func NewSafetyRepository(db *pgxpool.Pool, logger *zap.Logger) *SafetyRepository {
	return &SafetyRepository{
		db:     db,
		logger: logger,
	}
}

// GetSettings retrieves safety settings for a user. Returns ErrNotFound
// if the user has no settings row yet.
func (r *SafetyRepository) GetSettings(ctx context.Context, userID string) (*model.SafetySettings, error) {
	query := `
		SELECT user_id, daily_check_in_enabled, daily_check_in_time, grace_period_minutes,
		       last_check_in_at, last_missed_check_in_at,
		       share_location_on_sos, share_location_on_missed_check_in, escalation_enabled,
		       updated_at
		FROM safety_settings
		WHERE user_id = $1
	`

	var s model.SafetySettings
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.UserID,
		&s.DailyCheckInEnabled,
		&s.DailyCheckInTime,
		&s.GracePeriodMinutes,
		&s.LastCheckInAt,
		&s.LastMissedCheckInAt,
		&s.ShareLocationOnSOS,
		&s.ShareLocationOnMissedCheckIn,
		&s.EscalationEnabled,
		&s.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("safety settings for user %s: %w", userID, ErrNotFound)
		}
		r.logger.Error("failed to get safety settings", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get safety settings: %w", err)
	}

	return &s, nil
}

// SaveSettings inserts or updates the single settings row for a user
func (r *SafetyRepository) SaveSettings(ctx context.Context, s *model.SafetySettings) error {
	query := `
		INSERT INTO safety_settings (
			user_id, daily_check_in_enabled, daily_check_in_time, grace_period_minutes,
			last_check_in_at, last_missed_check_in_at,
			share_location_on_sos, share_location_on_missed_check_in, escalation_enabled,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			daily_check_in_enabled = EXCLUDED.daily_check_in_enabled,
			daily_check_in_time = EXCLUDED.daily_check_in_time,
			grace_period_minutes = EXCLUDED.grace_period_minutes,
			last_check_in_at = EXCLUDED.last_check_in_at,
			last_missed_check_in_at = EXCLUDED.last_missed_check_in_at,
			share_location_on_sos = EXCLUDED.share_location_on_sos,
			share_location_on_missed_check_in = EXCLUDED.share_location_on_missed_check_in,
			escalation_enabled = EXCLUDED.escalation_enabled,
			updated_at = NOW()
	`

	_, err := r.db.Exec(ctx, query,
		s.UserID,
		s.DailyCheckInEnabled,
		s.DailyCheckInTime,
		s.GracePeriodMinutes,
		s.LastCheckInAt,
		s.LastMissedCheckInAt,
		s.ShareLocationOnSOS,
		s.ShareLocationOnMissedCheckIn,
		s.EscalationEnabled,
	)

	if err != nil {
		r.logger.Error("failed to save safety settings", zap.Error(err), zap.String("user_id", s.UserID))
		return fmt.Errorf("failed to save safety settings: %w", err)
	}

	return nil
}

// AppendEvent appends an entry to the safety event log
func (r *SafetyRepository) AppendEvent(ctx context.Context, event *model.SafetyEvent) error {
	query := `
		INSERT INTO safety_events (id, user_id, type, timestamp, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.UserID,
		event.Type,
		event.Timestamp,
		event.Metadata,
	)

	if err != nil {
		r.logger.Error("failed to append safety event",
			zap.Error(err),
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
		)
		return fmt.Errorf("failed to append safety event: %w", err)
	}

	return nil
}

// ListEvents retrieves the safety event log for a user, newest first
func (r *SafetyRepository) ListEvents(ctx context.Context, userID string, limit int) ([]model.SafetyEvent, error) {
	query := `
		SELECT id, user_id, type, timestamp, metadata
		FROM safety_events
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		r.logger.Error("failed to list safety events", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to list safety events: %w", err)
	}
	defer rows.Close()

	var events []model.SafetyEvent
	for rows.Next() {
		var event model.SafetyEvent
		err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.Type,
			&event.Timestamp,
			&event.Metadata,
		)
		if err != nil {
			r.logger.Error("failed to scan safety event", zap.Error(err))
			continue
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating safety events", zap.Error(err))
		return nil, fmt.Errorf("error iterating safety events: %w", err)
	}

	return events, nil
}

// ClearEvents removes the entire event log for a user. Only explicit
// user action may trigger this.
func (r *SafetyRepository) ClearEvents(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM safety_events WHERE user_id = $1`

	result, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to clear safety events", zap.Error(err), zap.String("user_id", userID))
		return 0, fmt.Errorf("failed to clear safety events: %w", err)
	}

	return result.RowsAffected(), nil
}
