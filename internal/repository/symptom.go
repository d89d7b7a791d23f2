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

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// SymptomRepository manages persisted symptom entries
type SymptomRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewSymptomRepository creates a new SymptomRepository
func NewSymptomRepository(db *pgxpool.Pool, logger *zap.Logger) *SymptomRepository {
	return &SymptomRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new symptom entry
func (r *SymptomRepository) Create(ctx context.Context, entry *model.SymptomEntry) error {
	query := `
		INSERT INTO symptom_entries (
			id, user_id, profile_id, profile_name, profile_relationship,
			description, duration, severity,
			risk_level, care_suggestion, triage_reason, emergency_keywords,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11, $12,
			$13, $14
		)
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.ProfileID,
		entry.ProfileName,
		entry.ProfileRelationship,
		entry.Description,
		entry.Duration,
		entry.Severity,
		entry.RiskLevel,
		entry.CareSuggestion,
		entry.TriageReason,
		entry.EmergencyKeywordsFound,
		entry.CreatedAt,
		entry.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("failed to create symptom entry", zap.Error(err), zap.String("entry_id", entry.ID))
		return fmt.Errorf("failed to create symptom entry: %w", err)
	}

	return nil
}

// Get retrieves a symptom entry by ID
func (r *SymptomRepository) Get(ctx context.Context, userID, entryID string) (*model.SymptomEntry, error) {
	query := `
		SELECT id, user_id, profile_id, profile_name, profile_relationship,
		       description, duration, severity,
		       risk_level, care_suggestion, triage_reason, emergency_keywords,
		       created_at, updated_at
		FROM symptom_entries
		WHERE id = $1 AND user_id = $2
	`

	var entry model.SymptomEntry
	err := r.db.QueryRow(ctx, query, entryID, userID).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.ProfileID,
		&entry.ProfileName,
		&entry.ProfileRelationship,
		&entry.Description,
		&entry.Duration,
		&entry.Severity,
		&entry.RiskLevel,
		&entry.CareSuggestion,
		&entry.TriageReason,
		&entry.EmergencyKeywordsFound,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("symptom entry %s: %w", entryID, ErrNotFound)
		}
		r.logger.Error("failed to get symptom entry", zap.Error(err), zap.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to get symptom entry: %w", err)
	}

	return &entry, nil
}

// Update overwrites an entry's editable inputs and its triage outputs
func (r *SymptomRepository) Update(ctx context.Context, entry *model.SymptomEntry) error {
	query := `
		UPDATE symptom_entries
		SET description = $1, duration = $2, severity = $3,
		    risk_level = $4, care_suggestion = $5, triage_reason = $6, emergency_keywords = $7,
		    updated_at = $8
		WHERE id = $9 AND user_id = $10
	`

	result, err := r.db.Exec(ctx, query,
		entry.Description,
		entry.Duration,
		entry.Severity,
		entry.RiskLevel,
		entry.CareSuggestion,
		entry.TriageReason,
		entry.EmergencyKeywordsFound,
		entry.UpdatedAt,
		entry.ID,
		entry.UserID,
	)

	if err != nil {
		r.logger.Error("failed to update symptom entry", zap.Error(err), zap.String("entry_id", entry.ID))
		return fmt.Errorf("failed to update symptom entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("symptom entry %s: %w", entry.ID, ErrNotFound)
	}

	return nil
}

// Delete removes a symptom entry
func (r *SymptomRepository) Delete(ctx context.Context, userID, entryID string) error {
	query := `DELETE FROM symptom_entries WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(ctx, query, entryID, userID)
	if err != nil {
		r.logger.Error("failed to delete symptom entry", zap.Error(err), zap.String("entry_id", entryID))
		return fmt.Errorf("failed to delete symptom entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("symptom entry %s: %w", entryID, ErrNotFound)
	}

	return nil
}

// ListByUser retrieves all symptom entries for a user, newest first.
// Urgency ordering is applied by the service layer.
func (r *SymptomRepository) ListByUser(ctx context.Context, userID string) ([]model.SymptomEntry, error) {
	query := `
		SELECT id, user_id, profile_id, profile_name, profile_relationship,
		       description, duration, severity,
		       risk_level, care_suggestion, triage_reason, emergency_keywords,
		       created_at, updated_at
		FROM symptom_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to list symptom entries", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to list symptom entries: %w", err)
	}
	defer rows.Close()

	var entries []model.SymptomEntry
	for rows.Next() {
		var entry model.SymptomEntry
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.ProfileID,
			&entry.ProfileName,
			&entry.ProfileRelationship,
			&entry.Description,
			&entry.Duration,
			&entry.Severity,
			&entry.RiskLevel,
			&entry.CareSuggestion,
			&entry.TriageReason,
			&entry.EmergencyKeywordsFound,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan symptom entry", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating symptom entries", zap.Error(err))
		return nil, fmt.Errorf("error iterating symptom entries: %w", err)
	}

	return entries, nil
}
