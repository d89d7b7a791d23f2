package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mopshyai/carebowapp-sub005/internal/triage"
	"github.com/mopshyai/carebowapp-sub005/pkg/model"
	"go.uber.org/zap"
)

// SymptomRepositoryInterface defines the interface for symptom entry data access
type SymptomRepositoryInterface interface {
	Create(ctx context.Context, entry *model.SymptomEntry) error
	Get(ctx context.Context, userID, entryID string) (*model.SymptomEntry, error)
	Update(ctx context.Context, entry *model.SymptomEntry) error
	Delete(ctx context.Context, userID, entryID string) error
	ListByUser(ctx context.Context, userID string) ([]model.SymptomEntry, error)
}

// SymptomService runs triage and manages symptom entry records
type SymptomService struct {
	repo   SymptomRepositoryInterface
	logger *zap.Logger
}

// NewSymptomService creates a new SymptomService
func NewSymptomService(repo SymptomRepositoryInterface, logger *zap.Logger) *SymptomService {
	return &SymptomService{
		repo:   repo,
		logger: logger,
	}
}

// SymptomInput carries the user-entered fields of a symptom report
type SymptomInput struct {
	ProfileID           string
	ProfileName         string
	ProfileRelationship string
	Description         string
	Duration            model.Duration
	Severity            model.Severity
}

// Validate checks the input against the closed enumerations and the
// description length cap. Out-of-domain values never reach the engine.
func (in *SymptomInput) Validate() error {
	if in.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(in.Description) > model.MaxDescriptionLength {
		return fmt.Errorf("description exceeds %d characters", model.MaxDescriptionLength)
	}
	if !in.Duration.IsValid() {
		return fmt.Errorf("invalid duration: %s", in.Duration)
	}
	if !in.Severity.IsValid() {
		return fmt.Errorf("invalid severity: %s", in.Severity)
	}
	return nil
}

// Preview runs the triage engine without persisting anything
func (s *SymptomService) Preview(input *SymptomInput) (*triage.Result, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	result := triage.Perform(input.Description, input.Duration, input.Severity)
	return &result, nil
}

// Create runs triage on the input and persists the resulting entry
func (s *SymptomService) Create(ctx context.Context, userID string, input *SymptomInput) (*model.SymptomEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	result := triage.Perform(input.Description, input.Duration, input.Severity)

	now := time.Now()
	entry := &model.SymptomEntry{
		ID:                     uuid.New().String(),
		UserID:                 userID,
		ProfileID:              input.ProfileID,
		ProfileName:            input.ProfileName,
		ProfileRelationship:    input.ProfileRelationship,
		Description:            input.Description,
		Duration:               input.Duration,
		Severity:               input.Severity,
		RiskLevel:              result.RiskLevel,
		CareSuggestion:         result.CareSuggestion,
		TriageReason:           result.Reason,
		EmergencyKeywordsFound: result.EmergencyKeywordsFound,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create symptom entry: %w", err)
	}

	s.logger.Info("symptom entry created",
		zap.String("entry_id", entry.ID),
		zap.String("user_id", userID),
		zap.String("risk_level", string(entry.RiskLevel)),
		zap.Int("keywords_matched", len(entry.EmergencyKeywordsFound)),
	)

	return entry, nil
}

// Update edits an entry's inputs, re-runs triage, and overwrites all
// four triage output fields together with the updated timestamp.
func (s *SymptomService) Update(ctx context.Context, userID, entryID string, input *SymptomInput) (*model.SymptomEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.repo.Get(ctx, userID, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load symptom entry: %w", err)
	}

	result := triage.Perform(input.Description, input.Duration, input.Severity)

	entry.Description = input.Description
	entry.Duration = input.Duration
	entry.Severity = input.Severity
	entry.RiskLevel = result.RiskLevel
	entry.CareSuggestion = result.CareSuggestion
	entry.TriageReason = result.Reason
	entry.EmergencyKeywordsFound = result.EmergencyKeywordsFound
	entry.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update symptom entry: %w", err)
	}

	s.logger.Info("symptom entry updated and re-triaged",
		zap.String("entry_id", entry.ID),
		zap.String("risk_level", string(entry.RiskLevel)),
	)

	return entry, nil
}

// Get retrieves a single symptom entry
func (s *SymptomService) Get(ctx context.Context, userID, entryID string) (*model.SymptomEntry, error) {
	return s.repo.Get(ctx, userID, entryID)
}

// Delete removes a symptom entry
func (s *SymptomService) Delete(ctx context.Context, userID, entryID string) error {
	if err := s.repo.Delete(ctx, userID, entryID); err != nil {
		return err
	}

	s.logger.Info("symptom entry deleted",
		zap.String("entry_id", entryID),
		zap.String("user_id", userID),
	)

	return nil
}

// List retrieves a user's entries sorted most urgent first, then newest
// first within the same urgency.
func (s *SymptomService) List(ctx context.Context, userID string) ([]model.SymptomEntry, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list symptom entries: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		si := triage.UrgencyScore(entries[i].RiskLevel)
		sj := triage.UrgencyScore(entries[j].RiskLevel)
		if si != sj {
			return si > sj
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return entries, nil
}
