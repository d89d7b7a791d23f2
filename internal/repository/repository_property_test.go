package repository

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/mopshyai/carebowapp-sub005/internal/security"
	"github.com/mopshyai/carebowapp-sub005/internal/triage"
	"github.com/mopshyai/carebowapp-sub005/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// setupTestDB creates a PostgreSQL testcontainer and returns the connection pool
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("carebow_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connString, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)

	runMigrations(t, pool)

	cleanup := func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return pool, cleanup
}

// runMigrations runs the database migrations
func runMigrations(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS symptom_entries (
			id UUID PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			profile_id VARCHAR(255),
			profile_name VARCHAR(255),
			profile_relationship VARCHAR(100),
			description TEXT NOT NULL,
			duration VARCHAR(50) NOT NULL,
			severity VARCHAR(50) NOT NULL,
			risk_level VARCHAR(50) NOT NULL,
			care_suggestion VARCHAR(50) NOT NULL,
			triage_reason TEXT NOT NULL,
			emergency_keywords TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS safety_settings (
			user_id VARCHAR(255) PRIMARY KEY,
			daily_check_in_enabled BOOLEAN NOT NULL DEFAULT false,
			daily_check_in_time VARCHAR(5) NOT NULL DEFAULT '09:00',
			grace_period_minutes INTEGER NOT NULL DEFAULT 60,
			last_check_in_at TIMESTAMPTZ,
			last_missed_check_in_at TIMESTAMPTZ,
			share_location_on_sos BOOLEAN NOT NULL DEFAULT true,
			share_location_on_missed_check_in BOOLEAN NOT NULL DEFAULT false,
			escalation_enabled BOOLEAN NOT NULL DEFAULT false,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS safety_events (
			id UUID PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			type VARCHAR(50) NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			metadata JSONB
		)`,
		`CREATE TABLE IF NOT EXISTS emergency_contacts (
			id UUID PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			phone TEXT NOT NULL,
			relationship VARCHAR(100),
			notify_on_sos BOOLEAN NOT NULL DEFAULT true,
			notify_on_missed_check_in BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS scheduled_reminders (
			id UUID PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			kind VARCHAR(50) NOT NULL,
			fire_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, kind)
		)`,
	}

	for _, migration := range migrations {
		_, err := pool.Exec(ctx, migration)
		require.NoError(t, err)
	}
}

func testEncryptor(t *testing.T) *security.Encryptor {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	encryptor, err := security.NewEncryptor(key)
	require.NoError(t, err)
	return encryptor
}

var (
	testDurations = []model.Duration{
		model.DurationJustStarted,
		model.DurationHours,
		model.DurationDays,
		model.DurationWeeks,
		model.DurationOngoing,
	}
	testSeverities = []model.Severity{
		model.SeverityLow,
		model.SeverityMedium,
		model.SeverityHigh,
	}
)

// Property: a persisted symptom entry reloads with triage fields that
// match a fresh run of the engine on the same inputs.
func TestProperty_SymptomEntrySurvivesRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainer test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSymptomRepository(pool, zap.NewNop())
	ctx := context.Background()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("stored triage outputs match a fresh classification", prop.ForAll(
		func(description string, durationIdx, severityIdx int) bool {
			duration := testDurations[durationIdx]
			severity := testSeverities[severityIdx]
			result := triage.Perform(description, duration, severity)

			now := time.Now().UTC().Truncate(time.Millisecond)
			entry := &model.SymptomEntry{
				ID:                     uuid.New().String(),
				UserID:                 "user-roundtrip",
				Description:            description,
				Duration:               duration,
				Severity:               severity,
				RiskLevel:              result.RiskLevel,
				CareSuggestion:         result.CareSuggestion,
				TriageReason:           result.Reason,
				EmergencyKeywordsFound: result.EmergencyKeywordsFound,
				CreatedAt:              now,
				UpdatedAt:              now,
			}

			if err := repo.Create(ctx, entry); err != nil {
				t.Logf("Create failed: %v", err)
				return false
			}

			loaded, err := repo.Get(ctx, "user-roundtrip", entry.ID)
			if err != nil {
				t.Logf("Get failed: %v", err)
				return false
			}

			fresh := triage.Perform(loaded.Description, loaded.Duration, loaded.Severity)
			if loaded.RiskLevel != fresh.RiskLevel {
				t.Logf("Risk level drifted: stored %s, fresh %s", loaded.RiskLevel, fresh.RiskLevel)
				return false
			}
			if loaded.CareSuggestion != fresh.CareSuggestion {
				t.Logf("Care suggestion drifted: stored %s, fresh %s", loaded.CareSuggestion, fresh.CareSuggestion)
				return false
			}
			if loaded.TriageReason != fresh.Reason {
				t.Logf("Reason drifted for %q", description)
				return false
			}
			if len(loaded.EmergencyKeywordsFound) != len(fresh.EmergencyKeywordsFound) {
				t.Logf("Keyword list drifted: stored %v, fresh %v",
					loaded.EmergencyKeywordsFound, fresh.EmergencyKeywordsFound)
				return false
			}

			return true
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 && len(s) <= model.MaxDescriptionLength }),
		gen.IntRange(0, len(testDurations)-1),
		gen.IntRange(0, len(testSeverities)-1),
	))

	properties.TestingRun(t)
}

func TestSymptomRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainer test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSymptomRepository(pool, zap.NewNop())
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	entry := &model.SymptomEntry{
		ID:                     uuid.New().String(),
		UserID:                 "user-1",
		ProfileID:              "profile-1",
		ProfileName:            "Margit",
		ProfileRelationship:    "mother",
		Description:            "sudden chest pain",
		Duration:               model.DurationJustStarted,
		Severity:               model.SeverityHigh,
		RiskLevel:              model.RiskEmergency,
		CareSuggestion:         model.CareEmergency,
		TriageReason:           "emergency keywords detected",
		EmergencyKeywordsFound: []string{"chest pain"},
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	require.NoError(t, repo.Create(ctx, entry))

	loaded, err := repo.Get(ctx, "user-1", entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Description, loaded.Description)
	assert.Equal(t, entry.RiskLevel, loaded.RiskLevel)
	assert.Equal(t, []string{"chest pain"}, loaded.EmergencyKeywordsFound)

	// Entries are scoped to their owner.
	_, err = repo.Get(ctx, "someone-else", entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	loaded.Description = "mild chest discomfort resolved"
	loaded.RiskLevel = model.RiskLow
	loaded.CareSuggestion = model.CareMonitor
	loaded.EmergencyKeywordsFound = []string{}
	require.NoError(t, repo.Update(ctx, loaded))

	reloaded, err := repo.Get(ctx, "user-1", entry.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RiskLow, reloaded.RiskLevel)
	assert.Empty(t, reloaded.EmergencyKeywordsFound)

	entries, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, repo.Delete(ctx, "user-1", entry.ID))
	_, err = repo.Get(ctx, "user-1", entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSafetyRepository_SettingsUpsert(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainer test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSafetyRepository(pool, zap.NewNop())
	ctx := context.Background()

	_, err := repo.GetSettings(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNotFound)

	settings := model.DefaultSafetySettings("user-1")
	require.NoError(t, repo.SaveSettings(ctx, settings))

	loaded, err := repo.GetSettings(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, loaded.DailyCheckInEnabled)
	assert.Equal(t, "09:00", loaded.DailyCheckInTime)
	assert.Equal(t, 60, loaded.GracePeriodMinutes)
	assert.Nil(t, loaded.LastCheckInAt)

	// Second save hits the conflict branch and updates in place.
	checkedInAt := time.Now().UTC().Truncate(time.Millisecond)
	loaded.DailyCheckInEnabled = true
	loaded.DailyCheckInTime = "08:30"
	loaded.LastCheckInAt = &checkedInAt
	require.NoError(t, repo.SaveSettings(ctx, loaded))

	reloaded, err := repo.GetSettings(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, reloaded.DailyCheckInEnabled)
	assert.Equal(t, "08:30", reloaded.DailyCheckInTime)
	require.NotNil(t, reloaded.LastCheckInAt)
	assert.True(t, reloaded.LastCheckInAt.Equal(checkedInAt))
}

func TestSafetyRepository_EventLog(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainer test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSafetyRepository(pool, zap.NewNop())
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	types := []model.SafetyEventType{
		model.EventSOSTriggered,
		model.EventCheckInConfirmed,
		model.EventCheckInMissed,
	}
	for i, eventType := range types {
		require.NoError(t, repo.AppendEvent(ctx, &model.SafetyEvent{
			ID:        uuid.New().String(),
			UserID:    "user-1",
			Type:      eventType,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Metadata:  map[string]any{"index": float64(i)},
		}))
	}

	events, err := repo.ListEvents(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	// Newest first.
	assert.Equal(t, model.EventCheckInMissed, events[0].Type)
	assert.Equal(t, model.EventSOSTriggered, events[2].Type)
	assert.Equal(t, float64(2), events[0].Metadata["index"])

	limited, err := repo.ListEvents(ctx, "user-1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	cleared, err := repo.ClearEvents(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), cleared)

	events, err = repo.ListEvents(ctx, "user-1", 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestContactRepository_EncryptsPhoneAtRest(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainer test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewContactRepository(pool, testEncryptor(t), zap.NewNop())
	ctx := context.Background()

	contact := &model.EmergencyContact{
		ID:                    uuid.New().String(),
		UserID:                "user-1",
		Name:                  "Anna",
		Phone:                 "+36201234567",
		Relationship:          "daughter",
		NotifyOnSOS:           true,
		NotifyOnMissedCheckIn: true,
	}
	require.NoError(t, repo.Create(ctx, contact))

	// The stored column must not contain the plaintext number.
	var stored string
	err := pool.QueryRow(ctx, `SELECT phone FROM emergency_contacts WHERE id = $1`, contact.ID).Scan(&stored)
	require.NoError(t, err)
	assert.NotEqual(t, contact.Phone, stored)
	assert.NotContains(t, stored, "36201234567")

	loaded, err := repo.Get(ctx, "user-1", contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "+36201234567", loaded.Phone)
	assert.Equal(t, "Anna", loaded.Name)

	loaded.Phone = "+36209876543"
	require.NoError(t, repo.Update(ctx, loaded))

	contacts, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "+36209876543", contacts[0].Phone)

	require.NoError(t, repo.Delete(ctx, "user-1", contact.ID))
	_, err = repo.Get(ctx, "user-1", contact.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReminderRepository_ScheduleAndClaim(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainer test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewReminderRepository(pool, zap.NewNop())
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repo.Schedule(ctx, &Reminder{
		ID:     uuid.New().String(),
		UserID: "user-1",
		Kind:   "daily_check_in",
		FireAt: now.Add(-time.Minute),
	}))

	// Rescheduling the same user and kind replaces the fire time.
	require.NoError(t, repo.Schedule(ctx, &Reminder{
		ID:     uuid.New().String(),
		UserID: "user-1",
		Kind:   "daily_check_in",
		FireAt: now.Add(-30 * time.Second),
	}))

	require.NoError(t, repo.Schedule(ctx, &Reminder{
		ID:     uuid.New().String(),
		UserID: "user-2",
		Kind:   "daily_check_in",
		FireAt: now.Add(time.Hour),
	}))

	due, err := repo.ClaimDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 1, "only user-1's reminder is due; rescheduling must not duplicate it")
	assert.Equal(t, "user-1", due[0].UserID)

	// Claiming removes the reminder; a second claim finds nothing.
	due, err = repo.ClaimDue(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	require.NoError(t, repo.Cancel(ctx, "user-2", "daily_check_in"))
	due, err = repo.ClaimDue(ctx, now.Add(2*time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}
