package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mopshyai/carebowapp-sub005/internal/location"
	"github.com/mopshyai/carebowapp-sub005/internal/notify"
	"github.com/mopshyai/carebowapp-sub005/internal/reminder"
	"github.com/mopshyai/carebowapp-sub005/internal/repository"
	"github.com/mopshyai/carebowapp-sub005/internal/safety"
	"github.com/mopshyai/carebowapp-sub005/pkg/model"
	"go.uber.org/zap"
)

// SafetyRepositoryInterface defines the interface for safety settings and event log access
type SafetyRepositoryInterface interface {
	GetSettings(ctx context.Context, userID string) (*model.SafetySettings, error)
	SaveSettings(ctx context.Context, s *model.SafetySettings) error
	AppendEvent(ctx context.Context, event *model.SafetyEvent) error
	ListEvents(ctx context.Context, userID string, limit int) ([]model.SafetyEvent, error)
	ClearEvents(ctx context.Context, userID string) (int64, error)
}

// ContactRepositoryInterface defines the interface for emergency contact access
type ContactRepositoryInterface interface {
	Create(ctx context.Context, contact *model.EmergencyContact) error
	Update(ctx context.Context, contact *model.EmergencyContact) error
	Delete(ctx context.Context, userID, contactID string) error
	Get(ctx context.Context, userID, contactID string) (*model.EmergencyContact, error)
	ListByUser(ctx context.Context, userID string) ([]model.EmergencyContact, error)
}

// ReminderSchedulerInterface defines the interface for durable reminder scheduling
type ReminderSchedulerInterface interface {
	Schedule(ctx context.Context, r *repository.Reminder) error
	Cancel(ctx context.Context, userID, kind string) error
}

// SafetyService coordinates the daily check-in state machine, the SOS
// flow, and the safety event log.
type SafetyService struct {
	repo      SafetyRepositoryInterface
	contacts  ContactRepositoryInterface
	reminders ReminderSchedulerInterface
	locations location.Provider
	sender    notify.Sender
	logger    *zap.Logger
}

// NewSafetyService creates a new SafetyService
func NewSafetyService(
	repo SafetyRepositoryInterface,
	contacts ContactRepositoryInterface,
	reminders ReminderSchedulerInterface,
	locations location.Provider,
	sender notify.Sender,
	logger *zap.Logger,
) *SafetyService {
	return &SafetyService{
		repo:      repo,
		contacts:  contacts,
		reminders: reminders,
		locations: locations,
		sender:    sender,
		logger:    logger,
	}
}

// CheckInStatus is the derived check-in view returned to clients.
type CheckInStatus struct {
	State              safety.CheckInState `json:"state"`
	ScheduledAt        *time.Time          `json:"scheduledAt,omitempty"`
	Deadline           *time.Time          `json:"deadline,omitempty"`
	NextReminderAt     *time.Time          `json:"nextReminderAt,omitempty"`
	CheckedInToday     bool                `json:"checkedInToday"`
	ShouldPromptMissed bool                `json:"shouldPromptMissed"`
	Settings           *model.SafetySettings `json:"settings"`
}

// SettingsUpdate carries a full replacement of the user-editable
// settings fields.
type SettingsUpdate struct {
	DailyCheckInEnabled          bool
	DailyCheckInTime             string
	GracePeriodMinutes           int
	ShareLocationOnSOS           bool
	ShareLocationOnMissedCheckIn bool
	EscalationEnabled            bool
}

// Validate checks the update at the settings boundary. The state
// machine itself assumes validated input.
func (u *SettingsUpdate) Validate() error {
	if !safety.IsValidTimeFormat(u.DailyCheckInTime) {
		return fmt.Errorf("dailyCheckInTime must be a 24-hour HH:mm string")
	}
	if !safety.IsValidGracePeriod(u.GracePeriodMinutes) {
		return fmt.Errorf("gracePeriodMinutes must be between 1 and 1440")
	}
	return nil
}

// SOSResult is the outcome of an SOS trigger. The trigger itself never
// fails once settings are loaded: a location failure is reported here
// rather than aborting the alert.
type SOSResult struct {
	EventID          string           `json:"eventId"`
	Location         *location.Result `json:"location,omitempty"`
	LocationError    string           `json:"locationError,omitempty"`
	ContactsNotified int              `json:"contactsNotified"`
}

// getOrDefaultSettings loads settings, creating the default row on
// first use.
func (s *SafetyService) getOrDefaultSettings(ctx context.Context, userID string) (*model.SafetySettings, error) {
	settings, err := s.repo.GetSettings(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	settings = model.DefaultSafetySettings(userID)
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to create default safety settings: %w", err)
	}

	s.logger.Info("created default safety settings", zap.String("user_id", userID))
	return settings, nil
}

// GetStatus derives the current check-in state from the persisted
// settings and the wall clock. Nothing is cached or stored; repeated
// calls are idempotent.
func (s *SafetyService) GetStatus(ctx context.Context, userID string, now time.Time) (*CheckInStatus, error) {
	settings, err := s.getOrDefaultSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := &CheckInStatus{
		State:          safety.EvaluateCheckIn(settings, now),
		CheckedInToday: safety.HasCheckedInToday(settings, now),
		ShouldPromptMissed: safety.ShouldPromptMissedCheckIn(settings, now) &&
			!safety.AlreadyRecordedMissedCheckIn(settings, now),
		Settings: settings,
	}

	if settings.DailyCheckInEnabled {
		scheduled := safety.ScheduledTimeToday(settings.DailyCheckInTime, now)
		deadline := safety.DeadlineToday(settings, now)
		next := safety.NextOccurrence(settings, now)
		status.ScheduledAt = &scheduled
		status.Deadline = &deadline
		status.NextReminderAt = &next
	}

	return status, nil
}

// UpdateSettings replaces the user-editable settings and reschedules or
// cancels the daily reminder accordingly.
func (s *SafetyService) UpdateSettings(ctx context.Context, userID string, update *SettingsUpdate) (*model.SafetySettings, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	settings, err := s.getOrDefaultSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings.DailyCheckInEnabled = update.DailyCheckInEnabled
	settings.DailyCheckInTime = update.DailyCheckInTime
	settings.GracePeriodMinutes = update.GracePeriodMinutes
	settings.ShareLocationOnSOS = update.ShareLocationOnSOS
	settings.ShareLocationOnMissedCheckIn = update.ShareLocationOnMissedCheckIn
	settings.EscalationEnabled = update.EscalationEnabled

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}

	now := time.Now()
	if settings.DailyCheckInEnabled {
		err = s.reminders.Schedule(ctx, &repository.Reminder{
			ID:     uuid.New().String(),
			UserID: userID,
			Kind:   reminder.KindDailyCheckIn,
			FireAt: safety.NextOccurrence(settings, now),
		})
	} else {
		err = s.reminders.Cancel(ctx, userID, reminder.KindDailyCheckIn)
	}
	if err != nil {
		// Reminder bookkeeping must not fail a settings change.
		s.logger.Warn("failed to update check-in reminder", zap.Error(err), zap.String("user_id", userID))
	}

	s.logger.Info("safety settings updated",
		zap.String("user_id", userID),
		zap.Bool("daily_check_in_enabled", settings.DailyCheckInEnabled),
		zap.String("daily_check_in_time", settings.DailyCheckInTime),
	)

	return settings, nil
}

// ConfirmCheckIn records a successful check-in for today and logs a
// CHECKIN_CONFIRMED event. A check-in past the deadline is accepted and
// flagged late; a same-day check-in always cancels the missed state.
func (s *SafetyService) ConfirmCheckIn(ctx context.Context, userID string, now time.Time) (*CheckInStatus, error) {
	settings, err := s.getOrDefaultSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	late := settings.DailyCheckInEnabled && now.After(safety.DeadlineToday(settings, now))

	checkedInAt := now
	settings.LastCheckInAt = &checkedInAt
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}

	event := &model.SafetyEvent{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      model.EventCheckInConfirmed,
		Timestamp: now,
		Metadata:  map[string]any{"late": late},
	}
	if err := s.repo.AppendEvent(ctx, event); err != nil {
		s.logger.Warn("failed to log check-in event", zap.Error(err), zap.String("user_id", userID))
	}

	if settings.DailyCheckInEnabled {
		err = s.reminders.Schedule(ctx, &repository.Reminder{
			ID:     uuid.New().String(),
			UserID: userID,
			Kind:   reminder.KindDailyCheckIn,
			FireAt: safety.ScheduledTimeToday(settings.DailyCheckInTime, now).AddDate(0, 0, 1),
		})
		if err != nil {
			s.logger.Warn("failed to reschedule check-in reminder", zap.Error(err), zap.String("user_id", userID))
		}
	}

	s.logger.Info("check-in confirmed",
		zap.String("user_id", userID),
		zap.Bool("late", late),
	)

	return s.GetStatus(ctx, userID, now)
}

// RecordMissedCheckIn records a missed-check-in event, at most once per
// local calendar day. When location sharing for missed check-ins is on
// the event carries a best-effort location, and with escalation enabled
// the contacts opted into missed-check-in alerts are notified.
func (s *SafetyService) RecordMissedCheckIn(ctx context.Context, userID string, now time.Time) (*model.SafetyEvent, error) {
	settings, err := s.getOrDefaultSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !safety.ShouldPromptMissedCheckIn(settings, now) {
		return nil, fmt.Errorf("no missed check-in to record")
	}
	if safety.AlreadyRecordedMissedCheckIn(settings, now) {
		return nil, fmt.Errorf("missed check-in already recorded today")
	}

	metadata := map[string]any{"deadline": safety.DeadlineToday(settings, now)}

	var loc *location.Result
	if settings.ShareLocationOnMissedCheckIn {
		result := s.locations.Current(ctx, userID)
		loc = &result
		metadata["locationShared"] = result.OK
		if !result.OK {
			metadata["locationError"] = result.Err
		}
	}

	missedAt := now
	settings.LastMissedCheckInAt = &missedAt
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}

	event := &model.SafetyEvent{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      model.EventCheckInMissed,
		Timestamp: now,
		Metadata:  metadata,
	}
	if err := s.repo.AppendEvent(ctx, event); err != nil {
		return nil, err
	}

	if settings.EscalationEnabled {
		notified := s.notifyContacts(ctx, userID, notify.Alert{
			Kind:     notify.KindMissedCheckIn,
			UserID:   userID,
			Message:  "Daily safety check-in was missed.",
			Location: loc,
		}, func(c model.EmergencyContact) bool { return c.NotifyOnMissedCheckIn })
		event.Metadata["contactsNotified"] = notified
	}

	s.logger.Info("missed check-in recorded",
		zap.String("user_id", userID),
		zap.String("event_id", event.ID),
	)

	return event, nil
}

// TriggerSOS runs the SOS flow. Location is fetched best effort with a
// bounded timeout when sharing is enabled; the SOS event is recorded and
// contacts are alerted whether or not a fix was obtained. Nothing on
// this path is allowed to block or abort the alert.
func (s *SafetyService) TriggerSOS(ctx context.Context, userID, message string, now time.Time) (*SOSResult, error) {
	settings, err := s.getOrDefaultSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &SOSResult{}
	metadata := map[string]any{"locationShared": false}
	if message != "" {
		metadata["message"] = message
	}

	if settings.ShareLocationOnSOS {
		loc := s.locations.Current(ctx, userID)
		result.Location = &loc
		if loc.OK {
			metadata["locationShared"] = true
		} else {
			result.LocationError = loc.Err
			metadata["locationError"] = loc.Err
		}
	}

	event := &model.SafetyEvent{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      model.EventSOSTriggered,
		Timestamp: now,
		Metadata:  metadata,
	}
	if err := s.repo.AppendEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record SOS event: %w", err)
	}
	result.EventID = event.ID

	alertMessage := message
	if alertMessage == "" {
		alertMessage = "SOS alert triggered."
	}
	result.ContactsNotified = s.notifyContacts(ctx, userID, notify.Alert{
		Kind:     notify.KindSOS,
		UserID:   userID,
		Message:  alertMessage,
		Location: result.Location,
	}, func(c model.EmergencyContact) bool { return c.NotifyOnSOS })

	s.logger.Info("SOS triggered",
		zap.String("user_id", userID),
		zap.String("event_id", event.ID),
		zap.Bool("location_shared", metadata["locationShared"] == true),
		zap.Int("contacts_notified", result.ContactsNotified),
	)

	return result, nil
}

// SendTestAlert sends a test notification to every SOS contact and logs
// a TEST_ALERT_SENT event.
func (s *SafetyService) SendTestAlert(ctx context.Context, userID string, now time.Time) (*model.SafetyEvent, error) {
	notified := s.notifyContacts(ctx, userID, notify.Alert{
		Kind:    notify.KindTest,
		UserID:  userID,
		Message: "This is a test alert. No action is needed.",
	}, func(c model.EmergencyContact) bool { return c.NotifyOnSOS })

	event := &model.SafetyEvent{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      model.EventTestAlertSent,
		Timestamp: now,
		Metadata:  map[string]any{"contactsNotified": notified},
	}
	if err := s.repo.AppendEvent(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// notifyContacts delivers an alert to every matching contact, best
// effort. Send failures are logged and skipped.
func (s *SafetyService) notifyContacts(ctx context.Context, userID string, alert notify.Alert, match func(model.EmergencyContact) bool) int {
	contacts, err := s.contacts.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load emergency contacts", zap.Error(err), zap.String("user_id", userID))
		return 0
	}

	notified := 0
	for _, contact := range contacts {
		if !match(contact) {
			continue
		}
		alert.ContactName = contact.Name
		alert.ContactPhone = contact.Phone
		if err := s.sender.Send(ctx, alert); err != nil {
			s.logger.Warn("failed to send alert",
				zap.Error(err),
				zap.String("user_id", userID),
				zap.String("contact_id", contact.ID),
			)
			continue
		}
		notified++
	}
	return notified
}

// Events returns the safety event log, newest first.
func (s *SafetyService) Events(ctx context.Context, userID string, limit int) ([]model.SafetyEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListEvents(ctx, userID, limit)
}

// ClearHistory removes the entire event log for a user.
func (s *SafetyService) ClearHistory(ctx context.Context, userID string) (int64, error) {
	cleared, err := s.repo.ClearEvents(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("safety event history cleared",
		zap.String("user_id", userID),
		zap.Int64("events_removed", cleared),
	)

	return cleared, nil
}

// HandleReminder dispatches a due check-in reminder: nudge the user's
// device if they still have not checked in, then schedule tomorrow's
// reminder.
func (s *SafetyService) HandleReminder(ctx context.Context, r repository.Reminder) {
	if r.Kind != reminder.KindDailyCheckIn {
		s.logger.Warn("unknown reminder kind", zap.String("kind", r.Kind))
		return
	}

	now := time.Now()
	settings, err := s.getOrDefaultSettings(ctx, r.UserID)
	if err != nil {
		s.logger.Error("failed to load settings for reminder", zap.Error(err), zap.String("user_id", r.UserID))
		return
	}

	if !settings.DailyCheckInEnabled {
		return
	}

	if !safety.HasCheckedInToday(settings, now) {
		alert := notify.Alert{
			Kind:    notify.KindCheckInReminder,
			UserID:  r.UserID,
			Message: "Time for your daily safety check-in.",
		}
		if err := s.sender.Send(ctx, alert); err != nil {
			s.logger.Warn("failed to send check-in reminder", zap.Error(err), zap.String("user_id", r.UserID))
		}
	}

	err = s.reminders.Schedule(ctx, &repository.Reminder{
		ID:     uuid.New().String(),
		UserID: r.UserID,
		Kind:   reminder.KindDailyCheckIn,
		FireAt: safety.NextOccurrence(settings, now),
	})
	if err != nil {
		s.logger.Error("failed to schedule next reminder", zap.Error(err), zap.String("user_id", r.UserID))
	}
}

// AddContact creates an emergency contact
func (s *SafetyService) AddContact(ctx context.Context, userID string, contact *model.EmergencyContact) (*model.EmergencyContact, error) {
	if contact.Name == "" || contact.Phone == "" {
		return nil, fmt.Errorf("contact name and phone are required")
	}

	contact.ID = uuid.New().String()
	contact.UserID = userID
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}

	s.logger.Info("emergency contact added",
		zap.String("user_id", userID),
		zap.String("contact_id", contact.ID),
	)

	return contact, nil
}

// UpdateContact rewrites an emergency contact
func (s *SafetyService) UpdateContact(ctx context.Context, userID, contactID string, contact *model.EmergencyContact) (*model.EmergencyContact, error) {
	if contact.Name == "" || contact.Phone == "" {
		return nil, fmt.Errorf("contact name and phone are required")
	}

	contact.ID = contactID
	contact.UserID = userID
	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

// DeleteContact removes an emergency contact
func (s *SafetyService) DeleteContact(ctx context.Context, userID, contactID string) error {
	return s.contacts.Delete(ctx, userID, contactID)
}

// ListContacts returns all emergency contacts for a user
func (s *SafetyService) ListContacts(ctx context.Context, userID string) ([]model.EmergencyContact, error) {
	return s.contacts.ListByUser(ctx, userID)
}
