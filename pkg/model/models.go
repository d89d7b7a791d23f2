package model

import "time"

// Duration represents how long a symptom has been present, ordered
// from most recent onset to most chronic.
type Duration string

const (
	DurationJustStarted Duration = "just_started"
	DurationHours       Duration = "hours"
	DurationDays        Duration = "days"
	DurationWeeks       Duration = "weeks"
	DurationOngoing     Duration = "ongoing"
)

// Severity is the user's subjective self-report of symptom intensity.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// RiskLevel is the triage output risk classification. Emergency strictly
// dominates all other levels.
type RiskLevel string

const (
	RiskLow       RiskLevel = "low"
	RiskMedium    RiskLevel = "medium"
	RiskHigh      RiskLevel = "high"
	RiskEmergency RiskLevel = "emergency"
)

// CareSuggestion is the recommended next step produced by triage.
type CareSuggestion string

const (
	CareMonitor     CareSuggestion = "monitor"
	CareDoctorVisit CareSuggestion = "doctor_visit"
	CareUrgentCare  CareSuggestion = "urgent_care"
	CareEmergency   CareSuggestion = "emergency"
)

// ValidDurations lists the accepted duration values in onset order.
var ValidDurations = []Duration{
	DurationJustStarted,
	DurationHours,
	DurationDays,
	DurationWeeks,
	DurationOngoing,
}

// ValidSeverities lists the accepted severity values.
var ValidSeverities = []Severity{SeverityLow, SeverityMedium, SeverityHigh}

// IsValid reports whether d is one of the accepted duration values.
func (d Duration) IsValid() bool {
	for _, v := range ValidDurations {
		if d == v {
			return true
		}
	}
	return false
}

// IsValid reports whether s is one of the accepted severity values.
func (s Severity) IsValid() bool {
	for _, v := range ValidSeverities {
		if s == v {
			return true
		}
	}
	return false
}

// MaxDescriptionLength is the upper bound on a symptom description.
const MaxDescriptionLength = 2000

// SymptomEntry is an immutable triage record. The four triage output
// fields (RiskLevel, CareSuggestion, TriageReason, EmergencyKeywordsFound)
// are always a pure function of (Description, Duration, Severity) and are
// overwritten together whenever the inputs are edited.
//
// JSON field names and enum string values are the on-disk contract and
// must not change.
type SymptomEntry struct {
	ID                     string         `json:"id"`
	UserID                 string         `json:"userId"`
	ProfileID              string         `json:"profileId"`
	ProfileName            string         `json:"profileName"`
	ProfileRelationship    string         `json:"profileRelationship"`
	Description            string         `json:"description"`
	Duration               Duration       `json:"duration"`
	Severity               Severity       `json:"severity"`
	RiskLevel              RiskLevel      `json:"riskLevel"`
	CareSuggestion         CareSuggestion `json:"careSuggestion"`
	TriageReason           string         `json:"triageReason"`
	EmergencyKeywordsFound []string       `json:"emergencyKeywordsFound"`
	CreatedAt              time.Time      `json:"createdAt"`
	UpdatedAt              time.Time      `json:"updatedAt"`
}

// SafetySettings holds the daily check-in configuration plus the
// last-known check-in facts. Check-in state is never stored here; it is
// derived from these facts and the wall clock on every query.
type SafetySettings struct {
	UserID                       string     `json:"userId"`
	DailyCheckInEnabled          bool       `json:"dailyCheckInEnabled"`
	DailyCheckInTime             string     `json:"dailyCheckInTime"` // "HH:mm", 24-hour, local time
	GracePeriodMinutes           int        `json:"gracePeriodMinutes"`
	LastCheckInAt                *time.Time `json:"lastCheckInAt,omitempty"`
	LastMissedCheckInAt          *time.Time `json:"lastMissedCheckInAt,omitempty"`
	ShareLocationOnSOS           bool       `json:"shareLocationOnSOS"`
	ShareLocationOnMissedCheckIn bool       `json:"shareLocationOnMissedCheckIn"`
	EscalationEnabled            bool       `json:"escalationEnabled"`
	UpdatedAt                    time.Time  `json:"updatedAt"`
}

// DefaultSafetySettings returns the settings created on first use.
func DefaultSafetySettings(userID string) *SafetySettings {
	return &SafetySettings{
		UserID:              userID,
		DailyCheckInEnabled: false,
		DailyCheckInTime:    "09:00",
		GracePeriodMinutes:  60,
		ShareLocationOnSOS:  true,
	}
}

// SafetyEventType identifies an entry in the append-only safety event log.
type SafetyEventType string

const (
	EventSOSTriggered     SafetyEventType = "SOS_TRIGGERED"
	EventCheckInConfirmed SafetyEventType = "CHECKIN_CONFIRMED"
	EventCheckInMissed    SafetyEventType = "CHECKIN_MISSED"
	EventTestAlertSent    SafetyEventType = "TEST_ALERT_SENT"
)

// SafetyEvent is an append-only log entry. Events are never mutated;
// the log may only be cleared in bulk by explicit user action.
type SafetyEvent struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Type      SafetyEventType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
}

// EmergencyContact is a person notified on SOS or missed check-in.
type EmergencyContact struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"userId"`
	Name                  string    `json:"name"`
	Phone                 string    `json:"phone"`
	Relationship          string    `json:"relationship"`
	NotifyOnSOS           bool      `json:"notifyOnSOS"`
	NotifyOnMissedCheckIn bool      `json:"notifyOnMissedCheckIn"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}
