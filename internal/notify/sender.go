package notify

import (
	"context"

	"github.com/mopshyai/carebowapp-sub005/internal/location"
	"go.uber.org/zap"
)

// AlertKind identifies what an outgoing alert is about.
type AlertKind string

const (
	KindSOS             AlertKind = "sos"
	KindMissedCheckIn   AlertKind = "missed_check_in"
	KindCheckInReminder AlertKind = "check_in_reminder"
	KindTest            AlertKind = "test"
)

// Alert is an outgoing notification to a contact or to the user's own
// device. Location is nil when sharing is off or no fix was obtained.
type Alert struct {
	Kind         AlertKind
	UserID       string
	UserName     string
	ContactName  string
	ContactPhone string
	Message      string
	Location     *location.Result
}

// Sender delivers alerts. Delivery is best effort: a failed send is
// surfaced to the caller as an error but must never abort the emergency
// flow that produced it.
type Sender interface {
	Send(ctx context.Context, alert Alert) error
}

// LogSender records alerts in the structured log. The SMS/push gateway
// is an external collaborator; this stands in for it in development and
// keeps the delivery contract exercised.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the alert and always succeeds.
func (s *LogSender) Send(_ context.Context, alert Alert) error {
	fields := []zap.Field{
		zap.String("kind", string(alert.Kind)),
		zap.String("user_id", alert.UserID),
		zap.String("contact_name", alert.ContactName),
		zap.String("message", alert.Message),
	}
	if alert.Location != nil && alert.Location.OK {
		fields = append(fields,
			zap.Float64("latitude", alert.Location.Latitude),
			zap.Float64("longitude", alert.Location.Longitude),
		)
	}
	s.logger.Info("alert dispatched", fields...)
	return nil
}
