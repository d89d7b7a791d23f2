package safety

import (
	"time"

	"github.com/mopshyai/carebowapp-sub005/pkg/model"
)

// CheckInState is the derived daily check-in state. It is recomputed
// from SafetySettings and the wall clock on every query; nothing here is
// ever persisted, which keeps restarts and clock changes from corrupting
// the state.
type CheckInState string

const (
	StateNotDue        CheckInState = "NOT_DUE"
	StateDue           CheckInState = "DUE"
	StateMissed        CheckInState = "MISSED"
	StateCheckedIn     CheckInState = "CHECKED_IN"
	StateCheckedInLate CheckInState = "CHECKED_IN_LATE"
)

// EvaluateCheckIn derives the check-in state for the local calendar day
// of now. The deadline is today's scheduled time plus the grace period;
// a check-in on the same local day cancels any missed computation.
//
// Assumes validated settings (see IsValidTimeFormat, IsValidGracePeriod).
func EvaluateCheckIn(settings *model.SafetySettings, now time.Time) CheckInState {
	if settings == nil || !settings.DailyCheckInEnabled {
		return StateNotDue
	}

	scheduled := ScheduledTimeToday(settings.DailyCheckInTime, now)
	deadline := scheduled.Add(time.Duration(settings.GracePeriodMinutes) * time.Minute)

	if settings.LastCheckInAt != nil && SameLocalDay(*settings.LastCheckInAt, now) {
		if settings.LastCheckInAt.After(deadline) {
			return StateCheckedInLate
		}
		return StateCheckedIn
	}

	switch {
	case now.After(deadline):
		return StateMissed
	case !now.Before(scheduled):
		return StateDue
	default:
		return StateNotDue
	}
}

// ScheduledTimeToday anchors an "HH:mm" time-of-day to the local calendar
// day of now.
func ScheduledTimeToday(hhmm string, now time.Time) time.Time {
	hour, minute := parseTimeOfDay(hhmm)
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
}

// DeadlineToday returns today's check-in deadline: scheduled time plus
// the grace period.
func DeadlineToday(settings *model.SafetySettings, now time.Time) time.Time {
	scheduled := ScheduledTimeToday(settings.DailyCheckInTime, now)
	return scheduled.Add(time.Duration(settings.GracePeriodMinutes) * time.Minute)
}

// NextOccurrence computes when the next check-in reminder should fire:
// today's scheduled time if it has not passed yet, otherwise tomorrow's.
// This rollover is for scheduling only and never feeds back into
// EvaluateCheckIn, which only ever looks at today.
func NextOccurrence(settings *model.SafetySettings, now time.Time) time.Time {
	scheduled := ScheduledTimeToday(settings.DailyCheckInTime, now)
	if now.Before(scheduled) {
		return scheduled
	}
	return scheduled.AddDate(0, 0, 1)
}

// HasCheckedInToday reports whether the most recent check-in falls on
// the same local calendar day as now.
func HasCheckedInToday(settings *model.SafetySettings, now time.Time) bool {
	return settings.LastCheckInAt != nil && SameLocalDay(*settings.LastCheckInAt, now)
}

// ShouldPromptMissedCheckIn reports whether the missed-check-in prompt
// applies right now: check-ins enabled, no check-in today, and today's
// deadline has passed. Callers must also consult
// AlreadyRecordedMissedCheckIn so the prompt surfaces at most once per
// day, and must update LastMissedCheckInAt themselves when recording.
func ShouldPromptMissedCheckIn(settings *model.SafetySettings, now time.Time) bool {
	if settings == nil || !settings.DailyCheckInEnabled {
		return false
	}
	if HasCheckedInToday(settings, now) {
		return false
	}
	return now.After(DeadlineToday(settings, now))
}

// AlreadyRecordedMissedCheckIn reports whether a missed-check-in event
// was already recorded on the local calendar day of now. At most one
// missed event is recorded per day.
func AlreadyRecordedMissedCheckIn(settings *model.SafetySettings, now time.Time) bool {
	return settings.LastMissedCheckInAt != nil && SameLocalDay(*settings.LastMissedCheckInAt, now)
}

// SameLocalDay compares year/month/day in local time. Calendar-day
// comparison, not an elapsed-24h window: 23:58 and 00:02 the next day
// are different days.
func SameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

// parseTimeOfDay splits a validated "HH:mm" string. Malformed input is a
// configuration bug caught at the settings boundary; here it degrades to
// midnight rather than panicking.
func parseTimeOfDay(hhmm string) (hour, minute int) {
	if !IsValidTimeFormat(hhmm) {
		return 0, 0
	}
	t, err := time.Parse("15:04", normalizeTimeOfDay(hhmm))
	if err != nil {
		return 0, 0
	}
	return t.Hour(), t.Minute()
}

// normalizeTimeOfDay pads single-digit hours ("9:00" -> "09:00").
func normalizeTimeOfDay(hhmm string) string {
	if len(hhmm) == 4 {
		return "0" + hhmm
	}
	return hhmm
}
