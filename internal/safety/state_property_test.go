package safety

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/mopshyai/carebowapp-sub005/pkg/model"
)

func genClockMinute() gopter.Gen {
	return gen.IntRange(0, 24*60-1)
}

// Property 1: A check-in recorded today always yields a checked-in state,
// and the late flag depends only on whether the check-in beat the deadline.
func TestProperty_CheckInTodayAlwaysCheckedIn(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("same-day check-in pins the state", prop.ForAll(
		func(scheduledMinute, graceMinutes, checkInMinute, nowMinute int) bool {
			day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.Local)
			settings := &model.SafetySettings{
				UserID:              "user-1",
				DailyCheckInEnabled: true,
				DailyCheckInTime:    fmt.Sprintf("%02d:%02d", scheduledMinute/60, scheduledMinute%60),
				GracePeriodMinutes:  graceMinutes,
			}
			checkInAt := day.Add(time.Duration(checkInMinute) * time.Minute)
			settings.LastCheckInAt = &checkInAt
			now := day.Add(time.Duration(nowMinute) * time.Minute)

			state := EvaluateCheckIn(settings, now)

			deadline := DeadlineToday(settings, now)
			if checkInAt.After(deadline) {
				if state != StateCheckedInLate {
					t.Logf("Expected CHECKED_IN_LATE, got %s", state)
					return false
				}
			} else if state != StateCheckedIn {
				t.Logf("Expected CHECKED_IN, got %s", state)
				return false
			}

			return true
		},
		genClockMinute(),
		gen.IntRange(1, 1440),
		genClockMinute(),
		genClockMinute(),
	))

	properties.TestingRun(t)
}

// Property 2: Without a check-in, the state follows the clock alone:
// NOT_DUE before the scheduled time, DUE through the grace window, MISSED
// after the deadline.
func TestProperty_StateFollowsClockWithoutCheckIn(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("state partitions the day at scheduled time and deadline", prop.ForAll(
		func(scheduledMinute, graceMinutes, nowMinute int) bool {
			day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.Local)
			settings := &model.SafetySettings{
				UserID:              "user-1",
				DailyCheckInEnabled: true,
				DailyCheckInTime:    fmt.Sprintf("%02d:%02d", scheduledMinute/60, scheduledMinute%60),
				GracePeriodMinutes:  graceMinutes,
			}
			now := day.Add(time.Duration(nowMinute) * time.Minute)

			state := EvaluateCheckIn(settings, now)

			scheduled := ScheduledTimeToday(settings.DailyCheckInTime, now)
			deadline := DeadlineToday(settings, now)

			var expected CheckInState
			switch {
			case now.After(deadline):
				expected = StateMissed
			case !now.Before(scheduled):
				expected = StateDue
			default:
				expected = StateNotDue
			}

			if state != expected {
				t.Logf("scheduled=%s grace=%d now=%s: expected %s, got %s",
					settings.DailyCheckInTime, graceMinutes, now.Format("15:04"), expected, state)
				return false
			}

			return true
		},
		genClockMinute(),
		gen.IntRange(1, 1440),
		genClockMinute(),
	))

	properties.TestingRun(t)
}

// Property 3: Disabled check-ins never leave NOT_DUE, whatever the
// settings or clock say.
func TestProperty_DisabledNeverDue(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("disabled settings are always NOT_DUE", prop.ForAll(
		func(scheduledMinute, graceMinutes, nowMinute int) bool {
			day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.Local)
			settings := &model.SafetySettings{
				UserID:              "user-1",
				DailyCheckInEnabled: false,
				DailyCheckInTime:    fmt.Sprintf("%02d:%02d", scheduledMinute/60, scheduledMinute%60),
				GracePeriodMinutes:  graceMinutes,
			}
			now := day.Add(time.Duration(nowMinute) * time.Minute)

			if state := EvaluateCheckIn(settings, now); state != StateNotDue {
				t.Logf("Expected NOT_DUE for disabled settings, got %s", state)
				return false
			}
			if ShouldPromptMissedCheckIn(settings, now) {
				t.Log("Missed prompt must never fire when check-ins are disabled")
				return false
			}

			return true
		},
		genClockMinute(),
		gen.IntRange(1, 1440),
		genClockMinute(),
	))

	properties.TestingRun(t)
}

// Property 4: NextOccurrence is always in the future relative to now
// (strictly after, except when now is exactly the scheduled instant
// rolled to tomorrow) and always lands on the configured time of day.
func TestProperty_NextOccurrenceAlwaysAhead(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("next occurrence is ahead of now and keeps the time of day", prop.ForAll(
		func(scheduledMinute, nowMinute int) bool {
			day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.Local)
			hhmm := fmt.Sprintf("%02d:%02d", scheduledMinute/60, scheduledMinute%60)
			settings := &model.SafetySettings{
				UserID:              "user-1",
				DailyCheckInEnabled: true,
				DailyCheckInTime:    hhmm,
				GracePeriodMinutes:  60,
			}
			now := day.Add(time.Duration(nowMinute) * time.Minute)

			next := NextOccurrence(settings, now)

			if !next.After(now) {
				t.Logf("Next occurrence %s is not after now %s", next, now)
				return false
			}
			if next.Sub(now) > 24*time.Hour {
				t.Logf("Next occurrence %s is more than a day after now %s", next, now)
				return false
			}
			if next.Format("15:04") != hhmm {
				t.Logf("Next occurrence %s does not keep time of day %s", next.Format("15:04"), hhmm)
				return false
			}

			return true
		},
		genClockMinute(),
		genClockMinute(),
	))

	properties.TestingRun(t)
}
