package triage

import (
	"fmt"
	"strings"

	"github.com/mopshyai/carebowapp-sub005/pkg/model"
)

// Result is the output of a triage evaluation.
type Result struct {
	RiskLevel              model.RiskLevel       `json:"riskLevel"`
	CareSuggestion         model.CareSuggestion  `json:"careSuggestion"`
	Reason                 string                `json:"reason"`
	EmergencyKeywordsFound []string              `json:"emergencyKeywordsFound"`
	IsEmergency            bool                  `json:"isEmergency"`
}

// Perform evaluates a symptom report and returns a risk level and care
// suggestion. It is a pure, total function: no I/O, no clock, no
// randomness, and identical inputs always produce identical results.
//
// An emergency keyword match short-circuits everything else. A free-text
// emergency signal must never be downgraded by a mild self-reported
// severity rating.
func Perform(description string, duration model.Duration, severity model.Severity) Result {
	if matches := findEmergencyKeywords(description); len(matches) > 0 {
		return Result{
			RiskLevel:              model.RiskEmergency,
			CareSuggestion:         model.CareEmergency,
			Reason:                 fmt.Sprintf("Your description mentions %s, which can indicate a medical emergency. Call emergency services or go to the nearest ER now.", strings.Join(matches, ", ")),
			EmergencyKeywordsFound: matches,
			IsEmergency:            true,
		}
	}

	risk, care, reason := evaluateTable(duration, severity)
	return Result{
		RiskLevel:              risk,
		CareSuggestion:         care,
		Reason:                 reason,
		EmergencyKeywordsFound: []string{},
	}
}

// findEmergencyKeywords collects every matched keyword, preserving the
// order of the keyword list.
func findEmergencyKeywords(description string) []string {
	desc := strings.ToLower(description)

	var matches []string
	for _, keyword := range EmergencyKeywords {
		if strings.Contains(desc, keyword) {
			matches = append(matches, keyword)
		}
	}
	return matches
}

// evaluateTable applies the severity/duration decision table. The
// asymmetric bucketing (high severity collapses hours/days while low
// severity splits weeks from ongoing) is intentional clinical judgment
// carried over from the original rule set; do not normalize it.
func evaluateTable(duration model.Duration, severity model.Severity) (model.RiskLevel, model.CareSuggestion, string) {
	switch severity {
	case model.SeverityHigh:
		switch duration {
		case model.DurationJustStarted:
			return model.RiskHigh, model.CareUrgentCare,
				"Severe symptoms that just started should be evaluated promptly at an urgent care clinic."
		case model.DurationHours, model.DurationDays:
			return model.RiskHigh, model.CareDoctorVisit,
				"Severe symptoms lasting this long should be assessed by a doctor as soon as possible."
		default: // weeks, ongoing
			return model.RiskHigh, model.CareDoctorVisit,
				"Severe symptoms persisting for an extended period need a medical assessment."
		}

	case model.SeverityMedium:
		switch duration {
		case model.DurationJustStarted, model.DurationHours:
			return model.RiskMedium, model.CareMonitor,
				"Moderate symptoms can be monitored at home for now. Seek care if they worsen."
		case model.DurationDays:
			return model.RiskMedium, model.CareDoctorVisit,
				"Moderate symptoms lasting several days are worth discussing with a doctor."
		default: // weeks, ongoing
			return model.RiskMedium, model.CareDoctorVisit,
				"Moderate symptoms persisting this long should be reviewed by a doctor."
		}

	default: // low severity
		switch duration {
		case model.DurationWeeks:
			return model.RiskLow, model.CareMonitor,
				"Mild symptoms lasting a few weeks are usually not urgent, but keep an eye on them."
		case model.DurationOngoing:
			// Chronic mild symptoms still warrant a checkup.
			return model.RiskLow, model.CareDoctorVisit,
				"Even mild symptoms that persist long-term deserve a routine checkup."
		default: // just_started, hours, days
			return model.RiskLow, model.CareMonitor,
				"Mild symptoms can usually be managed at home with rest and monitoring."
		}
	}
}

// UrgencyScore maps a risk level to a sortable integer. Higher means
// more urgent: emergency > high > medium > low.
func UrgencyScore(risk model.RiskLevel) int {
	switch risk {
	case model.RiskEmergency:
		return 4
	case model.RiskHigh:
		return 3
	case model.RiskMedium:
		return 2
	default:
		return 1
	}
}

// UrgencyAdvice maps a care suggestion to a fixed time-window phrase.
func UrgencyAdvice(care model.CareSuggestion) string {
	switch care {
	case model.CareEmergency:
		return "Call emergency services or go to the nearest ER immediately."
	case model.CareUrgentCare:
		return "Visit an urgent care clinic within the next few hours."
	case model.CareDoctorVisit:
		return "Book a doctor visit within the next few days."
	default:
		return "Keep monitoring at home. No visit needed unless symptoms change."
	}
}
