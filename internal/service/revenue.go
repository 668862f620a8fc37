package service

import (
	"math"

	"github.com/tutortrack/tutortrack-api/internal/models"
)

// SessionRevenue returns the unrounded amount one student owes for one session.
// Group sessions bill every listed student the full duration at their own rate;
// the amount is never split across attendees.
//
// Every aggregator in this package (balance recalculation, monthly stats, the
// full-history earnings breakdown) must go through this function so the three
// call sites cannot drift apart. Callers sum these real-valued amounts and
// round the aggregate once; rounding per session produces different totals.
func SessionRevenue(hourlyRate, durationMinutes int) float64 {
	return float64(hourlyRate) * float64(durationMinutes) / 60
}

// RoundAmount rounds an aggregate revenue sum half-up to a whole currency unit.
func RoundAmount(sum float64) int {
	return int(math.Round(sum))
}

// rateIndex maps student id to hourly rate for revenue attribution. Ids in a
// session that are absent from the index (deleted students) contribute zero.
func rateIndex(students []models.Student) map[string]int {
	rates := make(map[string]int, len(students))
	for _, s := range students {
		rates[s.ID] = s.HourlyRate
	}
	return rates
}
