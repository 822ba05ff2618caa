// File: services/assistant/slots.go
package assistant

import "time"

// Working hours: Monday to Saturday, 9:00 to 20:00. Suggested slots start on
// the hour and must end within the window.
const (
	workDayStartHour = 9
	workDayEndHour   = 20
	suggestionCount  = 6
	suggestionStep   = 3 * time.Hour
)

// SuggestTimeSlots produces up to n human-readable appointment slots after
// now, spaced out across upcoming working days. Sundays and late-day
// overflow roll into the next valid day at opening time.
func SuggestTimeSlots(now time.Time, n int) []string {
	if n <= 0 {
		n = suggestionCount
	}

	candidate := firstCandidate(now)

	slots := make([]string, 0, n)
	for len(slots) < n {
		candidate = nextValidSlot(candidate)
		slots = append(slots, candidate.Format("Monday, Jan 2 at 3 PM"))
		candidate = candidate.Add(suggestionStep)
	}
	return slots
}

// firstCandidate is the next full wall-clock hour with an hour of lead time.
// Truncate works on absolute time and would land on :30 in half-hour-offset
// zones, so the hour is rebuilt in the local calendar instead.
func firstCandidate(now time.Time) time.Time {
	top := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	return top.Add(2 * time.Hour)
}

// nextValidSlot advances t to the nearest time inside working hours.
func nextValidSlot(t time.Time) time.Time {
	for {
		if t.Weekday() == time.Sunday {
			t = openingTime(t.AddDate(0, 0, 1))
			continue
		}
		if t.Hour() < workDayStartHour {
			t = openingTime(t)
			continue
		}
		if t.Hour() >= workDayEndHour {
			t = openingTime(t.AddDate(0, 0, 1))
			continue
		}
		return t
	}
}

func openingTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), workDayStartHour, 0, 0, 0, t.Location())
}
