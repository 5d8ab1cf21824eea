package availability

import (
	"fmt"
	"time"

	"consultly/config"
	"consultly/models"
)

// generateCandidateSlots walks every business day in [start, end] and emits
// the candidate slots for the requested duration. Slot boundaries are
// computed in the business timezone, then carried as absolute instants.
func generateCandidateSlots(hours config.BusinessHours, start, end time.Time, durationMinutes int) ([]models.TimeSlot, error) {
	loc, err := time.LoadLocation(hours.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid business timezone %q: %w", hours.Timezone, err)
	}

	weekdays := make(map[time.Weekday]bool, len(hours.Weekdays))
	for _, wd := range hours.Weekdays {
		weekdays[time.Weekday(wd)] = true
	}

	duration := time.Duration(durationMinutes) * time.Minute
	step := duration + time.Duration(hours.BufferMinutes)*time.Minute

	var slots []models.TimeSlot
	first := start.In(loc)
	dayStart := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, loc)

	for day := dayStart; !day.After(end.In(loc)); day = day.AddDate(0, 0, 1) {
		if !weekdays[day.Weekday()] {
			continue
		}

		windowStart := time.Date(day.Year(), day.Month(), day.Day(), hours.StartHour, 0, 0, 0, loc)
		windowEnd := time.Date(day.Year(), day.Month(), day.Day(), hours.EndHour, 0, 0, 0, loc)

		for slotStart := windowStart; ; slotStart = slotStart.Add(step) {
			slotEnd := slotStart.Add(duration)
			if slotEnd.After(windowEnd) {
				break
			}
			slots = append(slots, models.TimeSlot{
				Start:           slotStart,
				End:             slotEnd,
				DurationMinutes: durationMinutes,
			})
		}
	}
	return slots, nil
}

// overlapsAny reports whether the slot overlaps any of the given intervals.
func overlapsAny(slot models.TimeSlot, intervals []models.TimeSlot) bool {
	for _, iv := range intervals {
		if slot.Overlaps(iv) {
			return true
		}
	}
	return false
}
