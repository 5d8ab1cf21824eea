package models

import "time"

// TimeSlot is an ephemeral interval, used both for busy periods returned
// by the calendar provider and for candidate slots computed by the
// availability engine. It is never persisted.
type TimeSlot struct {
	Start           time.Time `json:"startTime"`
	End             time.Time `json:"endTime"`
	DurationMinutes int       `json:"durationMinutes"`
}

// Overlaps applies the half-open interval test: back-to-back slots do not
// conflict.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// Expand widens the slot by the buffer on both sides.
func (s TimeSlot) Expand(buffer time.Duration) TimeSlot {
	return TimeSlot{
		Start:           s.Start.Add(-buffer),
		End:             s.End.Add(buffer),
		DurationMinutes: s.DurationMinutes,
	}
}
