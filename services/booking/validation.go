package booking

import (
	"regexp"
	"time"

	"consultly/models"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9()\-\s.]{7,20}$`)
)

func isAllowedDuration(minutes int) bool {
	for _, d := range models.AllowedDurations {
		if minutes == d {
			return true
		}
	}
	return false
}

// validateBookingInput aggregates every violated rule into one error so the
// caller sees the full list at once.
func validateBookingInput(input models.BookingInput, now time.Time) error {
	var fields []FieldError

	if input.Name == "" {
		fields = append(fields, FieldError{Field: "name", Message: "name is required"})
	}
	if input.Company == "" {
		fields = append(fields, FieldError{Field: "company", Message: "company is required"})
	}
	if input.Email == "" {
		fields = append(fields, FieldError{Field: "email", Message: "email is required"})
	} else if !emailPattern.MatchString(input.Email) {
		fields = append(fields, FieldError{Field: "email", Message: "email format is invalid"})
	}
	if input.Inquiry == "" {
		fields = append(fields, FieldError{Field: "inquiry", Message: "inquiry is required"})
	}
	if input.Phone != "" && !phonePattern.MatchString(input.Phone) {
		fields = append(fields, FieldError{Field: "phone", Message: "phone format is invalid"})
	}
	if !isAllowedDuration(input.DurationMinutes) {
		fields = append(fields, FieldError{Field: "durationMinutes", Message: "duration must be one of 15, 30, 45 or 60 minutes"})
	}
	if input.StartTime.IsZero() {
		fields = append(fields, FieldError{Field: "startTime", Message: "startTime is required"})
	} else if !input.StartTime.After(now) {
		fields = append(fields, FieldError{Field: "startTime", Message: "startTime must be in the future"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
