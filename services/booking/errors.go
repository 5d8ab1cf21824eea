package booking

import (
	"fmt"
	"strings"

	"consultly/models"
)

// FieldError describes one violated validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every violated rule of one request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FrequencyLimitError signals that the requester exceeded the per-duration
// booking limit inside the rolling window.
type FrequencyLimitError struct {
	Limit           int
	WindowMinutes   int
	DurationMinutes int
}

func (e *FrequencyLimitError) Error() string {
	return fmt.Sprintf("frequency limit reached: at most %d bookings of %d minutes within %d minutes",
		e.Limit, e.DurationMinutes, e.WindowMinutes)
}

// ConflictError signals that the requested slot is no longer available.
type ConflictError struct {
	Message string
	Slot    *models.TimeSlot
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NotFoundError signals an unknown booking id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("booking %s not found", e.ID)
}

// ProviderError wraps a calendar or CRM failure that survived the retry
// policy and circuit breaker.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider call failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
