package models

import "time"

// Booking lifecycle statuses. Cancellation is terminal.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Allowed consultation durations in minutes.
var AllowedDurations = []int{15, 30, 45, 60}

// Booking represents a confirmed consultation reservation.
type Booking struct {
	ID      string `bson:"id" json:"id"` // Unique booking identifier (UUID)
	Name    string `bson:"name" json:"name"`
	Company string `bson:"company" json:"company"`
	Email   string `bson:"email" json:"email"`
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Inquiry string `bson:"inquiry" json:"inquiry"`

	StartTime       time.Time `bson:"start_time" json:"startTime"`
	DurationMinutes int       `bson:"duration_minutes" json:"durationMinutes"`
	Status          string    `bson:"status" json:"status"`

	// Downstream synchronization state, tracked per system.
	CalendarEventID            string `bson:"calendar_event_id,omitempty" json:"calendarEventId,omitempty"`
	CalendarSynced             bool   `bson:"calendar_synced" json:"calendarSynced"`
	RequiresManualCalendarSync bool   `bson:"requires_manual_calendar_sync" json:"requiresManualCalendarSync"`
	CrmContactID               string `bson:"crm_contact_id,omitempty" json:"crmContactId,omitempty"`
	CrmSynced                  bool   `bson:"crm_synced" json:"crmSynced"`
	RequiresManualCrmSync      bool   `bson:"requires_manual_crm_sync" json:"requiresManualCrmSync"`

	ConfirmationSent bool `bson:"confirmation_sent" json:"confirmationSent"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// EndTime is derived from the start time and duration, never stored.
func (b Booking) EndTime() time.Time {
	return b.StartTime.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// Slot returns the interval this booking occupies.
func (b Booking) Slot() TimeSlot {
	return TimeSlot{Start: b.StartTime, End: b.EndTime(), DurationMinutes: b.DurationMinutes}
}

// IsCancelled reports whether the booking reached its terminal state.
func (b Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// BookingInput is the caller-facing payload for creating a booking.
type BookingInput struct {
	Name            string    `json:"name"`
	Company         string    `json:"company"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	Inquiry         string    `json:"inquiry"`
	StartTime       time.Time `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
}

// BookingUpdateInput carries the mutable fields of a booking. Nil pointers
// leave the corresponding field untouched.
type BookingUpdateInput struct {
	Name      *string    `json:"name,omitempty"`
	Company   *string    `json:"company,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Inquiry   *string    `json:"inquiry,omitempty"`
	StartTime *time.Time `json:"startTime,omitempty"`
}

// BookingFilter narrows booking list queries.
type BookingFilter struct {
	Email  string
	Status string
	From   time.Time
	To     time.Time
	Page   int
	Limit  int
}

// PaginatedBookings is the list-query result shape.
type PaginatedBookings struct {
	Bookings []Booking `json:"bookings"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}
