package cache

import (
	"fmt"
	"time"
)

// Cache namespaces. Booking writes invalidate the calendar and slots
// prefixes unconditionally.
const (
	PrefixCalendarBusy   = "calendar:busy:"
	PrefixAvailableSlots = "slots:available:"
	PrefixCrmContact     = "crm:contact:"
)

// Entry TTLs.
const (
	BusySlotsTTL      = 5 * time.Minute
	AvailableSlotsTTL = 5 * time.Minute
	CrmContactTTL     = time.Hour
)

// BusySlotsKey keys the remote busy-period cache by query range.
func BusySlotsKey(start, end time.Time) string {
	return fmt.Sprintf("%s%s:%s", PrefixCalendarBusy, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
}

// AvailableSlotsKey keys the computed-slot cache by query range and duration.
func AvailableSlotsKey(start, end time.Time, durationMinutes int) string {
	return fmt.Sprintf("%s%s:%s:%d", PrefixAvailableSlots, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339), durationMinutes)
}

// CrmContactKey keys cached CRM contact lookups by requester email.
func CrmContactKey(email string) string {
	return PrefixCrmContact + email
}
