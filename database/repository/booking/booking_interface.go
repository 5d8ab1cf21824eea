package bookingRepo

import (
	"context"
	"time"

	"consultly/models"
)

// BookingRepository defines the data-access contract for the reservation ledger.
type BookingRepository interface {
	// CreateIfSlotFree inserts the booking only if no non-cancelled booking
	// overlaps its interval. The conflict check and insert run inside one
	// transaction; a losing concurrent insert surfaces ErrSlotTaken.
	CreateIfSlotFree(ctx context.Context, booking *models.Booking) error

	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error
	UpdateStatus(ctx context.Context, id, status string) error

	// Targeted writes for background sync outcomes.
	SetCalendarSync(ctx context.Context, id, eventID string, synced, requiresManual bool) error
	SetCrmSync(ctx context.Context, id, contactID string, synced, requiresManual bool) error
	SetConfirmationSent(ctx context.Context, id string) error

	// FindOverlapping returns non-cancelled bookings whose interval overlaps
	// [start, end), optionally excluding one booking id.
	FindOverlapping(ctx context.Context, start, end time.Time, excludeID string) ([]models.Booking, error)

	// FindByEmailInRange returns non-cancelled bookings for the given email
	// with start times inside [from, to], used by the frequency limiter.
	FindByEmailInRange(ctx context.Context, email string, from, to time.Time) ([]models.Booking, error)

	List(ctx context.Context, filter models.BookingFilter) (*models.PaginatedBookings, error)
}
