package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "consultly/database/repository/booking"
	"consultly/models"
)

// GetByID fetches a booking, including its downstream sync status.
func (s *DefaultBookingService) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return booking, nil
}

// List returns a page of bookings matching the filter.
func (s *DefaultBookingService) List(ctx context.Context, filter models.BookingFilter) (*models.PaginatedBookings, error) {
	page, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return page, nil
}
