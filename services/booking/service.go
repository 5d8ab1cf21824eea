package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "consultly/database/repository/booking"
	"consultly/models"
	"consultly/services/availability"
	"consultly/services/cache"
	"consultly/services/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Create validates and persists a new reservation, then dispatches the
// downstream sync tasks. The response never waits on those tasks.
func (s *DefaultBookingService) Create(ctx context.Context, input models.BookingInput) (*models.Booking, error) {
	now := s.now()

	if err := validateBookingInput(input, now); err != nil {
		return nil, err
	}

	if err := s.checkFrequencyLimit(ctx, input.Email, input.StartTime, input.DurationMinutes); err != nil {
		return nil, err
	}

	// Best-effort remote availability check. A confirmed conflict aborts;
	// a provider failure falls through to the local check, which is the
	// authoritative guard.
	if s.Calendar.Enabled() {
		ok, err := s.Engine.IsSlotAvailable(ctx, input.StartTime, input.DurationMinutes)
		if err != nil {
			s.Logger.Warn("calendar availability check failed, relying on local ledger",
				zap.Time("startTime", input.StartTime), zap.Error(err))
		} else if !ok {
			slot := models.TimeSlot{
				Start:           input.StartTime,
				End:             input.StartTime.Add(time.Duration(input.DurationMinutes) * time.Minute),
				DurationMinutes: input.DurationMinutes,
			}
			return nil, &ConflictError{Message: "requested slot conflicts with an existing calendar event", Slot: &slot}
		}
	}

	booking := &models.Booking{
		ID:              uuid.New().String(),
		Name:            input.Name,
		Company:         input.Company,
		Email:           input.Email,
		Phone:           input.Phone,
		Inquiry:         input.Inquiry,
		StartTime:       input.StartTime.UTC(),
		DurationMinutes: input.DurationMinutes,
		Status:          models.BookingStatusConfirmed,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}

	// The conflict check and insert run in one transaction, so concurrent
	// requests for the same interval cannot both commit.
	if err := s.Repo.CreateIfSlotFree(ctx, booking); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			slot := booking.Slot()
			return nil, &ConflictError{Message: "requested slot is already booked", Slot: &slot}
		}
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	s.invalidateAvailability(ctx)
	s.enqueueSyncTasks(booking.ID, tasks.ActionCreate)

	return booking, nil
}

// Update mutates a booking's fields, re-checking slot conflicts when the
// start time moves. A downstream re-sync failure never rolls back the
// local change.
func (s *DefaultBookingService) Update(ctx context.Context, id string, input models.BookingUpdateInput) (*models.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return nil, &ConflictError{Message: "cancelled bookings cannot be updated"}
	}

	if input.StartTime != nil {
		newStart := input.StartTime.UTC()
		if !newStart.After(s.now()) {
			return nil, &ValidationError{Fields: []FieldError{
				{Field: "startTime", Message: "startTime must be in the future"},
			}}
		}
		newEnd := newStart.Add(time.Duration(booking.DurationMinutes) * time.Minute)
		conflicts, err := s.Repo.FindOverlapping(ctx, newStart, newEnd, booking.ID)
		if err != nil {
			return nil, fmt.Errorf("conflict re-check failed: %w", err)
		}
		if len(conflicts) > 0 {
			slot := models.TimeSlot{Start: newStart, End: newEnd, DurationMinutes: booking.DurationMinutes}
			return nil, &ConflictError{Message: "requested slot is already booked", Slot: &slot}
		}
		booking.StartTime = newStart
	}

	if input.Name != nil {
		booking.Name = *input.Name
	}
	if input.Company != nil {
		booking.Company = *input.Company
	}
	if input.Phone != nil {
		booking.Phone = *input.Phone
	}
	if input.Inquiry != nil {
		booking.Inquiry = *input.Inquiry
	}

	if err := s.Repo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	s.invalidateAvailability(ctx)

	// Push the change downstream only where a sync already succeeded.
	if booking.CalendarSynced || booking.CrmSynced {
		s.enqueueSyncTasks(booking.ID, tasks.ActionUpdate)
	}

	return booking, nil
}

// Cancel moves a booking to its terminal state and schedules the remote
// cleanup. The slot is freed for the availability filter immediately.
func (s *DefaultBookingService) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return nil, &ConflictError{Message: "booking is already cancelled"}
	}

	if err := s.Repo.UpdateStatus(ctx, id, models.BookingStatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	booking.Status = models.BookingStatusCancelled

	s.invalidateAvailability(ctx)
	s.enqueueSyncTasks(booking.ID, tasks.ActionCancel)

	return booking, nil
}

// ListAvailableSlots exposes the availability engine to callers. Provider
// failures surface as ProviderError: unavailable data, not "no slots".
func (s *DefaultBookingService) ListAvailableSlots(ctx context.Context, start, end time.Time, durationMinutes int) ([]models.TimeSlot, error) {
	if !isAllowedDuration(durationMinutes) {
		return nil, &ValidationError{Fields: []FieldError{
			{Field: "durationMinutes", Message: "duration must be one of 15, 30, 45 or 60 minutes"},
		}}
	}

	slots, err := s.Engine.GetAvailableTimeSlots(ctx, start, end, durationMinutes)
	if err != nil {
		var calErr *availability.CalendarError
		if errors.As(err, &calErr) {
			return nil, &ProviderError{Provider: "calendar", Err: calErr.Err}
		}
		return nil, err
	}
	return slots, nil
}

// invalidateAvailability drops the calendar and slots namespaces wholesale.
// Cache failures are logged and swallowed.
func (s *DefaultBookingService) invalidateAvailability(ctx context.Context) {
	for _, prefix := range []string{cache.PrefixCalendarBusy, cache.PrefixAvailableSlots} {
		if err := s.Cache.DeleteByPattern(ctx, prefix); err != nil {
			s.Logger.Warn("cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
		}
	}
}

// enqueueSyncTasks schedules the three independent background tasks. An
// enqueue failure is logged and leaves the booking awaiting manual sync
// follow-up; it never fails the request.
func (s *DefaultBookingService) enqueueSyncTasks(bookingID, action string) {
	payload := tasks.SyncPayload{BookingID: bookingID, Action: action}

	type taskBuilder struct {
		name  string
		build func(tasks.SyncPayload) (*asynq.Task, error)
	}
	builders := []taskBuilder{
		{name: "calendar sync", build: tasks.NewCalendarSyncTask},
		{name: "crm sync", build: tasks.NewCrmSyncTask},
	}
	if action != tasks.ActionCancel {
		builders = append(builders, taskBuilder{name: "confirmation", build: tasks.NewConfirmationTask})
	}

	for _, b := range builders {
		task, err := b.build(payload)
		if err != nil {
			s.Logger.Error("failed to build background task",
				zap.String("task", b.name), zap.String("bookingID", bookingID), zap.Error(err))
			continue
		}
		if _, err := s.Tasks.Enqueue(task); err != nil {
			s.Logger.Error("failed to enqueue background task",
				zap.String("task", b.name), zap.String("bookingID", bookingID), zap.Error(err))
		}
	}
}
