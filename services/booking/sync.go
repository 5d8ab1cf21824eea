package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "consultly/database/repository/booking"
	"consultly/models"
	"consultly/services/cache"
	"consultly/services/notification"
	"consultly/services/tasks"

	"go.uber.org/zap"
)

// Background sync handlers. Each one is idempotent-by-overwrite: it always
// drives the booking to a terminal synced-or-manual state, and its errors
// never reach the caller of the original request. A handler returns nil
// after recording a manual-sync flag so the queue does not re-run it.

// HandleCalendarSync pushes a booking change to the remote calendar.
func (s *DefaultBookingService) HandleCalendarSync(ctx context.Context, payload tasks.SyncPayload) error {
	if !s.Calendar.Enabled() {
		return nil
	}

	booking, err := s.loadForSync(ctx, payload.BookingID)
	if err != nil || booking == nil {
		return err
	}

	var eventID string
	err = s.CalendarBreaker.Execute(func() error {
		return s.Retrier.Do(ctx, func() error {
			switch payload.Action {
			case tasks.ActionCancel:
				if booking.CalendarEventID == "" {
					return nil
				}
				return s.Calendar.DeleteEvent(ctx, booking.CalendarEventID)
			case tasks.ActionUpdate:
				if booking.CalendarEventID != "" {
					ev, callErr := s.Calendar.UpdateEvent(ctx, booking.CalendarEventID, s.eventInput(booking))
					if callErr != nil {
						return callErr
					}
					eventID = ev.ID
					return nil
				}
				fallthrough
			default:
				ev, callErr := s.Calendar.CreateEvent(ctx, s.eventInput(booking))
				if callErr != nil {
					return callErr
				}
				eventID = ev.ID
				return nil
			}
		})
	})

	if err != nil {
		s.Logger.Error("calendar sync failed, flagging for manual follow-up",
			zap.String("bookingID", booking.ID), zap.String("action", payload.Action), zap.Error(err))
		return s.Repo.SetCalendarSync(ctx, booking.ID, "", false, true)
	}

	return s.Repo.SetCalendarSync(ctx, booking.ID, eventID, true, false)
}

// HandleCrmSync upserts the requester as a CRM contact and records the
// booking outcome on it.
func (s *DefaultBookingService) HandleCrmSync(ctx context.Context, payload tasks.SyncPayload) error {
	if !s.Crm.Enabled() {
		return nil
	}

	booking, err := s.loadForSync(ctx, payload.BookingID)
	if err != nil || booking == nil {
		return err
	}

	var contactID string
	err = s.CrmBreaker.Execute(func() error {
		return s.Retrier.Do(ctx, func() error {
			contact, callErr := s.upsertContact(ctx, booking)
			if callErr != nil {
				return callErr
			}
			contactID = contact.ID
			return nil
		})
	})

	if err != nil {
		s.Logger.Error("crm sync failed, flagging for manual follow-up",
			zap.String("bookingID", booking.ID), zap.String("action", payload.Action), zap.Error(err))
		return s.Repo.SetCrmSync(ctx, booking.ID, "", false, true)
	}

	return s.Repo.SetCrmSync(ctx, booking.ID, contactID, true, false)
}

// HandleConfirmation sends the user-facing notification. Best-effort: a
// delivery failure is logged and dropped.
func (s *DefaultBookingService) HandleConfirmation(ctx context.Context, payload tasks.SyncPayload) error {
	booking, err := s.loadForSync(ctx, payload.BookingID)
	if err != nil || booking == nil {
		return err
	}

	msg := notification.Message{
		To:      booking.Email,
		Subject: "Your consultation is confirmed",
		Body: fmt.Sprintf("Hi %s, your %d-minute consultation on %s is confirmed.",
			booking.Name, booking.DurationMinutes, booking.StartTime.Format(time.RFC1123)),
	}
	if err := s.Notifier.Send(ctx, msg); err != nil {
		s.Logger.Warn("confirmation notification failed",
			zap.String("bookingID", booking.ID), zap.Error(err))
		return nil
	}

	return s.Repo.SetConfirmationSent(ctx, booking.ID)
}

// loadForSync fetches the booking for a background task. A missing booking
// is not an error worth retrying.
func (s *DefaultBookingService) loadForSync(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.Logger.Warn("background task for unknown booking", zap.String("bookingID", id))
			return nil, nil
		}
		return nil, err
	}
	return booking, nil
}

func (s *DefaultBookingService) eventInput(b *models.Booking) models.EventInput {
	return models.EventInput{
		Summary:     fmt.Sprintf("Consultation: %s (%s)", b.Name, b.Company),
		Description: b.Inquiry,
		Start:       b.StartTime,
		End:         b.EndTime(),
		Attendee:    b.Email,
	}
}

// upsertContact resolves the CRM contact, consulting the contact cache to
// avoid repeated lookups, then writes the booking properties.
func (s *DefaultBookingService) upsertContact(ctx context.Context, b *models.Booking) (*models.Contact, error) {
	properties := map[string]string{
		"last_booking_id":     b.ID,
		"last_booking_start":  b.StartTime.Format(time.RFC3339),
		"last_booking_status": b.Status,
	}

	key := cache.CrmContactKey(b.Email)
	var cached models.Contact
	if err := s.Cache.GetJSON(ctx, key, &cached); err == nil && cached.ID != "" {
		if err := s.Crm.UpdateContact(ctx, cached.ID, properties); err != nil {
			return nil, err
		}
		return &cached, nil
	}

	contact, err := s.Crm.UpsertContact(ctx, models.ContactInput{
		Email:            b.Email,
		FirstName:        b.Name,
		Company:          b.Company,
		Phone:            b.Phone,
		CustomProperties: properties,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Cache.SetJSON(ctx, key, contact, cache.CrmContactTTL); err != nil {
		s.Logger.Warn("crm contact cache write failed", zap.Error(err))
	}
	return contact, nil
}
