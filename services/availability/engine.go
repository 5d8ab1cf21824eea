// Package availability computes bookable time slots by combining
// business-hour rules with remote busy periods and the local ledger.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consultly/config"
	bookingRepo "consultly/database/repository/booking"
	"consultly/models"
	"consultly/services/cache"
	"consultly/services/calendar"
	"consultly/services/resilience"

	"go.uber.org/zap"
)

// CalendarError marks a failure of the remote calendar after the retry
// policy and circuit breaker gave up.
type CalendarError struct {
	Err error
}

func (e *CalendarError) Error() string {
	return fmt.Sprintf("calendar busy lookup failed: %v", e.Err)
}

func (e *CalendarError) Unwrap() error {
	return e.Err
}

// Engine produces bookable slots for a date range and duration.
type Engine struct {
	Calendar calendar.Provider
	Repo     bookingRepo.BookingRepository
	Cache    cache.Store
	Breaker  *resilience.CircuitBreaker
	Retrier  *resilience.Retrier
	Hours    config.BusinessHours
	Logger   *zap.Logger

	now func() time.Time
}

// NewEngine wires an availability engine from its collaborators.
func NewEngine(cal calendar.Provider, repo bookingRepo.BookingRepository, store cache.Store,
	breaker *resilience.CircuitBreaker, retrier *resilience.Retrier,
	hours config.BusinessHours, logger *zap.Logger) *Engine {
	return &Engine{
		Calendar: cal,
		Repo:     repo,
		Cache:    store,
		Breaker:  breaker,
		Retrier:  retrier,
		Hours:    hours,
		Logger:   logger,
		now:      time.Now,
	}
}

// GetBusySlots returns the remote calendar's busy intervals overlapping
// [start, end), cached for a short TTL. Cancelled events are ignored.
func (e *Engine) GetBusySlots(ctx context.Context, start, end time.Time) ([]models.TimeSlot, error) {
	if !e.Calendar.Enabled() {
		return nil, nil
	}

	key := cache.BusySlotsKey(start, end)
	var cached []models.TimeSlot
	if err := e.Cache.GetJSON(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		e.Logger.Warn("busy-slot cache read failed", zap.Error(err))
	}

	var events []models.Event
	err := e.Breaker.Execute(func() error {
		return e.Retrier.Do(ctx, func() error {
			var callErr error
			events, callErr = e.Calendar.ListEvents(ctx, start, end)
			return callErr
		})
	})
	if err != nil {
		return nil, &CalendarError{Err: err}
	}

	busy := make([]models.TimeSlot, 0, len(events))
	for _, ev := range events {
		if ev.Status == models.EventStatusCancelled {
			continue
		}
		busy = append(busy, models.TimeSlot{
			Start:           ev.Start,
			End:             ev.End,
			DurationMinutes: int(ev.End.Sub(ev.Start) / time.Minute),
		})
	}

	if err := e.Cache.SetJSON(ctx, key, busy, cache.BusySlotsTTL); err != nil {
		e.Logger.Warn("busy-slot cache write failed", zap.Error(err))
	}
	return busy, nil
}

// IsSlotAvailable checks one candidate interval against the remote busy
// periods of its containing day. Back-to-back slots do not conflict.
func (e *Engine) IsSlotAvailable(ctx context.Context, start time.Time, durationMinutes int) (bool, error) {
	loc, err := time.LoadLocation(e.Hours.Timezone)
	if err != nil {
		return false, fmt.Errorf("invalid business timezone %q: %w", e.Hours.Timezone, err)
	}

	local := start.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	busy, err := e.GetBusySlots(ctx, dayStart, dayEnd)
	if err != nil {
		return false, err
	}

	candidate := models.TimeSlot{
		Start:           start,
		End:             start.Add(time.Duration(durationMinutes) * time.Minute),
		DurationMinutes: durationMinutes,
	}
	return !overlapsAny(candidate, busy), nil
}

// GetAvailableSlots computes the open slots for [start, end] and the given
// duration: business-hour candidates minus buffer-expanded busy overlaps,
// bounded by the advance-notice window. Results are cached.
func (e *Engine) GetAvailableSlots(ctx context.Context, start, end time.Time, durationMinutes int) ([]models.TimeSlot, error) {
	key := cache.AvailableSlotsKey(start, end, durationMinutes)
	var cached []models.TimeSlot
	if err := e.Cache.GetJSON(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		e.Logger.Warn("slot cache read failed", zap.Error(err))
	}

	var busy []models.TimeSlot
	if e.Calendar.Enabled() {
		var err error
		busy, err = e.GetBusySlots(ctx, start, end)
		if err != nil {
			// Callers must treat this as unavailable data, not as "no slots".
			return nil, err
		}
	}

	candidates, err := generateCandidateSlots(e.Hours, start, end, durationMinutes)
	if err != nil {
		return nil, err
	}

	now := e.now()
	minStart := now.Add(time.Duration(e.Hours.MinAdvanceHours) * time.Hour)
	maxStart := now.Add(time.Duration(e.Hours.MaxAdvanceHours) * time.Hour)
	buffer := time.Duration(e.Hours.BufferMinutes) * time.Minute

	available := make([]models.TimeSlot, 0, len(candidates))
	for _, slot := range candidates {
		if slot.Start.Before(minStart) || slot.Start.After(maxStart) {
			continue
		}
		// The buffer is applied here rather than on the busy intervals so
		// that back-to-back busy periods still block adjacent candidates.
		if overlapsAny(slot.Expand(buffer), busy) {
			continue
		}
		available = append(available, slot)
	}

	if err := e.Cache.SetJSON(ctx, key, available, cache.AvailableSlotsTTL); err != nil {
		e.Logger.Warn("slot cache write failed", zap.Error(err))
	}
	return available, nil
}

// GetAvailableTimeSlots is the orchestrator-facing listing: engine slots
// filtered a second time against the local ledger, which catches
// reservations the calendar provider does not know about yet.
func (e *Engine) GetAvailableTimeSlots(ctx context.Context, start, end time.Time, durationMinutes int) ([]models.TimeSlot, error) {
	slots, err := e.GetAvailableSlots(ctx, start, end, durationMinutes)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return slots, nil
	}

	local, err := e.Repo.FindOverlapping(ctx, start, end, "")
	if err != nil {
		return nil, fmt.Errorf("local ledger lookup failed: %w", err)
	}

	reserved := make([]models.TimeSlot, 0, len(local))
	for _, b := range local {
		reserved = append(reserved, b.Slot())
	}

	open := make([]models.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if overlapsAny(slot, reserved) {
			continue
		}
		open = append(open, slot)
	}
	return open, nil
}
