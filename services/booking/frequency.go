package booking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// checkFrequencyLimit enforces the per-duration rolling-window rule for one
// requester. The window is symmetric around the candidate start time. The
// check is read-then-act and deliberately not atomic against concurrent
// attempts from the same email.
func (s *DefaultBookingService) checkFrequencyLimit(ctx context.Context, email string, start time.Time, durationMinutes int) error {
	rule, ok := s.Rules[durationMinutes]
	if !ok {
		s.Logger.Warn("no frequency rule configured for duration, skipping limit",
			zap.Int("durationMinutes", durationMinutes))
		return nil
	}

	window := time.Duration(rule.WindowMinutes) * time.Minute
	existing, err := s.Repo.FindByEmailInRange(ctx, email, start.Add(-window), start.Add(window))
	if err != nil {
		return fmt.Errorf("frequency window query failed: %w", err)
	}

	count := 0
	for _, b := range existing {
		if b.DurationMinutes == durationMinutes {
			count++
		}
	}

	if count >= rule.MaxBookings {
		return &FrequencyLimitError{
			Limit:           rule.MaxBookings,
			WindowMinutes:   rule.WindowMinutes,
			DurationMinutes: durationMinutes,
		}
	}
	return nil
}
