// Package resilience provides the retry policy and circuit breaker that
// guard every outbound provider call.
package resilience

import (
	"context"
	"errors"
	"math"
	"net"
	"strings"
	"time"

	"consultly/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// RetryConfig controls the deterministic exponential backoff schedule.
type RetryConfig struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// RetryConfigFromApp builds a RetryConfig from the loaded application config.
func RetryConfigFromApp(rc config.ResilienceConfig) RetryConfig {
	return RetryConfig{
		MaxAttempts:       rc.MaxAttempts,
		InitialDelay:      time.Duration(rc.InitialDelayMs) * time.Millisecond,
		MaxDelay:          time.Duration(rc.MaxDelayMs) * time.Millisecond,
		BackoffMultiplier: rc.BackoffMultiplier,
	}
}

// Retrier re-runs transient failures with exponential backoff. Non-retryable
// errors propagate on the first attempt.
type Retrier struct {
	cfg    RetryConfig
	logger *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error // test hook
}

// NewRetrier returns a Retrier with the given configuration.
func NewRetrier(cfg RetryConfig, logger *zap.Logger) *Retrier {
	return &Retrier{
		cfg:    cfg,
		logger: logger,
		sleep:  sleepCtx,
	}
}

// Do invokes op, retrying transient errors up to MaxAttempts times. The last
// error is returned once attempts are exhausted.
func (r *Retrier) Do(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == r.cfg.MaxAttempts {
			break
		}

		delay := r.DelayFor(attempt)
		r.logger.Warn("retrying transient failure",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(lastErr))
		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

// DelayFor returns the backoff delay after the given 1-based attempt:
// min(initial * multiplier^(attempt-1), max). No jitter.
func (r *Retrier) DelayFor(attempt int) time.Duration {
	delay := float64(r.cfg.InitialDelay) * math.Pow(r.cfg.BackoffMultiplier, float64(attempt-1))
	if delay > float64(r.cfg.MaxDelay) {
		return r.cfg.MaxDelay
	}
	return time.Duration(delay)
}

// transientKeywords mark provider errors worth retrying even when the error
// type carries no structure.
var transientKeywords = []string{
	"timeout",
	"connection",
	"network",
	"unavailable",
	"reset by peer",
	"too many requests",
}

// IsRetryable classifies an error as transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, kw := range transientKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
