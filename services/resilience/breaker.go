package resilience

import (
	"errors"
	"sync"
	"time"

	"consultly/config"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a call
// without invoking the wrapped operation.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the circuit breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// BreakerConfig controls when the circuit opens and recovers.
type BreakerConfig struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	MonitoringPeriod time.Duration
}

// BreakerConfigFromApp builds a BreakerConfig from the loaded application config.
func BreakerConfigFromApp(rc config.ResilienceConfig) BreakerConfig {
	return BreakerConfig{
		FailureThreshold: rc.FailureThreshold,
		ResetTimeout:     time.Duration(rc.ResetTimeoutSec) * time.Second,
		MonitoringPeriod: time.Duration(rc.MonitoringPeriodSec) * time.Second,
	}
}

// Stats is a read-only snapshot of breaker activity, used for health
// reporting only.
type Stats struct {
	State           string `json:"state"`
	TotalCalls      uint64 `json:"totalCalls"`
	SuccessfulCalls uint64 `json:"successfulCalls"`
	FailedCalls     uint64 `json:"failedCalls"`
}

// CircuitBreaker guards one remote provider. Failures inside the monitoring
// period open the circuit once the threshold is reached; after ResetTimeout
// a single trial call decides whether it closes again.
type CircuitBreaker struct {
	mu       sync.Mutex
	cfg      BreakerConfig
	state    State
	failures []time.Time
	openedAt time.Time
	trialing bool // a half-open trial call is in flight

	totalCalls   uint64
	successCalls uint64
	failedCalls  uint64

	now func() time.Time // test hook
}

// NewCircuitBreaker returns a closed breaker.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		cfg: cfg,
		now: time.Now,
	}
}

// Execute runs fn unless the circuit is open. In the half-open state exactly
// one trial call is admitted; its outcome commits the breaker.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := fn()

	cb.afterCall(err)
	return err
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.cfg.ResetTimeout {
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.trialing = true
	case StateHalfOpen:
		if cb.trialing {
			return ErrCircuitOpen
		}
		cb.trialing = true
	}

	cb.totalCalls++
	return nil
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failedCalls++
		cb.recordFailure()
		return
	}

	cb.successCalls++
	cb.state = StateClosed
	cb.trialing = false
	cb.failures = cb.failures[:0]
}

// recordFailure must be called with cb.mu held.
func (cb *CircuitBreaker) recordFailure() {
	now := cb.now()

	if cb.state == StateHalfOpen {
		// Trial call failed; reopen and restart the timeout.
		cb.state = StateOpen
		cb.trialing = false
		cb.openedAt = now
		return
	}

	cutoff := now.Add(-cb.cfg.MonitoringPeriod)
	kept := cb.failures[:0]
	for _, t := range cb.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	cb.failures = append(kept, now)

	if len(cb.failures) >= cb.cfg.FailureThreshold {
		cb.state = StateOpen
		cb.openedAt = now
	}
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns a snapshot of call counters for health reporting.
func (cb *CircuitBreaker) Stats() Stats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return Stats{
		State:           cb.state.String(),
		TotalCalls:      cb.totalCalls,
		SuccessfulCalls: cb.successCalls,
		FailedCalls:     cb.failedCalls,
	}
}
