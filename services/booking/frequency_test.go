package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencyLimitBlocksAtCap(t *testing.T) {
	f := newFixture()
	// Two 30-minute bookings inside the 180-minute window around 14:00.
	f.repo.seed(confirmedBooking("b-1", mondayAt(12, 0), 30))
	f.repo.seed(confirmedBooking("b-2", mondayAt(16, 0), 30))

	err := f.svc.checkFrequencyLimit(context.Background(), "ada@example.com", mondayAt(14, 0), 30)
	require.Error(t, err)

	var freqErr *FrequencyLimitError
	require.ErrorAs(t, err, &freqErr)
	assert.Equal(t, 2, freqErr.Limit)
	assert.Equal(t, 180, freqErr.WindowMinutes)
	assert.Equal(t, 30, freqErr.DurationMinutes)
}

func TestFrequencyWindowIsSymmetric(t *testing.T) {
	f := newFixture()
	f.repo.seed(confirmedBooking("b-1", mondayAt(9, 0), 60))

	tests := []struct {
		name  string
		start time.Time
		allow bool
	}{
		{name: "earlier booking inside trailing window", start: mondayAt(12, 0), allow: false},
		{name: "earlier booking inside leading window", start: mondayAt(6, 0), allow: false},
		{name: "just outside trailing window", start: mondayAt(13, 30), allow: true},
		{name: "just outside leading window", start: mondayAt(4, 30), allow: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.checkFrequencyLimit(context.Background(), "ada@example.com", tt.start, 60)
			if tt.allow {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFrequencyRulesArePerDuration(t *testing.T) {
	f := newFixture()
	// At the 60-minute cap already, but 30-minute bookings count separately.
	f.repo.seed(confirmedBooking("b-1", mondayAt(10, 0), 60))

	err := f.svc.checkFrequencyLimit(context.Background(), "ada@example.com", mondayAt(12, 0), 60)
	require.Error(t, err)

	err = f.svc.checkFrequencyLimit(context.Background(), "ada@example.com", mondayAt(12, 0), 30)
	assert.NoError(t, err)
}

func TestFrequencyIgnoresOtherRequesters(t *testing.T) {
	f := newFixture()
	other := confirmedBooking("b-1", mondayAt(10, 0), 60)
	other.Email = "grace@example.com"
	f.repo.seed(other)

	err := f.svc.checkFrequencyLimit(context.Background(), "ada@example.com", mondayAt(11, 0), 60)
	assert.NoError(t, err)
}

func TestFrequencyIgnoresCancelledBookings(t *testing.T) {
	f := newFixture()
	cancelled := confirmedBooking("b-1", mondayAt(10, 0), 60)
	cancelled.Status = "cancelled"
	f.repo.seed(cancelled)

	err := f.svc.checkFrequencyLimit(context.Background(), "ada@example.com", mondayAt(11, 0), 60)
	assert.NoError(t, err)
}

func TestFrequencySkipsUnknownDuration(t *testing.T) {
	f := newFixture()
	delete(f.svc.Rules, 30)
	f.repo.seed(confirmedBooking("b-1", mondayAt(10, 0), 30))
	f.repo.seed(confirmedBooking("b-2", mondayAt(11, 0), 30))

	err := f.svc.checkFrequencyLimit(context.Background(), "ada@example.com", mondayAt(12, 0), 30)
	assert.NoError(t, err)
}
