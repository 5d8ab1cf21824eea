package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyBuilders(t *testing.T) {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 2, 17, 0, 0, 0, time.UTC)

	assert.Equal(t,
		"calendar:busy:2026-04-01T09:00:00Z:2026-04-02T17:00:00Z",
		BusySlotsKey(start, end))
	assert.Equal(t,
		"slots:available:2026-04-01T09:00:00Z:2026-04-02T17:00:00Z:30",
		AvailableSlotsKey(start, end, 30))
	assert.Equal(t, "crm:contact:a@x.com", CrmContactKey("a@x.com"))
}

func TestKeysNormalizeToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, loc)
	end := time.Date(2026, 4, 1, 18, 0, 0, 0, loc)

	assert.Equal(t,
		BusySlotsKey(start.UTC(), end.UTC()),
		BusySlotsKey(start, end))
}
