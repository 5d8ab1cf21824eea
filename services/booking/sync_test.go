package booking

import (
	"context"
	"testing"

	"consultly/models"
	"consultly/services/cache"
	"consultly/services/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleCalendarSyncCreate(t *testing.T) {
	f := newFixture()
	f.calendar.enabled = true
	f.repo.seed(confirmedBooking("b-1", mondayAt(10, 0), 30))

	err := f.svc.HandleCalendarSync(context.Background(), tasks.SyncPayload{BookingID: "b-1", Action: tasks.ActionCreate})
	require.NoError(t, err)

	require.Len(t, f.calendar.created, 1)
	assert.Equal(t, mondayAt(10, 0), f.calendar.created[0].Start)
	assert.Equal(t, mondayAt(10, 30), f.calendar.created[0].End)

	stored := f.repo.get("b-1")
	assert.Equal(t, "ev-created", stored.CalendarEventID)
	assert.True(t, stored.CalendarSynced)
	assert.False(t, stored.RequiresManualCalendarSync)
}

func TestHandleCalendarSyncUpdateExistingEvent(t *testing.T) {
	f := newFixture()
	f.calendar.enabled = true
	b := confirmedBooking("b-1", mondayAt(10, 0), 30)
	b.CalendarEventID = "ev-42"
	b.CalendarSynced = true
	f.repo.seed(b)

	err := f.svc.HandleCalendarSync(context.Background(), tasks.SyncPayload{BookingID: "b-1", Action: tasks.ActionUpdate})
	require.NoError(t, err)

	assert.Equal(t, []string{"ev-42"}, f.calendar.updated)
	assert.Empty(t, f.calendar.created)
}

func TestHandleCalendarSyncUpdateWithoutEventCreates(t *testing.T) {
	f := newFixture()
	f.calendar.enabled = true
	f.repo.seed(confirmedBooking("b-1", mondayAt(10, 0), 30))

	err := f.svc.HandleCalendarSync(context.Background(), tasks.SyncPayload{BookingID: "b-1", Action: tasks.ActionUpdate})
	require.NoError(t, err)

	assert.Len(t, f.calendar.created, 1)
	assert.Empty(t, f.calendar.updated)
}

func TestHandleCalendarSyncCancelDeletesEvent(t *testing.T) {
	f := newFixture()
	f.calendar.enabled = true
	b := confirmedBooking("b-1", mondayAt(10, 0), 30)
	b.Status = models.BookingStatusCancelled
	b.CalendarEventID = "ev-42"
	f.repo.seed(b)

	err := f.svc.HandleCalendarSync(context.Background(), tasks.SyncPayload{BookingID: "b-1", Action: tasks.ActionCancel})
	require.NoError(t, err)

	assert.Equal(t, []string{"ev-42"}, f.calendar.deleted)
}

func TestHandleCalendarSyncCancelWithoutEvent(t *testing.T) {
	f := newFixture()
	f.calendar.enabled = true
	b := confirmedBooking("b-1", mondayAt(10, 0), 30)
	b.Status = models.BookingStatusCancelled
	f.repo.seed(b)

	err := f.svc.HandleCalendarSync(context.Background(), tasks.SyncPayload{BookingID: "b-1", Action: tasks.ActionCancel})
	require.NoError(t, err)
	assert.Empty(t, f.calendar.deleted)
}

func TestHandleCalendarSyncFailureFlagsManualFollowUp(t *testing.T) {
	f := newFixture()
	f.calendar.enabled = true
	f.calendar.err = errDownstream
	f.repo.seed(confirmedBooking("b-1", mondayAt(10, 0), 30))

	err := f.svc.HandleCalendarSync(context.Background(), tasks.SyncPayload{BookingID: "b-1", Action: tasks.ActionCreate})
	require.NoError(t, err)

	stored := f.repo.get("b-1")
	assert.False(t, stored.CalendarSynced)
	assert.True(t, stored.RequiresManualCalendarSync)
}

func TestHandleCalendarSyncDisabledProvider(t *testing.T) {
	f := newFixture()
	f.repo.seed(confirmedBooking("b-1", mondayAt(10, 0), 30))

	err := f.svc.HandleCalendarSync(context.Background(), tasks.SyncPayload{BookingID: "b-1", Action: tasks.ActionCreate})
	require.NoError(t, err)
	assert.Empty(t, f.calendar.created)
}

func TestHandleCalendarSyncUnknownBooking(t *testing.T) {
	f := newFixture()
	f.calendar.enabled = true

	err := f.svc.HandleCalendarSync(context.Background(), tasks.SyncPayload{BookingID: "missing", Action: tasks.ActionCreate})
	require.NoError(t, err)
	assert.Empty(t, f.calendar.created)
}

func TestHandleCrmSyncUpsertsAndCachesContact(t *testing.T) {
	f := newFixture()
	f.repo.seed(confirmedBooking("b-1", mondayAt(10, 0), 30))

	err := f.svc.HandleCrmSync(context.Background(), tasks.SyncPayload{BookingID: "b-1", Action: tasks.ActionCreate})
	require.NoError(t, err)

	require.Len(t, f.crm.upserts, 1)
	assert.Equal(t, "ada@example.com", f.crm.upserts[0].Email)

	stored := f.repo.get("b-1")
	assert.Equal(t, "contact-1", stored.CrmContactID)
	assert.True(t, stored.CrmSynced)

	var cached models.Contact
	require.NoError(t, f.store.GetJSON(context.Background(), cache.CrmContactKey("ada@example.com"), &cached))
	assert.Equal(t, "contact-1", cached.ID)
}

func TestHandleCrmSyncUsesCachedContact(t *testing.T) {
	f := newFixture()
	f.repo.seed(confirmedBooking("b-1", mondayAt(10, 0), 30))
	require.NoError(t, f.store.SetJSON(context.Background(),
		cache.CrmContactKey("ada@example.com"),
		models.Contact{ID: "contact-7", Email: "ada@example.com"}, cache.CrmContactTTL))

	err := f.svc.HandleCrmSync(context.Background(), tasks.SyncPayload{BookingID: "b-1", Action: tasks.ActionUpdate})
	require.NoError(t, err)

	assert.Empty(t, f.crm.upserts)
	assert.Equal(t, []string{"contact-7"}, f.crm.updates)
	assert.Equal(t, "contact-7", f.repo.get("b-1").CrmContactID)
}

func TestHandleCrmSyncFailureFlagsManualFollowUp(t *testing.T) {
	f := newFixture()
	f.crm.err = errDownstream
	f.repo.seed(confirmedBooking("b-1", mondayAt(10, 0), 30))

	err := f.svc.HandleCrmSync(context.Background(), tasks.SyncPayload{BookingID: "b-1", Action: tasks.ActionCreate})
	require.NoError(t, err)

	stored := f.repo.get("b-1")
	assert.False(t, stored.CrmSynced)
	assert.True(t, stored.RequiresManualCrmSync)
}

func TestHandleCrmSyncDisabledProvider(t *testing.T) {
	f := newFixture()
	f.crm.enabled = false
	f.repo.seed(confirmedBooking("b-1", mondayAt(10, 0), 30))

	err := f.svc.HandleCrmSync(context.Background(), tasks.SyncPayload{BookingID: "b-1", Action: tasks.ActionCreate})
	require.NoError(t, err)
	assert.Empty(t, f.crm.upserts)
}

func TestHandleConfirmation(t *testing.T) {
	f := newFixture()
	f.repo.seed(confirmedBooking("b-1", mondayAt(10, 0), 30))

	err := f.svc.HandleConfirmation(context.Background(), tasks.SyncPayload{BookingID: "b-1", Action: tasks.ActionCreate})
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "ada@example.com", f.notifier.sent[0].To)
	assert.True(t, f.repo.get("b-1").ConfirmationSent)
}

func TestHandleConfirmationDeliveryFailureIsSwallowed(t *testing.T) {
	f := newFixture()
	f.notifier.err = errDownstream
	f.repo.seed(confirmedBooking("b-1", mondayAt(10, 0), 30))

	err := f.svc.HandleConfirmation(context.Background(), tasks.SyncPayload{BookingID: "b-1", Action: tasks.ActionCreate})
	require.NoError(t, err)
	assert.False(t, f.repo.get("b-1").ConfirmationSent)
}
