package booking

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"consultly/config"
	bookingRepo "consultly/database/repository/booking"
	"consultly/models"
	"consultly/services/availability"
	"consultly/services/cache"
	"consultly/services/notification"
	"consultly/services/resilience"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Fixed clock for the tests: a Sunday noon, with the bookable Monday one
// day later.
var (
	testNow    = time.Date(2027, 4, 4, 12, 0, 0, 0, time.UTC)
	testMonday = time.Date(2027, 4, 5, 0, 0, 0, 0, time.UTC)
)

func mondayAt(h, m int) time.Time {
	return time.Date(2027, 4, 5, h, m, 0, 0, time.UTC)
}

// fakeRepo is an in-memory BookingRepository.
type fakeRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking

	createErr error
	findErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: make(map[string]*models.Booking)}
}

func (r *fakeRepo) seed(b models.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := b
	r.bookings[b.ID] = &clone
}

func (r *fakeRepo) get(id string) *models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bookings[id]
}

func (r *fakeRepo) CreateIfSlotFree(_ context.Context, b *models.Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := b.Slot()
	for _, existing := range r.bookings {
		if existing.IsCancelled() {
			continue
		}
		if existing.Slot().Overlaps(slot) {
			return bookingRepo.ErrSlotTaken
		}
	}
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *fakeRepo) Update(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID]; !ok {
		return bookingRepo.ErrBookingNotFound
	}
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (r *fakeRepo) SetCalendarSync(_ context.Context, id, eventID string, synced, requiresManual bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.CalendarEventID = eventID
	b.CalendarSynced = synced
	b.RequiresManualCalendarSync = requiresManual
	return nil
}

func (r *fakeRepo) SetCrmSync(_ context.Context, id, contactID string, synced, requiresManual bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.CrmContactID = contactID
	b.CrmSynced = synced
	b.RequiresManualCrmSync = requiresManual
	return nil
}

func (r *fakeRepo) SetConfirmationSent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.ConfirmationSent = true
	return nil
}

func (r *fakeRepo) FindOverlapping(_ context.Context, start, end time.Time, excludeID string) ([]models.Booking, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	window := models.TimeSlot{Start: start, End: end}
	var out []models.Booking
	for _, b := range r.bookings {
		if b.ID == excludeID || b.IsCancelled() {
			continue
		}
		if b.Slot().Overlaps(window) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindByEmailInRange(_ context.Context, email string, from, to time.Time) ([]models.Booking, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.Email != email || b.IsCancelled() {
			continue
		}
		if !b.StartTime.Before(from) && !b.StartTime.After(to) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRepo) List(_ context.Context, _ models.BookingFilter) (*models.PaginatedBookings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	page := &models.PaginatedBookings{Page: 1, Limit: 20}
	for _, b := range r.bookings {
		page.Bookings = append(page.Bookings, *b)
	}
	page.Total = int64(len(page.Bookings))
	return page, nil
}

// fakeCalendar implements calendar.Provider with error injection.
type fakeCalendar struct {
	enabled bool
	events  []models.Event
	err     error

	created []models.EventInput
	updated []string
	deleted []string
}

func (f *fakeCalendar) Enabled() bool { return f.enabled }

func (f *fakeCalendar) ListEvents(_ context.Context, _, _ time.Time) ([]models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func (f *fakeCalendar) CreateEvent(_ context.Context, input models.EventInput) (*models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, input)
	return &models.Event{ID: "ev-created", Summary: input.Summary, Start: input.Start, End: input.End}, nil
}

func (f *fakeCalendar) UpdateEvent(_ context.Context, id string, input models.EventInput) (*models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updated = append(f.updated, id)
	return &models.Event{ID: id, Summary: input.Summary, Start: input.Start, End: input.End}, nil
}

func (f *fakeCalendar) DeleteEvent(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeCrm implements crm.Provider.
type fakeCrm struct {
	enabled bool
	err     error

	upserts []models.ContactInput
	updates []string
}

func (f *fakeCrm) Enabled() bool { return f.enabled }

func (f *fakeCrm) UpsertContact(_ context.Context, input models.ContactInput) (*models.Contact, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.upserts = append(f.upserts, input)
	return &models.Contact{ID: "contact-1", Email: input.Email, FirstName: input.FirstName}, nil
}

func (f *fakeCrm) SearchContactByEmail(_ context.Context, email string) (*models.Contact, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Contact{ID: "contact-1", Email: email}, nil
}

func (f *fakeCrm) UpdateContact(_ context.Context, id string, _ map[string]string) error {
	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, id)
	return nil
}

// fakeNotifier records sent messages.
type fakeNotifier struct {
	err  error
	sent []notification.Message
}

func (f *fakeNotifier) Send(_ context.Context, msg notification.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// fakeEnqueuer records enqueued task types.
type fakeEnqueuer struct {
	err   error
	types []string
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.types = append(f.types, task.Type())
	return &asynq.TaskInfo{}, nil
}

// memStore is an in-memory cache.Store.
type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: make(map[string][]byte)} }

func (m *memStore) GetJSON(_ context.Context, key string, dest any) error {
	raw, ok := m.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memStore) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memStore) DeleteByPattern(_ context.Context, prefix string) error {
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
		}
	}
	return nil
}

func testRules() map[int]config.FrequencyRule {
	return map[int]config.FrequencyRule{
		15: {MaxBookings: 3, WindowMinutes: 120},
		30: {MaxBookings: 2, WindowMinutes: 180},
		45: {MaxBookings: 2, WindowMinutes: 240},
		60: {MaxBookings: 1, WindowMinutes: 240},
	}
}

func testHours() config.BusinessHours {
	return config.BusinessHours{
		Weekdays:        []int{1, 2, 3, 4, 5},
		StartHour:       9,
		EndHour:         17,
		Timezone:        "UTC",
		BufferMinutes:   15,
		MinAdvanceHours: 0,
		MaxAdvanceHours: 24 * 365 * 10,
	}
}

// fixture bundles a service with its fakes.
type fixture struct {
	svc      *DefaultBookingService
	repo     *fakeRepo
	calendar *fakeCalendar
	crm      *fakeCrm
	notifier *fakeNotifier
	tasks    *fakeEnqueuer
	store    *memStore
}

func newFixture() *fixture {
	repo := newFakeRepo()
	cal := &fakeCalendar{}
	crmFake := &fakeCrm{enabled: true}
	notifier := &fakeNotifier{}
	enq := &fakeEnqueuer{}
	store := newMemStore()
	logger := zap.NewNop()

	retrier := resilience.NewRetrier(resilience.RetryConfig{
		MaxAttempts:       1,
		InitialDelay:      time.Millisecond,
		MaxDelay:          time.Millisecond,
		BackoffMultiplier: 1,
	}, logger)
	newBreaker := func() *resilience.CircuitBreaker {
		return resilience.NewCircuitBreaker(resilience.BreakerConfig{
			FailureThreshold: 100,
			ResetTimeout:     time.Minute,
			MonitoringPeriod: time.Minute,
		})
	}
	calendarBreaker := newBreaker()

	engine := availability.NewEngine(cal, repo, store, calendarBreaker, retrier, testHours(), logger)

	svc := NewDefaultBookingService(DefaultBookingService{
		Repo:            repo,
		Engine:          engine,
		Cache:           store,
		Tasks:           enq,
		Calendar:        cal,
		Crm:             crmFake,
		Notifier:        notifier,
		Rules:           testRules(),
		CalendarBreaker: calendarBreaker,
		CrmBreaker:      newBreaker(),
		Retrier:         retrier,
		Logger:          logger,
	})
	svc.now = func() time.Time { return testNow }

	return &fixture{
		svc:      svc,
		repo:     repo,
		calendar: cal,
		crm:      crmFake,
		notifier: notifier,
		tasks:    enq,
		store:    store,
	}
}

func validInput() models.BookingInput {
	return models.BookingInput{
		Name:            "Ada Lovelace",
		Company:         "Analytical Engines Ltd",
		Email:           "ada@example.com",
		Phone:           "+44 20 7946 0958",
		Inquiry:         "Need help scaling our compute pipeline.",
		StartTime:       mondayAt(10, 0),
		DurationMinutes: 30,
	}
}

func confirmedBooking(id string, start time.Time, durationMinutes int) models.Booking {
	return models.Booking{
		ID:              id,
		Name:            "Ada Lovelace",
		Company:         "Analytical Engines Ltd",
		Email:           "ada@example.com",
		Inquiry:         "Need help scaling our compute pipeline.",
		StartTime:       start,
		DurationMinutes: durationMinutes,
		Status:          models.BookingStatusConfirmed,
		CreatedAt:       testNow,
		UpdatedAt:       testNow,
	}
}

var errDownstream = errors.New("connection reset by peer")
