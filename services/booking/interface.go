package booking

import (
	"context"
	"time"

	"consultly/config"
	bookingRepo "consultly/database/repository/booking"
	"consultly/models"
	"consultly/services/availability"
	"consultly/services/cache"
	"consultly/services/calendar"
	"consultly/services/crm"
	"consultly/services/notification"
	"consultly/services/resilience"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingService is the transactional entry point for reservations.
type BookingService interface {
	Create(ctx context.Context, input models.BookingInput) (*models.Booking, error)
	Update(ctx context.Context, id string, input models.BookingUpdateInput) (*models.Booking, error)
	Cancel(ctx context.Context, id string) (*models.Booking, error)
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) (*models.PaginatedBookings, error)
	ListAvailableSlots(ctx context.Context, start, end time.Time, durationMinutes int) ([]models.TimeSlot, error)
}

// TaskEnqueuer is the slice of *asynq.Client the orchestrator needs; tests
// substitute a recorder.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo     bookingRepo.BookingRepository
	Engine   *availability.Engine
	Cache    cache.Store
	Tasks    TaskEnqueuer
	Calendar calendar.Provider
	Crm      crm.Provider
	Notifier notification.Sender
	Rules    map[int]config.FrequencyRule

	// One breaker per provider, shared with the background sync handlers.
	CalendarBreaker *resilience.CircuitBreaker
	CrmBreaker      *resilience.CircuitBreaker
	Retrier         *resilience.Retrier

	Logger *zap.Logger

	now func() time.Time
}

// NewDefaultBookingService fills in the clock; all collaborators are
// injected by the composition root.
func NewDefaultBookingService(svc DefaultBookingService) *DefaultBookingService {
	svc.now = time.Now
	return &svc
}
