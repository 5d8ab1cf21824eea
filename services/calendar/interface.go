// Package calendar abstracts the remote calendar the availability engine
// reconciles against.
package calendar

import (
	"context"
	"time"

	"consultly/models"
)

// Provider is the calendar capability the engine consumes. Errors are
// opaque beyond transient-vs-not classification.
type Provider interface {
	Enabled() bool
	ListEvents(ctx context.Context, start, end time.Time) ([]models.Event, error)
	CreateEvent(ctx context.Context, input models.EventInput) (*models.Event, error)
	UpdateEvent(ctx context.Context, id string, input models.EventInput) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}
