// Package crm abstracts the downstream CRM that receives booking contacts.
package crm

import (
	"context"

	"consultly/models"
)

// Provider is the CRM capability the booking orchestrator consumes.
type Provider interface {
	Enabled() bool
	UpsertContact(ctx context.Context, input models.ContactInput) (*models.Contact, error)
	SearchContactByEmail(ctx context.Context, email string) (*models.Contact, error)
	UpdateContact(ctx context.Context, id string, properties map[string]string) error
}
