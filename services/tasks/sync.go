// Package tasks defines the background jobs dispatched after a booking
// write: calendar sync, CRM sync and the confirmation notification.
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type names registered with the asynq mux.
const (
	TypeCalendarSync = "booking:calendar_sync"
	TypeCrmSync      = "booking:crm_sync"
	TypeConfirmation = "booking:confirmation"
)

// Actions carried by a sync payload.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionCancel = "cancel"
)

// SyncPayload identifies the booking a background task operates on.
type SyncPayload struct {
	BookingID string `json:"bookingId"`
	Action    string `json:"action"`
}

// ParsePayload decodes a task payload.
func ParsePayload(task *asynq.Task) (SyncPayload, error) {
	var p SyncPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid sync payload: %w", err)
	}
	return p, nil
}

func newTask(taskType string, payload SyncPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, b), nil
}

// NewCalendarSyncTask builds the calendar push task for a booking.
func NewCalendarSyncTask(payload SyncPayload) (*asynq.Task, error) {
	return newTask(TypeCalendarSync, payload)
}

// NewCrmSyncTask builds the CRM push task for a booking.
func NewCrmSyncTask(payload SyncPayload) (*asynq.Task, error) {
	return newTask(TypeCrmSync, payload)
}

// NewConfirmationTask builds the confirmation notification task.
func NewConfirmationTask(payload SyncPayload) (*asynq.Task, error) {
	return newTask(TypeConfirmation, payload)
}
