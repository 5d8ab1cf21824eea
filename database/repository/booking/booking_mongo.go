package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consultly/config"
	"consultly/database"
	"consultly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const queryTimeout = 5 * time.Second

// ErrBookingNotFound is returned when no booking matches the given id.
var ErrBookingNotFound = errors.New("booking not found")

// MongoBookingRepo implements BookingRepository backed by MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a repository bound to the bookings collection.
func NewMongoBookingRepo() *MongoBookingRepo {
	coll := database.MongoClient.Database(config.AppConfig.DatabaseName).Collection("bookings")
	return &MongoBookingRepo{coll: coll}
}

func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var booking models.Booking
	err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

func (repo *MongoBookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	booking.UpdatedAt = time.Now().UTC()
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"id": booking.ID}, booking)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", booking.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (repo *MongoBookingRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return repo.setFields(ctx, id, bson.M{"status": status})
}

func (repo *MongoBookingRepo) SetCalendarSync(ctx context.Context, id, eventID string, synced, requiresManual bool) error {
	fields := bson.M{
		"calendar_synced":               synced,
		"requires_manual_calendar_sync": requiresManual,
	}
	if eventID != "" {
		fields["calendar_event_id"] = eventID
	}
	return repo.setFields(ctx, id, fields)
}

func (repo *MongoBookingRepo) SetCrmSync(ctx context.Context, id, contactID string, synced, requiresManual bool) error {
	fields := bson.M{
		"crm_synced":               synced,
		"requires_manual_crm_sync": requiresManual,
	}
	if contactID != "" {
		fields["crm_contact_id"] = contactID
	}
	return repo.setFields(ctx, id, fields)
}

func (repo *MongoBookingRepo) SetConfirmationSent(ctx context.Context, id string) error {
	return repo.setFields(ctx, id, bson.M{"confirmation_sent": true})
}

func (repo *MongoBookingRepo) setFields(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	fields["updated_at"] = time.Now().UTC()
	res, err := repo.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrBookingNotFound
	}
	return nil
}
