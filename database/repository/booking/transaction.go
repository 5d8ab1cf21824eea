package bookingRepo

import (
	"context"
	"errors"
	"fmt"

	"consultly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrSlotTaken is returned when the transactional conflict check finds an
// overlapping non-cancelled booking at insert time.
var ErrSlotTaken = errors.New("slot already taken")

// CreateIfSlotFree runs the conflict check and the insert inside one Mongo
// session transaction, so two concurrent requests for the same interval
// cannot both commit. Requires a replica-set deployment.
func (repo *MongoBookingRepo) CreateIfSlotFree(ctx context.Context, booking *models.Booking) error {
	client := repo.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		count, err := repo.coll.CountDocuments(sc, overlapFilter(booking.StartTime, booking.EndTime(), ""))
		if err != nil {
			return fmt.Errorf("conflict check failed: %w", err)
		}
		if count > 0 {
			return ErrSlotTaken
		}
		if _, err := repo.coll.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return ErrSlotTaken
		}
		return fmt.Errorf("booking transaction failed: %w", err)
	}

	return nil
}
