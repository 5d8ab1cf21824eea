package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"consultly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// overlapFilter matches non-cancelled bookings whose occupied interval
// intersects [start, end). End times are derived, so the upper bound is
// computed in the query from start_time + duration_minutes.
func overlapFilter(start, end time.Time, excludeID string) bson.M {
	filter := bson.M{
		"status":     bson.M{"$ne": models.BookingStatusCancelled},
		"start_time": bson.M{"$lt": end},
		"$expr": bson.M{
			"$gt": bson.A{
				bson.M{"$add": bson.A{
					"$start_time",
					bson.M{"$multiply": bson.A{"$duration_minutes", 60 * 1000}},
				}},
				start,
			},
		},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	return filter
}

func (repo *MongoBookingRepo) FindOverlapping(ctx context.Context, start, end time.Time, excludeID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, overlapFilter(start, end, excludeID))
	if err != nil {
		return nil, fmt.Errorf("overlap query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding overlap query result: %w", err)
	}
	return bookings, nil
}

func (repo *MongoBookingRepo) FindByEmailInRange(ctx context.Context, email string, from, to time.Time) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"email":      email,
		"status":     bson.M{"$ne": models.BookingStatusCancelled},
		"start_time": bson.M{"$gte": from, "$lte": to},
	}
	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("email window query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding email window query result: %w", err)
	}
	return bookings, nil
}

func (repo *MongoBookingRepo) List(ctx context.Context, filter models.BookingFilter) (*models.PaginatedBookings, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Email != "" {
		query["email"] = filter.Email
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	timeRange := bson.M{}
	if !filter.From.IsZero() {
		timeRange["$gte"] = filter.From
	}
	if !filter.To.IsZero() {
		timeRange["$lte"] = filter.To
	}
	if len(timeRange) > 0 {
		query["start_time"] = timeRange
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	total, err := repo.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("booking count failed: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("booking list query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding booking list: %w", err)
	}

	return &models.PaginatedBookings{
		Bookings: bookings,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}, nil
}
