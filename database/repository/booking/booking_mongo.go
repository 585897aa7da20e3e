package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskhive/database"
	"taskhive/database/repository"
	"taskhive/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll         *mongo.Collection
	servicesColl string
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo(logger *zap.Logger) BookingRepository {
	repo := &MongoBookingRepo{
		coll:         database.Collection(database.BookingsCollection),
		servicesColl: database.ServicesCollection,
	}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("booking indexes not created", zap.Error(err))
	}
	return repo
}

func (r *MongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, b)
	return repository.Translate("create booking", err)
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		return nil, repository.Translate(fmt.Sprintf("fetch booking %s", id), err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) GetWithService(ctx context.Context, id string) (*models.BookingWithService, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := r.aggregate(ctx, bson.M{"id": id}, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("fetch booking %s: %w", id, repository.ErrNotFound)
	}
	return &out[0], nil
}

func (r *MongoBookingRepo) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	return r.compareAndSet(ctx, id, "status", from, to)
}

func (r *MongoBookingRepo) UpdatePaymentStatus(ctx context.Context, id string, from, to models.PaymentStatus) (*models.Booking, error) {
	return r.compareAndSet(ctx, id, "paymentStatus", from, to)
}

// compareAndSet writes field only when it still holds from, so concurrent
// writers never silently overwrite each other.
func (r *MongoBookingRepo) compareAndSet(ctx context.Context, id, field string, from, to any) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, field: from}
	update := bson.M{"$set": bson.M{field: to, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var b models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update booking %s %s: %w", id, field, repository.ErrStale)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update booking %s: %w", field, err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) SetPaymentIntent(ctx context.Context, id, intentID string, amount int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"paymentIntentId": intentID, "paymentAmount": amount, "updatedAt": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to record payment intent: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("record payment intent %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoBookingRepo) ListByParticipant(ctx context.Context, who Participant, userID string) ([]models.BookingWithService, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return r.aggregate(ctx, bson.M{string(who): userID}, bson.D{{Key: "createdAt", Value: -1}}, 0)
}

// ListCreatedBetween returns bookings created in [start, end).
func (r *MongoBookingRepo) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]models.BookingWithService, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	match := bson.M{"createdAt": bson.M{"$gte": start, "$lt": end}}
	return r.aggregate(ctx, match, nil, 0)
}

// TopServicesByRevenue ranks services by the price of their completed bookings
// across all time.
func (r *MongoBookingRepo) TopServicesByRevenue(ctx context.Context, limit int) ([]models.TopService, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         r.servicesColl,
			"localField":   "serviceId",
			"foreignField": "id",
			"as":           "service",
		}}},
		{{Key: "$unwind", Value: "$service"}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$serviceId",
			"name":     bson.M{"$first": "$service.name"},
			"bookings": bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", models.BookingCompleted}},
				"$service.price",
				0,
			}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "revenue", Value: -1}, {Key: "bookings", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top services: %w", err)
	}
	defer cursor.Close(ctx)

	top := []models.TopService{}
	if err := cursor.All(ctx, &top); err != nil {
		return nil, fmt.Errorf("failed to decode top services: %w", err)
	}
	return top, nil
}

// aggregate matches bookings and joins each with its service.
func (r *MongoBookingRepo) aggregate(ctx context.Context, match bson.M, sort bson.D, limit int64) ([]models.BookingWithService, error) {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: match}}}
	if len(sort) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sort}})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         r.servicesColl,
			"localField":   "serviceId",
			"foreignField": "id",
			"as":           "service",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{"path": "$service", "preserveNullAndEmptyArrays": true}}},
	)

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.BookingWithService{}
	for cursor.Next(ctx) {
		var b models.BookingWithService
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("booking cursor error: %w", err)
	}
	return bookings, nil
}
