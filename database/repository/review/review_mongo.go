package reviewRepo

import (
	"context"
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

// MongoReviewRepo implements ReviewRepository using MongoDB.
type MongoReviewRepo struct {
	coll         *mongo.Collection
	servicesColl string
}

// NewMongoReviewRepo creates a new instance of ReviewRepository using MongoDB.
func NewMongoReviewRepo(logger *zap.Logger) ReviewRepository {
	repo := &MongoReviewRepo{
		coll:         database.Collection(database.ReviewsCollection),
		servicesColl: database.ServicesCollection,
	}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("review indexes not created", zap.Error(err))
	}
	return repo
}

func (r *MongoReviewRepo) Create(ctx context.Context, review *models.Review) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, review)
	return repository.Translate("create review", err)
}

func (r *MongoReviewRepo) GetByID(ctx context.Context, id string) (*models.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var review models.Review
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&review); err != nil {
		return nil, repository.Translate(fmt.Sprintf("fetch review %s", id), err)
	}
	return &review, nil
}

// List returns one page of approved reviews and the total number of matches.
func (r *MongoReviewRepo) List(ctx context.Context, q Query) ([]models.ReviewWithService, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	match := bson.M{"status": models.ReviewApproved}
	if q.ServiceID != "" {
		match["serviceId"] = q.ServiceID
	}
	if q.ProviderID != "" {
		match["providerId"] = q.ProviderID
	}

	total, err := r.coll.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	dir := 1
	if q.Descending {
		dir = -1
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: q.SortField, Value: dir}, {Key: "id", Value: 1}}}},
		{{Key: "$skip", Value: int64((q.Page - 1) * q.Limit)}},
		{{Key: "$limit", Value: int64(q.Limit)}},
	}
	if q.WithService {
		pipeline = append(pipeline,
			bson.D{{Key: "$lookup", Value: bson.M{
				"from":         r.servicesColl,
				"localField":   "serviceId",
				"foreignField": "id",
				"as":           "service",
				"pipeline":     bson.A{bson.M{"$project": bson.M{"_id": 0, "id": 1, "name": 1, "category": 1}}},
			}}},
			bson.D{{Key: "$unwind", Value: bson.M{"path": "$service", "preserveNullAndEmptyArrays": true}}},
		)
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []models.ReviewWithService{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, 0, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *MongoReviewRepo) IncrementHelpful(ctx context.Context, id string) (*models.Review, error) {
	return r.findAndUpdate(ctx, id, bson.M{
		"$inc": bson.M{"helpfulVotes": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	})
}

func (r *MongoReviewRepo) SetStatus(ctx context.Context, id string, status models.ReviewStatus) (*models.Review, error) {
	return r.findAndUpdate(ctx, id, bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
}

func (r *MongoReviewRepo) findAndUpdate(ctx context.Context, id string, update bson.M) (*models.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var review models.Review
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&review); err != nil {
		return nil, repository.Translate(fmt.Sprintf("update review %s", id), err)
	}
	return &review, nil
}

// RatingStats averages the approved reviews of a service. No reviews yields zeros.
func (r *MongoReviewRepo) RatingStats(ctx context.Context, serviceID string) (RatingStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"serviceId": serviceID, "status": models.ReviewApproved}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"average": bson.M{"$avg": "$rating"},
			"count":   bson.M{"$sum": 1},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return RatingStats{}, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Average float64 `bson:"average"`
		Count   int     `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return RatingStats{}, fmt.Errorf("failed to decode ratings: %w", err)
	}
	if len(rows) == 0 {
		return RatingStats{}, nil
	}
	return RatingStats{Average: rows[0].Average, Count: rows[0].Count}, nil
}
