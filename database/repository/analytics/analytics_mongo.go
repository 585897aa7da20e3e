package analyticsRepo

import (
	"context"
	"fmt"
	"time"

	"taskhive/database"
	"taskhive/database/repository"
	"taskhive/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoAnalyticsRepo implements AnalyticsRepository using MongoDB.
type MongoAnalyticsRepo struct {
	coll *mongo.Collection
}

// NewMongoAnalyticsRepo creates a new instance of AnalyticsRepository using MongoDB.
func NewMongoAnalyticsRepo(logger *zap.Logger) AnalyticsRepository {
	repo := &MongoAnalyticsRepo{coll: database.Collection(database.AnalyticsCollection)}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("analytics indexes not created", zap.Error(err))
	}
	return repo
}

func (r *MongoAnalyticsRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoAnalyticsRepo) Upsert(ctx context.Context, doc *models.Analytics) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	doc.UpdatedAt = now
	update := bson.M{
		"$set": bson.M{
			"metrics":        doc.Metrics,
			"serviceMetrics": doc.ServiceMetrics,
			"updatedAt":      now,
		},
		"$setOnInsert": bson.M{
			"id":        uuid.New().String(),
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"date": doc.Date}, update, opts).Decode(doc); err != nil {
		return fmt.Errorf("failed to upsert analytics for %s: %w", doc.Date.Format("2006-01-02"), err)
	}
	return nil
}

func (r *MongoAnalyticsRepo) GetByDate(ctx context.Context, day time.Time) (*models.Analytics, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc models.Analytics
	if err := r.coll.FindOne(ctx, bson.M{"date": day}).Decode(&doc); err != nil {
		return nil, repository.Translate("fetch analytics", err)
	}
	return &doc, nil
}

func (r *MongoAnalyticsRepo) Range(ctx context.Context, start, end *time.Time) ([]models.Analytics, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	bounds := bson.M{}
	if start != nil {
		bounds["$gte"] = *start
	}
	if end != nil {
		bounds["$lte"] = *end
	}
	if len(bounds) > 0 {
		filter["date"] = bounds
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics: %w", err)
	}
	defer cursor.Close(ctx)

	docs := []models.Analytics{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode analytics: %w", err)
	}
	return docs, nil
}
