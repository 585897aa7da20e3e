package serviceRepo

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

// MongoServiceRepo implements ServiceRepository using MongoDB.
type MongoServiceRepo struct {
	coll        *mongo.Collection
	reviewsColl string
}

// NewMongoServiceRepo creates a new instance of ServiceRepository using MongoDB.
func NewMongoServiceRepo(logger *zap.Logger) ServiceRepository {
	repo := &MongoServiceRepo{
		coll:        database.Collection(database.ServicesCollection),
		reviewsColl: database.ReviewsCollection,
	}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("service indexes not created", zap.Error(err))
	}
	return repo
}

func (r *MongoServiceRepo) Create(ctx context.Context, svc *models.Service) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, svc)
	return repository.Translate("create service", err)
}

func (r *MongoServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var svc models.Service
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&svc); err != nil {
		return nil, repository.Translate(fmt.Sprintf("fetch service %s", id), err)
	}
	return &svc, nil
}

// List returns services matching filter. A geo filter orders by distance,
// otherwise newest first.
func (r *MongoServiceRepo) List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.ProviderID != "" {
		query["providerId"] = filter.ProviderID
	}
	if filter.Query != "" {
		query["$text"] = bson.M{"$search": filter.Query}
	}

	opts := options.Find()
	if filter.Lat != nil && filter.Lng != nil {
		near := bson.M{
			"$geometry": bson.M{"type": "Point", "coordinates": []float64{*filter.Lng, *filter.Lat}},
		}
		if filter.RadiusKm > 0 {
			near["$maxDistance"] = filter.RadiusKm * 1000
		}
		query["location"] = bson.M{"$nearSphere": near}
	} else {
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return decodeAll(ctx, cursor)
}

func (r *MongoServiceRepo) ListAll(ctx context.Context) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return decodeAll(ctx, cursor)
}

// Update replaces the editable fields of a service. Rating fields are owned by
// UpdateRating and left untouched.
func (r *MongoServiceRepo) Update(ctx context.Context, svc *models.Service) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	svc.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"name":           svc.Name,
		"description":    svc.Description,
		"category":       svc.Category,
		"price":          svc.Price,
		"duration":       svc.Duration,
		"images":         svc.Images,
		"location":       svc.Location,
		"availability":   svc.Availability,
		"tags":           svc.Tags,
		"status":         svc.Status,
		"searchKeywords": svc.SearchKeywords,
		"updatedAt":      svc.UpdatedAt,
	}}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": svc.ID}, update)
	if err != nil {
		return repository.Translate("update service", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("update service %s: %w", svc.ID, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoServiceRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("delete service %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoServiceRepo) UpdateRating(ctx context.Context, id string, average float64, count int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"averageRating": average,
		"reviewCount":   count,
		"updatedAt":     time.Now(),
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update service rating: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("update rating %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

// Recommended joins active services with their approved reviews and keeps the
// well-rated ones, best first.
func (r *MongoServiceRepo) Recommended(ctx context.Context, q RecommendationQuery) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.ServiceActive}}},
		{{Key: "$lookup", Value: bson.M{
			"from": r.reviewsColl,
			"let":  bson.M{"sid": "$id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$serviceId", "$$sid"}},
					bson.M{"$eq": bson.A{"$status", models.ReviewApproved}},
				}}}},
				bson.M{"$project": bson.M{"rating": 1}},
			},
			"as": "reviews",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"averageRating": bson.M{"$ifNull": bson.A{bson.M{"$avg": "$reviews.rating"}, 0}},
			"reviewCount":   bson.M{"$size": "$reviews"},
		}}},
		{{Key: "$match", Value: bson.M{
			"averageRating": bson.M{"$gte": q.MinAverage},
			"reviewCount":   bson.M{"$gte": q.MinReviews},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "averageRating", Value: -1}, {Key: "reviewCount", Value: -1}}}},
		{{Key: "$limit", Value: q.Limit}},
		{{Key: "$project", Value: bson.M{"reviews": 0}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate recommended services: %w", err)
	}
	return decodeAll(ctx, cursor)
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]models.Service, error) {
	defer cursor.Close(ctx)

	services := []models.Service{}
	for cursor.Next(ctx) {
		var s models.Service
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode service: %w", err)
		}
		services = append(services, s)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("service cursor error: %w", err)
	}
	return services, nil
}
