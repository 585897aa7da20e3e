package userRepo

import (
	"context"
	"fmt"
	"time"

	"taskhive/database"
	"taskhive/database/repository"
	"taskhive/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MongoUserRepo implements UserRepository using MongoDB.
type MongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo creates a new instance of UserRepository using MongoDB.
func NewMongoUserRepo(logger *zap.Logger) UserRepository {
	repo := &MongoUserRepo{coll: database.Collection(database.UsersCollection)}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("user indexes not created", zap.Error(err))
	}
	return repo
}

// Create inserts a new user document.
func (r *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, user)
	return repository.Translate("create user", err)
}

func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, repository.Translate("fetch user", err)
	}
	return &user, nil
}

func (r *MongoUserRepo) UpdateFCMToken(ctx context.Context, id, token string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"fcmToken": token, "updatedAt": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update fcm token: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("update fcm token %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

// CountCreatedBetween counts accounts of role created in [start, end).
func (r *MongoUserRepo) CountCreatedBetween(ctx context.Context, role models.Role, start, end time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"role": role, "createdAt": bson.M{"$gte": start, "$lt": end}}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
