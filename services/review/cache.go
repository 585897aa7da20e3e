package review

import (
	"context"
	"encoding/json"
	"time"

	"taskhive/models"

	"github.com/go-redis/redis/v8"
)

// RecommendationCache holds the last computed recommended-services list.
type RecommendationCache interface {
	// Get reports ok=false on a miss.
	Get(ctx context.Context) (services []models.Service, ok bool, err error)
	Set(ctx context.Context, services []models.Service) error
	Invalidate(ctx context.Context) error
}

const recommendedKey = "reviews:recommended"

type RedisRecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRecommendationCache returns a Redis-backed cache, or one that never hits
// when client is nil.
func NewRecommendationCache(client *redis.Client, ttl time.Duration) RecommendationCache {
	if client == nil {
		return noCache{}
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisRecommendationCache{client: client, ttl: ttl}
}

func (c *RedisRecommendationCache) Get(ctx context.Context) ([]models.Service, bool, error) {
	raw, err := c.client.Get(ctx, recommendedKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var services []models.Service
	if err := json.Unmarshal(raw, &services); err != nil {
		return nil, false, err
	}
	return services, true, nil
}

func (c *RedisRecommendationCache) Set(ctx context.Context, services []models.Service) error {
	data, err := json.Marshal(services)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, recommendedKey, data, c.ttl).Err()
}

func (c *RedisRecommendationCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, recommendedKey).Err()
}

type noCache struct{}

func (noCache) Get(context.Context) ([]models.Service, bool, error) { return nil, false, nil }
func (noCache) Set(context.Context, []models.Service) error         { return nil }
func (noCache) Invalidate(context.Context) error                    { return nil }
