// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"taskhive/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client, also used for realtime pub/sub.
	CacheClient *redis.Client
	// AuthCacheClient is the dedicated client for the token denylist.
	AuthCacheClient *redis.Client
)

// RedisEnabled reports whether a Redis address is configured.
func RedisEnabled() bool {
	return config.AppConfig.RedisAddr != ""
}

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitRedis initializes the cache and auth clients. It is a no-op when
// REDIS_ADDR is empty; callers must then treat the clients as nil.
func InitRedis() {
	if !RedisEnabled() {
		log.Println("REDIS_ADDR not set, running without Redis")
		return
	}
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
	AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB, "Auth Cache")
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil && RedisEnabled() {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
	}
	return CacheClient
}

// GetAuthCacheClient returns the Redis client for the token denylist.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil && RedisEnabled() {
		AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB, "Auth Cache")
	}
	return AuthCacheClient
}

// CloseRedis closes any open clients.
func CloseRedis() {
	for _, c := range []*redis.Client{CacheClient, AuthCacheClient} {
		if c != nil {
			_ = c.Close()
		}
	}
}
