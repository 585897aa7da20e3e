package user

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// TokenDenylist remembers logged-out tokens until they expire.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}

const denylistPrefix = "auth:revoked:"

type RedisDenylist struct {
	client *redis.Client
}

// NewTokenDenylist returns a Redis-backed denylist, or one that forgets
// everything when client is nil.
func NewTokenDenylist(client *redis.Client) TokenDenylist {
	if client == nil {
		return noDenylist{}
	}
	return &RedisDenylist{client: client}
}

func (d *RedisDenylist) Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, denylistPrefix+tokenHash, 1, ttl).Err()
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistPrefix+tokenHash).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type noDenylist struct{}

func (noDenylist) Revoke(context.Context, string, time.Duration) error { return nil }
func (noDenylist) IsRevoked(context.Context, string) (bool, error)     { return false, nil }
