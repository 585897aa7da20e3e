package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"taskhive/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisBus fans envelopes out to every instance over a Redis pub/sub channel.
type RedisBus struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisBus(client *redis.Client, channel string, logger *zap.Logger) *RedisBus {
	return &RedisBus{client: client, channel: channel, logger: logger}
}

func (b *RedisBus) Publish(ctx context.Context, env models.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, deliver func(models.Envelope)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed before consuming.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	b.logger.Info("realtime bus subscribed", zap.String("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env models.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warn("discarding malformed realtime message", zap.Error(err))
				continue
			}
			deliver(env)
		}
	}
}
