// Package notify publishes moderation events for staff tooling.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/comment-moderation-api/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Notifier publishes comment moderation events
type Notifier interface {
	Publish(ctx context.Context, event *models.CommentEvent) error
	Close() error
}

// publisher is the subset of the Redis client used for notifications
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes events as JSON on a Redis channel
type RedisNotifier struct {
	pub     publisher
	closer  func() error
	channel string
	log     zerolog.Logger
}

// NewRedisNotifier connects to Redis and returns a notifier for channel
func NewRedisNotifier(ctx context.Context, addr, password string, db int, channel string, log zerolog.Logger) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	n := newRedisNotifier(client, channel, log)
	n.closer = client.Close
	n.log.Info().Str("addr", addr).Str("channel", channel).Msg("Moderation notifications enabled")
	return n, nil
}

func newRedisNotifier(pub publisher, channel string, log zerolog.Logger) *RedisNotifier {
	return &RedisNotifier{
		pub:     pub,
		channel: channel,
		log:     log.With().Str("component", "notify").Logger(),
	}
}

// Publish sends the event to subscribers of the channel
func (n *RedisNotifier) Publish(ctx context.Context, event *models.CommentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode comment event: %w", err)
	}

	receivers, err := n.pub.Publish(ctx, n.channel, data).Result()
	if err != nil {
		return fmt.Errorf("failed to publish comment event: %w", err)
	}

	n.log.Debug().
		Str("comment_id", event.CommentID).
		Str("decision", string(event.Decision)).
		Int64("receivers", receivers).
		Msg("Comment event published")
	return nil
}

// Close releases the Redis connection
func (n *RedisNotifier) Close() error {
	if n.closer == nil {
		return nil
	}
	return n.closer()
}

// Nop discards all events
type Nop struct{}

func (Nop) Publish(ctx context.Context, event *models.CommentEvent) error { return nil }

func (Nop) Close() error { return nil }
