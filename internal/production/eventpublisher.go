package production

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/comalice/occupancyx/internal/primitives"
)

// EventPublisher fans a Transition out to an external sink so other
// processes can react to occupancy changes without polling the engine.
type EventPublisher interface {
	Publish(ctx context.Context, engineID string, tr primitives.Transition) error
	Close() error
}

// ChannelPublisher forwards transitions to a Go channel. Publish never
// blocks: under backpressure it drops the transition rather than stall the
// caller, since HandleEvent's caller should not be able to wedge on a slow
// subscriber.
type ChannelPublisher struct {
	ch chan<- primitives.Transition
}

// NewChannelPublisher creates a ChannelPublisher writing to ch.
func NewChannelPublisher(ch chan<- primitives.Transition) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) Publish(ctx context.Context, engineID string, tr primitives.Transition) error {
	select {
	case p.ch <- tr:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil // non-blocking drop
	}
}

func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}

// RedisPublisher publishes transitions as JSON to a Redis pub/sub channel,
// one channel per engine id, for multi-process fan-out.
type RedisPublisher struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisPublisher connects to addr and verifies the connection with a
// bounded ping before returning.
func NewRedisPublisher(addr string, logger zerolog.Logger) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisPublisher{client: client, logger: logger}, nil
}

// NewRedisPublisherFromClient wraps an already-constructed client, so tests
// can point it at a miniredis instance.
func NewRedisPublisherFromClient(client *redis.Client, logger zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, logger: logger}
}

func (p *RedisPublisher) Publish(ctx context.Context, engineID string, tr primitives.Transition) error {
	data, err := json.Marshal(tr)
	if err != nil {
		return fmt.Errorf("json marshal transition: %w", err)
	}
	channel := "occupancyx:transitions:" + engineID
	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		p.logger.Warn().Err(err).Str("channel", channel).Msg("redis publish failed")
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
