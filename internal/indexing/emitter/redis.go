package emitter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vietddude/gtasmon/internal/core/domain"
)

// DefaultRedisChannel is the pub/sub channel events are mirrored to.
const DefaultRedisChannel = "gtasmon:cache"

// Publisher is the subset of the Redis client the emitter needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
	Close() error
}

// RedisEmitter mirrors events as JSON on a Redis pub/sub channel.
type RedisEmitter struct {
	pub     Publisher
	channel string
}

// NewRedisEmitter creates a Redis emitter.
func NewRedisEmitter(pub Publisher, channel string) *RedisEmitter {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisEmitter{pub: pub, channel: channel}
}

func (e *RedisEmitter) Emit(ctx context.Context, event *domain.CacheChanged) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := e.pub.Publish(ctx, e.channel, payload); err != nil {
		return fmt.Errorf("redis emit %s: %w", event.View, err)
	}
	return nil
}

func (e *RedisEmitter) Close() error {
	return e.pub.Close()
}
