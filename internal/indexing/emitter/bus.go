package emitter

import (
	"context"
	"fmt"

	evbus "github.com/asaskevich/EventBus"
	"github.com/vietddude/gtasmon/internal/core/domain"
)

// TopicCacheChanged is the bus topic CacheChanged events are published on.
const TopicCacheChanged = "cache:changed"

// Handler receives cache change events.
type Handler func(event domain.CacheChanged)

// BusEmitter publishes events on an in-process asaskevich/EventBus bus.
// Subscribers run asynchronously so a slow renderer never stalls a poll cycle.
type BusEmitter struct {
	bus evbus.Bus
}

// NewBusEmitter creates a bus emitter.
func NewBusEmitter() *BusEmitter {
	return &BusEmitter{bus: evbus.New()}
}

func (b *BusEmitter) Emit(ctx context.Context, event *domain.CacheChanged) error {
	if event == nil {
		return nil
	}
	b.bus.Publish(TopicCacheChanged, *event)
	return nil
}

// Subscribe registers fn. Events reach each subscriber in publish order.
// The returned function unsubscribes.
func (b *BusEmitter) Subscribe(fn Handler) (func(), error) {
	if err := b.bus.SubscribeAsync(TopicCacheChanged, fn, true); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", TopicCacheChanged, err)
	}
	return func() {
		_ = b.bus.Unsubscribe(TopicCacheChanged, fn)
	}, nil
}

// HasSubscribers reports whether anyone listens.
func (b *BusEmitter) HasSubscribers() bool {
	return b.bus.HasCallback(TopicCacheChanged)
}

// Flush waits for in-flight asynchronous deliveries.
func (b *BusEmitter) Flush() {
	b.bus.WaitAsync()
}

func (b *BusEmitter) Close() error {
	b.Flush()
	return nil
}
