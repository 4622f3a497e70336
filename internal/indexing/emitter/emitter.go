// Package emitter delivers cache change signals to renderers.
//
// The poller emits one domain.CacheChanged per view whose size changed since
// the view was last rendered. Emitters fan those out:
//   - BusEmitter: in-process subscribers on the "cache:changed" topic
//   - RedisEmitter: JSON on a Redis pub/sub channel for out-of-process renderers
//   - LogEmitter: structured log line per event
package emitter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/gtasmon/internal/core/domain"
)

// Emitter defines the interface for emitting cache change events
type Emitter interface {
	// Emit sends a single event
	Emit(ctx context.Context, event *domain.CacheChanged) error

	// Close releases the emitter's resources
	Close() error
}

// NewEvent builds a CacheChanged event with a fresh id.
func NewEvent(view domain.View, size int, epoch uint64, session string) *domain.CacheChanged {
	return &domain.CacheChanged{
		ID:      uuid.NewString(),
		View:    view,
		Size:    size,
		Epoch:   epoch,
		Session: session,
		At:      time.Now(),
	}
}

// Multi emits to every emitter. All emitters are attempted; errors are joined.
type Multi []Emitter

func (m Multi) Emit(ctx context.Context, event *domain.CacheChanged) error {
	var errs []error
	for _, e := range m {
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, e := range m {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogEmitter logs every event.
type LogEmitter struct {
	Log *slog.Logger
}

func (e *LogEmitter) Emit(ctx context.Context, event *domain.CacheChanged) error {
	log := e.Log
	if log == nil {
		log = slog.Default()
	}
	log.Debug("Cache changed",
		"view", event.View,
		"size", event.Size,
		"epoch", event.Epoch,
	)
	return nil
}

func (e *LogEmitter) Close() error { return nil }
