package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/gtasmon/internal/core/cursor"
	"github.com/vietddude/gtasmon/internal/core/domain"
	"github.com/vietddude/gtasmon/internal/indexing/metrics"
	"golang.org/x/sync/errgroup"
)

// BlockConfig tunes the block engine.
type BlockConfig struct {
	Concurrency int    // parallel GTAS_getBlock calls per pass
	MaxPerPass  uint64 // cap on heights requested per pass, 0 = unlimited
}

// DefaultBlockConfig returns defaults.
func DefaultBlockConfig() BlockConfig {
	return BlockConfig{
		Concurrency: 8,
	}
}

// BlockEngine keeps a contiguous cache of block summaries starting at height 1.
type BlockEngine struct {
	fetcher BlockFetcher
	cursor  *cursor.Cursor
	config  BlockConfig
	log     *slog.Logger

	mu     sync.RWMutex
	blocks []*domain.Block // blocks[i].Height == i+1
}

// NewBlockEngine creates a block engine.
func NewBlockEngine(fetcher BlockFetcher, c *cursor.Cursor, config BlockConfig, log *slog.Logger) *BlockEngine {
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultBlockConfig().Concurrency
	}
	if log == nil {
		log = slog.Default()
	}
	return &BlockEngine{
		fetcher: fetcher,
		cursor:  c,
		config:  config,
		log:     log.With("component", "block-sync"),
	}
}

// Sync fetches every height in (cursor, reported].
func (e *BlockEngine) Sync(ctx context.Context, reported uint64) SyncReport {
	start := time.Now()
	epoch := e.cursor.Epoch()
	from := e.cursor.Block()

	report := SyncReport{Epoch: epoch, Cursor: from}
	if reported <= from {
		report.Skipped = true
		if reported < from {
			e.log.Warn("Node height behind block cursor",
				"reported", reported,
				"cursor", from,
			)
		}
		return report
	}

	to := reported
	if e.config.MaxPerPass > 0 && to-from > e.config.MaxPerPass {
		to = from + e.config.MaxPerPass
	}
	report.From, report.To = from+1, to

	n := int(to - from)
	results := make([]*domain.Block, n)
	errs := make([]error, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Concurrency)
	for i := 0; i < n; i++ {
		height := from + 1 + uint64(i)
		g.Go(func() error {
			b, err := e.fetcher.GetBlock(gctx, height)
			results[i] = b
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()
	report.Requested = n

	e.apply(epoch, from, results, errs, &report)

	metrics.SyncDuration.WithLabelValues(string(domain.ViewBlocks)).Observe(time.Since(start).Seconds())
	metrics.BlockFetches.WithLabelValues("ok").Add(float64(n - report.Failed))
	if report.Failed > 0 {
		metrics.BlockFetches.WithLabelValues("error").Add(float64(report.Failed))
	}
	return report
}

// apply extends the cache in height order while results are contiguous.
func (e *BlockEngine) apply(epoch, from uint64, results []*domain.Block, errs []error, report *SyncReport) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cursor.Epoch() != epoch {
		report.Discarded = true
		report.Err = ErrStaleEpoch
		e.log.Debug("Discarding block results from previous epoch", "epoch", epoch)
		return
	}

	last := from
	gap := false
	for i, b := range results {
		height := from + 1 + uint64(i)

		if errs[i] != nil {
			report.Failed++
			if report.Err == nil {
				report.Err = errs[i]
			}
			e.log.Warn("Failed to fetch block", "height", height, "error", errs[i])
			gap = true
			continue
		}
		if gap {
			report.Dropped++
			continue
		}
		if b == nil || b.Height != height {
			got := uint64(0)
			if b != nil {
				got = b.Height
			}
			err := fmt.Errorf("%w: requested %d, got %d", ErrBlockGap, height, got)
			if report.Err == nil {
				report.Err = err
			}
			e.log.Error("Unexpected block height", "error", err)
			gap = true
			continue
		}

		e.putLocked(b)
		report.Applied++
		last = height
	}

	if last > from {
		if err := e.cursor.AdvanceBlock(epoch, last); err != nil {
			report.Discarded = true
			report.Err = err
			return
		}
	}
	report.Cursor = e.cursor.Block()
}

// putLocked appends b or replaces the record at its height.
func (e *BlockEngine) putLocked(b *domain.Block) {
	idx := int(b.Height) - 1
	switch {
	case idx < len(e.blocks):
		e.blocks[idx] = b
	case idx == len(e.blocks):
		e.blocks = append(e.blocks, b)
	}
}

// Snapshot returns the cached blocks ordered by height.
func (e *BlockEngine) Snapshot() []*domain.Block {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*domain.Block, len(e.blocks))
	copy(out, e.blocks)
	return out
}

// Get returns the cached block at height.
func (e *BlockEngine) Get(height uint64) (*domain.Block, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if height == 0 || height > uint64(len(e.blocks)) {
		return nil, false
	}
	return e.blocks[height-1], true
}

// Len returns the number of cached blocks.
func (e *BlockEngine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.blocks)
}

// Reset clears the cache. The cursor is reset by its owner.
func (e *BlockEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.blocks = nil
}
