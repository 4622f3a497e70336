package chain

import (
	"context"

	"github.com/vietddude/gtasmon/internal/core/domain"
)

// Adapter defines the node-level query interface.
// This is the boundary between the sync engines and the node's RPC surface.
type Adapter interface {
	// Dashboard returns the node's self-reported heights, status and peers
	Dashboard(ctx context.Context) (*domain.Dashboard, error)

	// GetBlock fetches the summary of the block at height
	GetBlock(ctx context.Context, height uint64) (*domain.Block, error)

	// GetGroupsAfter fetches all groups at or after height, ascending
	GetGroupsAfter(ctx context.Context, height uint64) ([]*domain.Group, error)

	// BlockDetail fetches a block with its transactions by hash
	BlockDetail(ctx context.Context, hash string) (*domain.BlockDetail, error)

	// WorkGroup fetches the groups qualified to cast at height
	WorkGroup(ctx context.Context, height uint64) ([]*domain.Group, error)
}
