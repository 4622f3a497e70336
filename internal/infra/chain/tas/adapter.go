// Package tas implements chain.Adapter for TAS nodes speaking the GTAS JSON-RPC API.
package tas

import (
	"context"
	"errors"
	"fmt"

	"github.com/vietddude/gtasmon/internal/core/domain"
	"github.com/vietddude/gtasmon/internal/infra/rpc"
)

// Node RPC methods.
const (
	MethodDashboard      = "GTAS_dashboard"
	MethodGetBlock       = "GTAS_getBlock"
	MethodGetGroupsAfter = "GTAS_getGroupsAfter"
	MethodBlockDetail    = "GTAS_blockDetail"
	MethodGetWorkGroup   = "GTAS_getWorkGroup"
)

// ErrEmptyBlock is returned when a block payload carries neither height nor hash.
var ErrEmptyBlock = errors.New("empty block payload")

// blockNotFound is the node's answer to an unknown hash: success with null data.
const blockNotFound = "block not found"

// Caller is the subset of *rpc.Client the adapter needs.
type Caller interface {
	CallInto(ctx context.Context, out any, method string, params ...any) error
	CallWithRetry(ctx context.Context, out any, method string, params ...any) error
}

type Adapter struct {
	client Caller
}

func NewAdapter(client Caller) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	var d domain.Dashboard
	if err := a.client.CallInto(ctx, &d, MethodDashboard); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return &d, nil
}

func (a *Adapter) GetBlock(ctx context.Context, height uint64) (*domain.Block, error) {
	var b domain.Block
	if err := a.client.CallInto(ctx, &b, MethodGetBlock, height); err != nil {
		return nil, fmt.Errorf("get block %d: %w", height, err)
	}
	// Some node builds omit the height in the summary.
	if b.Height == 0 && height != 0 {
		if b.Hash == "" {
			return nil, fmt.Errorf("get block %d: %w", height, ErrEmptyBlock)
		}
		b.Height = height
	}
	if b.Height != height {
		return nil, fmt.Errorf("get block %d: node returned height %d", height, b.Height)
	}
	return &b, nil
}

func (a *Adapter) GetGroupsAfter(ctx context.Context, height uint64) ([]*domain.Group, error) {
	var groups []*domain.Group
	err := a.client.CallInto(ctx, &groups, MethodGetGroupsAfter, height)
	if err != nil {
		// An empty range comes back as success with null data.
		if errors.Is(err, rpc.ErrNoData) {
			return nil, nil
		}
		return nil, fmt.Errorf("get groups after %d: %w", height, err)
	}
	return groups, nil
}

// BlockDetail retries transport failures; it serves one-shot user lookups.
func (a *Adapter) BlockDetail(ctx context.Context, hash string) (*domain.BlockDetail, error) {
	var d domain.BlockDetail
	if err := a.client.CallWithRetry(ctx, &d, MethodBlockDetail, hash); err != nil {
		if errors.Is(err, rpc.ErrNoData) {
			err = &rpc.AppError{Method: MethodBlockDetail, Message: blockNotFound}
		}
		return nil, fmt.Errorf("block detail %s: %w", hash, err)
	}
	return &d, nil
}

// WorkGroup returns the groups qualified to cast the block at height.
// The node numbers them from height upwards.
func (a *Adapter) WorkGroup(ctx context.Context, height uint64) ([]*domain.Group, error) {
	var groups []*domain.Group
	if err := a.client.CallWithRetry(ctx, &groups, MethodGetWorkGroup, height); err != nil {
		if errors.Is(err, rpc.ErrNoData) {
			return nil, nil
		}
		return nil, fmt.Errorf("work group %d: %w", height, err)
	}
	return groups, nil
}
