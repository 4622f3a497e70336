package syncer

import (
	"context"
	"errors"
	"testing"

	"github.com/vietddude/gtasmon/internal/core/cursor"
	"github.com/vietddude/gtasmon/internal/core/domain"
	"github.com/vietddude/gtasmon/internal/infra/rpc"
)

type fakeGroupFetcher struct {
	responses [][]*domain.Group
	errs      []error
	froms     []uint64
}

func (f *fakeGroupFetcher) GetGroupsAfter(ctx context.Context, height uint64) ([]*domain.Group, error) {
	i := len(f.froms)
	f.froms = append(f.froms, height)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return nil, nil
}

func group(id string, height uint64) *domain.Group {
	return &domain.Group{GroupID: id, Height: height}
}

func TestGroupEngine_EndToEnd(t *testing.T) {
	f := &fakeGroupFetcher{responses: [][]*domain.Group{
		{group("g1", 0), group("g2", 2)},
		{group("g2", 2)},
	}}
	c := cursor.New()
	e := NewGroupEngine(f, c, nil)

	report := e.Sync(context.Background(), 2)
	if report.Applied != 2 {
		t.Fatalf("expected 2 applied, got %+v", report)
	}
	if c.Group() != 3 {
		t.Fatalf("expected cursor 3, got %d", c.Group())
	}

	report = e.Sync(context.Background(), 4)
	if f.froms[1] != 3 {
		t.Errorf("expected second query from 3, got %d", f.froms[1])
	}
	if report.Duplicates != 1 || report.Applied != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if e.Len() != 2 {
		t.Errorf("expected 2 groups, got %d", e.Len())
	}
	if c.Group() != 3 {
		t.Errorf("expected cursor to stay at 3, got %d", c.Group())
	}
}

func TestGroupEngine_DedupIdempotence(t *testing.T) {
	batch := []*domain.Group{group("a", 0), group("b", 1), group("c", 1)}
	f := &fakeGroupFetcher{responses: [][]*domain.Group{batch, batch, append(batch, group("d", 4))}}
	c := cursor.New()
	e := NewGroupEngine(f, c, nil)

	for i := 0; i < 3; i++ {
		e.Sync(context.Background(), 10)
	}

	seen := map[string]int{}
	for _, g := range e.Snapshot() {
		seen[g.GroupID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("group %s cached %d times", id, n)
		}
	}
	if len(seen) != 4 {
		t.Errorf("expected 4 groups, got %d", len(seen))
	}
	if c.Group() != 5 {
		t.Errorf("expected cursor 5, got %d", c.Group())
	}
}

func TestGroupEngine_EmptyCacheQueriesFromZero(t *testing.T) {
	f := &fakeGroupFetcher{}
	c := cursor.New()
	e := NewGroupEngine(f, c, nil)

	e.Sync(context.Background(), 0)
	e.Sync(context.Background(), 0)

	if len(f.froms) != 2 || f.froms[0] != 0 || f.froms[1] != 0 {
		t.Errorf("expected two queries from 0, got %v", f.froms)
	}
	if c.Group() != 0 {
		t.Errorf("expected cursor 0, got %d", c.Group())
	}
}

func TestGroupEngine_SkipsWhenCaughtUp(t *testing.T) {
	f := &fakeGroupFetcher{responses: [][]*domain.Group{{group("g1", 0), group("g2", 2)}}}
	c := cursor.New()
	e := NewGroupEngine(f, c, nil)

	e.Sync(context.Background(), 3)
	report := e.Sync(context.Background(), 3)

	if !report.Skipped {
		t.Errorf("expected skipped pass, got %+v", report)
	}
	if len(f.froms) != 1 {
		t.Errorf("expected a single query, got %d", len(f.froms))
	}
}

func TestGroupEngine_ApplicationErrorIsNoop(t *testing.T) {
	f := &fakeGroupFetcher{
		responses: [][]*domain.Group{{group("g1", 0)}},
		errs:      []error{nil, &rpc.AppError{Method: "GTAS_getGroupsAfter", Message: "not ready"}},
	}
	c := cursor.New()
	e := NewGroupEngine(f, c, nil)

	e.Sync(context.Background(), 5)
	before := c.Group()

	report := e.Sync(context.Background(), 5)
	if !rpc.IsApplication(report.Err) {
		t.Fatalf("expected application error in report, got %v", report.Err)
	}
	if e.Len() != 1 || c.Group() != before {
		t.Errorf("failed pass mutated state: len=%d cursor=%d", e.Len(), c.Group())
	}
}

func TestGroupEngine_TransportErrorIsNoop(t *testing.T) {
	f := &fakeGroupFetcher{errs: []error{errors.New("connection refused")}}
	c := cursor.New()
	e := NewGroupEngine(f, c, nil)

	report := e.Sync(context.Background(), 5)
	if report.Failed != 1 || e.Len() != 0 {
		t.Errorf("unexpected state after failure: %+v len=%d", report, e.Len())
	}
}

func TestGroupEngine_Reset(t *testing.T) {
	f := &fakeGroupFetcher{responses: [][]*domain.Group{
		{group("g1", 0)},
		{group("g1", 0)},
	}}
	c := cursor.New()
	e := NewGroupEngine(f, c, nil)

	e.Sync(context.Background(), 5)
	c.Reset("node restarted")
	e.Reset()

	if e.Has("g1") {
		t.Fatal("expected seen set cleared")
	}

	report := e.Sync(context.Background(), 5)
	if report.Applied != 1 || f.froms[1] != 0 {
		t.Errorf("expected g1 re-cached from 0, got %+v froms=%v", report, f.froms)
	}
}
