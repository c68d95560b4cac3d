package collection

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrDeleteInFlight is returned while a delete for the same id is running.
	ErrDeleteInFlight = errors.New("collection: delete already in progress")
	// ErrSuperseded is returned by a Refresh whose response arrived after a newer Refresh was issued.
	ErrSuperseded = errors.New("collection: refresh superseded by a newer one")
)

type FetchFunc[T any] func(ctx context.Context, filters Filters) ([]T, error)

type DeleteFunc func(ctx context.Context, id int) error

type Config[T any] struct {
	Schema   Schema[T]
	PageSize int
	Fetch    FetchFunc[T]
	Delete   DeleteFunc
	// Guard is shared by pipelines that delete from the same backend
	// collection. Nil gives the pipeline a private one.
	Guard *Guard
}

// Pipeline holds one view's point-in-time snapshot of a collection.
// It is safe for concurrent use.
type Pipeline[T any] struct {
	cfg Config[T]

	mu      sync.Mutex
	items   []T
	filters Filters
	loaded  bool
	loading bool
	err     error
	seq     uint64
}

func New[T any](cfg Config[T]) *Pipeline[T] {
	if cfg.Guard == nil {
		cfg.Guard = NewGuard()
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 5
	}
	return &Pipeline[T]{cfg: cfg}
}

// Refresh bulk-fetches the collection with filters. Only the most recently
// issued Refresh may replace the snapshot; older responses are dropped with
// ErrSuperseded. A failed fetch empties the snapshot and records the error.
func (p *Pipeline[T]) Refresh(ctx context.Context, filters Filters) error {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.loading = true
	p.filters = filters.Clone()
	p.mu.Unlock()

	items, err := p.cfg.Fetch(ctx, filters)

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		return ErrSuperseded
	}
	p.loading = false
	p.loaded = true
	if err != nil {
		p.items = nil
		p.err = err
		return err
	}
	p.items = items
	p.err = nil
	return nil
}

// View derives the page for st from the current snapshot.
func (p *Pipeline[T]) View(st State) Page[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Apply(p.items, p.cfg.Schema, st, p.cfg.PageSize)
}

// Delete removes id on the backend. Concurrent deletes of the same id are
// rejected with ErrDeleteInFlight. On failure the snapshot is untouched; on
// success a loaded pipeline refetches with its last filters.
func (p *Pipeline[T]) Delete(ctx context.Context, id int) error {
	if !p.cfg.Guard.Begin(id) {
		return ErrDeleteInFlight
	}
	defer p.cfg.Guard.End(id)

	if err := p.cfg.Delete(ctx, id); err != nil {
		return err
	}

	p.mu.Lock()
	loaded, filters := p.loaded, p.filters.Clone()
	p.mu.Unlock()
	if !loaded {
		return nil
	}
	if err := p.Refresh(ctx, filters); err != nil && !errors.Is(err, ErrSuperseded) {
		return fmt.Errorf("refresh after delete: %w", err)
	}
	return nil
}

// Busy reports whether a delete of id is running.
func (p *Pipeline[T]) Busy(id int) bool { return p.cfg.Guard.Busy(id) }

func (p *Pipeline[T]) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Err is the error of the last completed Refresh.
func (p *Pipeline[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Items returns a copy of the snapshot.
func (p *Pipeline[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.items)
}

// Guard tracks ids with a delete in progress.
type Guard struct {
	mu       sync.Mutex
	inflight map[int]struct{}
}

func NewGuard() *Guard {
	return &Guard{inflight: make(map[int]struct{})}
}

// Begin marks id busy; it reports false if id already was.
func (g *Guard) Begin(id int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[id]; busy {
		return false
	}
	g.inflight[id] = struct{}{}
	return true
}

func (g *Guard) End(id int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, id)
}

func (g *Guard) Busy(id int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inflight[id]
	return busy
}
