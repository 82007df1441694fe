// Package cache keeps a local reflection of one server-held collection and
// layers optimistic mutations over it until the server confirms them.
package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/julianstephens/lifeos/internal/logger"
	"github.com/julianstephens/lifeos/internal/metrics"
)

// ErrSuperseded is returned by Refresh when its result arrived after newer
// state (a later refresh or a confirmed mutation) and was discarded.
var ErrSuperseded = errors.New("refresh result superseded by newer state")

type State int

const (
	Empty State = iota
	Loading
	Ready
	Revalidating
	Reverting
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Revalidating:
		return "revalidating"
	case Reverting:
		return "reverting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Fetcher lists the whole collection from the remote collaborator.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Reconcile folds a confirmed server payload into the confirmed items.
type Reconcile[T any] func(confirmed []T) []T

// Mutation is one user-initiated change. Optimistic is replayed over the
// current state every time the view is rebuilt, so it must be deterministic
// and must not modify elements of its argument in place (copy nested slices
// before appending). Commit performs the remote write.
type Mutation[T any] struct {
	Name       string
	Optimistic func(current []T) []T
	Commit     func(ctx context.Context) (Reconcile[T], error)
}

// Snapshot is a point-in-time copy of a store.
type Snapshot[T any] struct {
	Items   []T
	State   State
	Err     error
	Version uint64
	Pending int
	Stale   bool
}

// Loaded reports whether the store has completed a successful fetch.
func (s Snapshot[T]) Loaded() bool {
	return s.State == Ready || s.State == Revalidating || s.State == Reverting
}

type layer[T any] struct {
	id    uint64
	name  string
	apply func([]T) []T
}

// Store is the cache for one collection. The zero value is not usable; call
// New.
type Store[T any] struct {
	name  string
	fetch Fetcher[T]

	mu            sync.Mutex
	state         State
	loaded        bool
	base          []T
	view          []T
	pending       []layer[T]
	err           error
	stale         bool
	version       uint64
	seq           uint64
	baseSeq       uint64
	latestRefresh uint64
	inflight      int

	subMu   sync.Mutex
	subs    map[int]func(Snapshot[T])
	nextSub int
}

// New creates an empty store that loads through fetch.
func New[T any](name string, fetch Fetcher[T]) *Store[T] {
	return &Store[T]{
		name:  name,
		fetch: fetch,
		subs:  make(map[int]func(Snapshot[T])),
	}
}

func (s *Store[T]) Name() string { return s.name }

// Read returns the current view. It never waits on remote calls.
func (s *Store[T]) Read() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every change. Snapshots
// may be delivered from several goroutines; compare Version to drop older
// ones. The returned func removes the subscription.
func (s *Store[T]) Subscribe(fn func(Snapshot[T])) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Mutate applies m.Optimistic to the view immediately, then runs m.Commit.
// On success the returned Reconcile is applied to the confirmed items; a nil
// Reconcile keeps the optimistic result and marks the store stale. On failure
// only this mutation's layer is dropped and the commit error is returned.
func (s *Store[T]) Mutate(ctx context.Context, m Mutation[T]) error {
	if m.Optimistic == nil || m.Commit == nil {
		return fmt.Errorf("mutation %q: optimistic and commit are required", m.Name)
	}

	s.mu.Lock()
	s.seq++
	id := s.seq
	s.pending = append(s.pending, layer[T]{id: id, name: m.Name, apply: m.Optimistic})
	s.rebuildLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	metrics.TrackCacheEvent(s.name, metrics.EventOptimistic)
	s.publish(snap)

	reconcile, err := m.Commit(ctx)

	if err != nil {
		s.mu.Lock()
		s.state = Reverting
		s.dropLayerLocked(id)
		s.err = err
		s.rebuildLocked()
		reverting := s.snapshotLocked()
		s.state = s.restingLocked()
		s.version++
		settled := s.snapshotLocked()
		s.mu.Unlock()

		logger.Debug("Rolled back optimistic mutation", "store", s.name, "mutation", m.Name, "error", err)
		metrics.TrackCacheEvent(s.name, metrics.EventRollback)
		s.publish(reverting)
		s.publish(settled)
		return err
	}

	s.mu.Lock()
	s.dropLayerLocked(id)
	s.seq++
	s.baseSeq = s.seq
	if reconcile != nil {
		s.base = reconcile(slices.Clone(s.base))
	} else {
		s.base = m.Optimistic(slices.Clone(s.base))
		s.stale = true
	}
	s.err = nil
	s.rebuildLocked()
	snap = s.snapshotLocked()
	s.mu.Unlock()

	metrics.TrackCacheEvent(s.name, metrics.EventConfirm)
	s.publish(snap)
	return nil
}

// Refresh refetches the collection. If a newer refresh was issued, or a
// mutation was confirmed while this fetch was in flight, the result is
// discarded and ErrSuperseded is returned.
func (s *Store[T]) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	r := s.seq
	s.latestRefresh = r
	s.inflight++
	if s.loaded {
		s.state = Revalidating
	} else {
		s.state = Loading
	}
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)

	items, err := s.fetch(ctx)

	s.mu.Lock()
	s.inflight--
	if r != s.latestRefresh || r < s.baseSeq {
		s.state = s.restingLocked()
		s.version++
		snap = s.snapshotLocked()
		s.mu.Unlock()

		logger.Debug("Discarded superseded refresh", "store", s.name, "seq", r)
		metrics.TrackCacheEvent(s.name, metrics.EventStale)
		s.publish(snap)
		return ErrSuperseded
	}

	if err != nil {
		s.err = err
		s.state = s.restingLocked()
		s.version++
		snap = s.snapshotLocked()
		s.mu.Unlock()

		metrics.TrackCacheEvent(s.name, metrics.EventLoadError)
		s.publish(snap)
		return fmt.Errorf("failed to refresh %s: %w", s.name, err)
	}

	s.base = slices.Clone(items)
	s.loaded = true
	s.stale = false
	s.err = nil
	s.rebuildLocked()
	s.state = s.restingLocked()
	snap = s.snapshotLocked()
	s.mu.Unlock()

	metrics.TrackCacheEvent(s.name, metrics.EventRefresh)
	s.publish(snap)
	return nil
}

// rebuildLocked replays pending layers, in issue order, over the confirmed
// items.
func (s *Store[T]) rebuildLocked() {
	view := slices.Clone(s.base)
	for _, l := range s.pending {
		view = l.apply(slices.Clone(view))
	}
	s.view = view
	s.version++
	metrics.SetCacheState(s.name, len(s.view), len(s.pending))
}

func (s *Store[T]) dropLayerLocked(id uint64) {
	s.pending = slices.DeleteFunc(s.pending, func(l layer[T]) bool { return l.id == id })
}

func (s *Store[T]) restingLocked() State {
	switch {
	case s.inflight > 0 && s.loaded:
		return Revalidating
	case s.inflight > 0:
		return Loading
	case s.loaded:
		return Ready
	default:
		return Empty
	}
}

func (s *Store[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Items:   slices.Clone(s.view),
		State:   s.state,
		Err:     s.err,
		Version: s.version,
		Pending: len(s.pending),
		Stale:   s.stale,
	}
}

func (s *Store[T]) publish(snap Snapshot[T]) {
	s.subMu.Lock()
	fns := make([]func(Snapshot[T]), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
