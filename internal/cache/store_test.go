package cache

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
)

type item struct {
	ID    string
	Value int
}

func add(it item) func([]item) []item {
	return func(cur []item) []item { return append(cur, it) }
}

func without(id string) func([]item) []item {
	return func(cur []item) []item {
		return slices.DeleteFunc(cur, func(i item) bool { return i.ID == id })
	}
}

func ids(items []item) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.ID)
	}
	slices.Sort(out)
	return out
}

// pendingCommit is a Commit whose result is decided by the test.
type pendingCommit struct {
	started chan struct{}
	result  chan error
	payload Reconcile[item]
}

func newPendingCommit(payload Reconcile[item]) *pendingCommit {
	return &pendingCommit{started: make(chan struct{}), result: make(chan error, 1), payload: payload}
}

func (p *pendingCommit) commit(ctx context.Context) (Reconcile[item], error) {
	close(p.started)
	if err := <-p.result; err != nil {
		return nil, err
	}
	return p.payload, nil
}

func staticFetch(items ...item) Fetcher[item] {
	return func(ctx context.Context) ([]item, error) { return slices.Clone(items), nil }
}

func TestStore_InitialLoad(t *testing.T) {
	s := New("test", staticFetch(item{ID: "a"}, item{ID: "b"}))

	if snap := s.Read(); snap.State != Empty || len(snap.Items) != 0 {
		t.Fatalf("expected empty store, got %+v", snap)
	}

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}

	snap := s.Read()
	if snap.State != Ready {
		t.Errorf("expected ready, got %s", snap.State)
	}
	if got := ids(snap.Items); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("unexpected items: %v", got)
	}
}

func TestStore_FailedFirstLoadReturnsToEmpty(t *testing.T) {
	boom := errors.New("network down")
	s := New("test", func(ctx context.Context) ([]item, error) { return nil, boom })

	err := s.Refresh(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}

	snap := s.Read()
	if snap.State != Empty {
		t.Errorf("expected empty, got %s", snap.State)
	}
	if !errors.Is(snap.Err, boom) {
		t.Errorf("expected error recorded, got %v", snap.Err)
	}
}

func TestStore_OptimisticVisibleThenRolledBack(t *testing.T) {
	s := New("test", staticFetch(item{ID: "a"}))
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}

	pc := newPendingCommit(nil)
	done := make(chan error, 1)
	go func() {
		done <- s.Mutate(context.Background(), Mutation[item]{Name: "add b", Optimistic: add(item{ID: "b"}), Commit: pc.commit})
	}()
	<-pc.started

	snap := s.Read()
	if got := ids(snap.Items); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("expected optimistic item visible, got %v", got)
	}
	if snap.Pending != 1 {
		t.Errorf("expected 1 pending mutation, got %d", snap.Pending)
	}

	boom := errors.New("server rejected")
	pc.result <- boom
	if err := <-done; !errors.Is(err, boom) {
		t.Fatalf("expected commit error, got %v", err)
	}

	snap = s.Read()
	if got := ids(snap.Items); !slices.Equal(got, []string{"a"}) {
		t.Errorf("expected rollback to confirmed items, got %v", got)
	}
	if snap.State != Ready || snap.Pending != 0 {
		t.Errorf("expected ready with no pending, got %s / %d", snap.State, snap.Pending)
	}
	if !errors.Is(snap.Err, boom) {
		t.Errorf("expected error flag set, got %v", snap.Err)
	}
}

func TestStore_ConcurrentMutationsNoLostUpdate(t *testing.T) {
	s := New("test", staticFetch())
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}

	first := newPendingCommit(func(c []item) []item { return append(c, item{ID: "A", Value: 1}) })
	second := newPendingCommit(func(c []item) []item { return append(c, item{ID: "B", Value: 1}) })

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = s.Mutate(context.Background(), Mutation[item]{Name: "A", Optimistic: add(item{ID: "A"}), Commit: first.commit})
	}()
	<-first.started
	go func() {
		defer wg.Done()
		errs[1] = s.Mutate(context.Background(), Mutation[item]{Name: "B", Optimistic: add(item{ID: "B"}), Commit: second.commit})
	}()
	<-second.started

	if got := ids(s.Read().Items); !slices.Equal(got, []string{"A", "B"}) {
		t.Fatalf("expected both optimistic items, got %v", got)
	}

	// confirm out of order
	second.result <- nil
	first.result <- nil
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("mutation %d failed: %v", i, err)
		}
	}

	snap := s.Read()
	if got := ids(snap.Items); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("expected both confirmed items, got %v", got)
	}
	for _, it := range snap.Items {
		if it.Value != 1 {
			t.Errorf("expected server payload adopted for %s, got %+v", it.ID, it)
		}
	}
}

func TestStore_RollbackKeepsOtherPendingMutation(t *testing.T) {
	s := New("test", staticFetch())
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}

	failing := newPendingCommit(nil)
	succeeding := newPendingCommit(nil)

	done := make(chan error, 2)
	go func() {
		done <- s.Mutate(context.Background(), Mutation[item]{Name: "A", Optimistic: add(item{ID: "A"}), Commit: failing.commit})
	}()
	<-failing.started
	go func() {
		done <- s.Mutate(context.Background(), Mutation[item]{Name: "B", Optimistic: add(item{ID: "B"}), Commit: succeeding.commit})
	}()
	<-succeeding.started

	failing.result <- errors.New("nope")
	if err := <-done; err == nil {
		t.Fatal("expected first mutation to fail")
	}

	if got := ids(s.Read().Items); !slices.Equal(got, []string{"B"}) {
		t.Fatalf("expected B to survive A's rollback, got %v", got)
	}

	succeeding.result <- nil
	if err := <-done; err != nil {
		t.Fatalf("expected second mutation to succeed: %v", err)
	}

	snap := s.Read()
	if got := ids(snap.Items); !slices.Equal(got, []string{"B"}) {
		t.Errorf("expected only B, got %v", got)
	}
	if !snap.Stale {
		t.Error("expected store marked stale after confirmation without payload")
	}
	if snap.Err != nil {
		t.Errorf("expected error cleared by later success, got %v", snap.Err)
	}
}

func TestStore_OptimisticComputedFromCurrentState(t *testing.T) {
	s := New("test", staticFetch(item{ID: "counter"}))
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}

	increment := func(cur []item) []item {
		for i := range cur {
			if cur[i].ID == "counter" {
				cur[i].Value++
			}
		}
		return cur
	}

	a, b := newPendingCommit(nil), newPendingCommit(nil)
	done := make(chan error, 2)
	go func() { done <- s.Mutate(context.Background(), Mutation[item]{Optimistic: increment, Commit: a.commit}) }()
	<-a.started
	go func() { done <- s.Mutate(context.Background(), Mutation[item]{Optimistic: increment, Commit: b.commit}) }()
	<-b.started

	if got := s.Read().Items[0].Value; got != 2 {
		t.Errorf("expected both increments visible, got %d", got)
	}

	a.result <- nil
	b.result <- nil
	<-done
	<-done

	if got := s.Read().Items[0].Value; got != 2 {
		t.Errorf("expected 2 after confirmation, got %d", got)
	}
}

func TestStore_StaleRefreshDiscarded(t *testing.T) {
	entered := make(chan struct{}, 2)
	responses := make(chan []item)
	s := New("test", func(ctx context.Context) ([]item, error) {
		entered <- struct{}{}
		return <-responses, nil
	})

	older := make(chan error, 1)
	go func() { older <- s.Refresh(context.Background()) }()
	<-entered

	newer := make(chan error, 1)
	go func() { newer <- s.Refresh(context.Background()) }()
	<-entered

	// Both fetches are blocked; whichever receives first does not matter
	// because the older sequence number loses either way.
	responses <- []item{{ID: "x"}}
	responses <- []item{{ID: "x"}}

	if err := <-older; !errors.Is(err, ErrSuperseded) {
		t.Errorf("expected the older refresh to be discarded, got %v", err)
	}
	if err := <-newer; err != nil {
		t.Errorf("expected the newer refresh to apply, got %v", err)
	}

	snap := s.Read()
	if snap.State != Ready {
		t.Errorf("expected ready, got %s", snap.State)
	}
	if got := ids(snap.Items); !slices.Equal(got, []string{"x"}) {
		t.Errorf("unexpected items: %v", got)
	}
}

func TestStore_RefreshSupersededByConfirmation(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	s := New("test", func(ctx context.Context) ([]item, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 2 {
			entered <- struct{}{}
			<-release
		}
		// server snapshot taken before the write landed
		return []item{}, nil
	})
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}

	refreshed := make(chan error, 1)
	go func() { refreshed <- s.Refresh(context.Background()) }()
	<-entered

	if got := s.Read().State; got != Revalidating {
		t.Errorf("expected revalidating, got %s", got)
	}

	err := s.Mutate(context.Background(), Mutation[item]{
		Optimistic: add(item{ID: "new"}),
		Commit: func(ctx context.Context) (Reconcile[item], error) {
			return func(c []item) []item { return append(c, item{ID: "new", Value: 7}) }, nil
		},
	})
	if err != nil {
		t.Fatalf("mutation failed: %v", err)
	}

	close(release)
	if err := <-refreshed; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected superseded refresh, got %v", err)
	}

	snap := s.Read()
	if len(snap.Items) != 1 || snap.Items[0].Value != 7 {
		t.Errorf("expected confirmed item to survive stale refresh, got %+v", snap.Items)
	}
	if snap.State != Ready {
		t.Errorf("expected ready, got %s", snap.State)
	}
}

func TestStore_RefreshReplaysPendingLayers(t *testing.T) {
	s := New("test", staticFetch(item{ID: "a"}, item{ID: "b"}))
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}

	pc := newPendingCommit(nil)
	done := make(chan error, 1)
	go func() {
		done <- s.Mutate(context.Background(), Mutation[item]{Optimistic: without("a"), Commit: pc.commit})
	}()
	<-pc.started

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	if got := ids(s.Read().Items); !slices.Equal(got, []string{"b"}) {
		t.Errorf("expected pending delete replayed over fresh data, got %v", got)
	}

	pc.result <- nil
	<-done
}

func TestStore_Subscribe(t *testing.T) {
	s := New("test", staticFetch(item{ID: "a"}))

	var mu sync.Mutex
	var states []State
	cancel := s.Subscribe(func(snap Snapshot[item]) {
		mu.Lock()
		states = append(states, snap.State)
		mu.Unlock()
	})

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	cancel()
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !slices.Equal(states, []State{Loading, Ready}) {
		t.Errorf("expected [loading ready], got %v", states)
	}
}

func TestStore_MutationRequiresFuncs(t *testing.T) {
	s := New("test", staticFetch())
	if err := s.Mutate(context.Background(), Mutation[item]{Name: "broken"}); err == nil {
		t.Error("expected error for incomplete mutation")
	}
}
