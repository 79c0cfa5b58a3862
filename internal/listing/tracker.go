// Package listing tracks paginated list fetches so that a slow, stale
// response can never overwrite a newer one.
package listing

import (
	"context"
	"sync"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateEmpty
	StateError
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	case StateLoaded:
		return "loaded"
	}
	return "idle"
}

// Snapshot is what a view renders.
type Snapshot[T any] struct {
	State      State
	Items      []T
	Total      int
	Page       int
	TotalPages int
	Err        error
}

type Result[T any] struct {
	Items      []T
	Total      int
	Page       int
	TotalPages int
}

type Fetcher[T any] func(ctx context.Context) (Result[T], error)

// Tracker hands out increasing tokens; only the holder of the latest one
// may commit.
type Tracker[T any] struct {
	mu     sync.Mutex
	latest uint64
	snap   Snapshot[T]
}

func (t *Tracker[T]) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest++
	t.snap.State = StateLoading
	t.snap.Err = nil
	return t.latest
}

// Commit stores the outcome of the fetch started with token. It reports
// false, and changes nothing, when a newer fetch has begun since.
func (t *Tracker[T]) Commit(token uint64, res Result[T], err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if token != t.latest {
		return false
	}
	if err != nil {
		t.snap = Snapshot[T]{State: StateError, Err: err}
		return true
	}
	state := StateLoaded
	if len(res.Items) == 0 {
		state = StateEmpty
	}
	t.snap = Snapshot[T]{
		State:      state,
		Items:      res.Items,
		Total:      res.Total,
		Page:       res.Page,
		TotalPages: res.TotalPages,
	}
	return true
}

func (t *Tracker[T]) Snapshot() Snapshot[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.snap
	s.Items = append([]T(nil), s.Items...)
	return s
}

// Load runs fetch under a fresh token and returns the snapshot after the
// commit attempt, along with whether this fetch was the one committed.
func (t *Tracker[T]) Load(ctx context.Context, fetch Fetcher[T]) (Snapshot[T], bool) {
	token := t.Begin()
	res, err := fetch(ctx)
	committed := t.Commit(token, res, err)
	return t.Snapshot(), committed
}
