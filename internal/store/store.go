package store

import (
	"sync"

	"github.com/simp-lee/coachsync/internal/domain"
)

// Store holds one domain's state for the lifetime of the process.
// Dispatches are serialized; subscribers observe states in dispatch order.
type Store[T domain.Entity] struct {
	name    string
	reducer Reducer[T]

	mu    sync.RWMutex
	state State[T]

	// notifyMu is taken before mu is released so notifications keep dispatch order.
	notifyMu sync.Mutex
	subsMu   sync.Mutex
	subs     map[int]func(State[T])
	nextSub  int
}

// New creates an empty store for the named domain.
func New[T domain.Entity](name string, reducer Reducer[T]) *Store[T] {
	return &Store[T]{
		name:    name,
		reducer: reducer,
		state:   NewState[T](),
		subs:    make(map[int]func(State[T])),
	}
}

// Name returns the domain name the store was created for.
func (s *Store[T]) Name() string {
	return s.name
}

// Dispatch applies actions in order as a single step and returns the resulting
// state. Subscribers must not call Dispatch from their callback.
func (s *Store[T]) Dispatch(actions ...Action[T]) State[T] {
	if len(actions) == 0 {
		return s.Snapshot()
	}
	return s.commit(func(next State[T]) State[T] {
		for _, a := range actions {
			next = s.reducer.Reduce(next, a)
		}
		return next
	})
}

// commit replaces the state with step(current) and notifies subscribers.
func (s *Store[T]) commit(step func(State[T]) State[T]) State[T] {
	s.mu.Lock()
	next := step(s.state)
	s.state = next
	snapshot := next.Clone()
	s.notifyMu.Lock()
	s.mu.Unlock()

	defer s.notifyMu.Unlock()
	for _, fn := range s.subscribers() {
		fn(snapshot.Clone())
	}
	return snapshot
}

// Snapshot returns a deep copy of the current state.
func (s *Store[T]) Snapshot() State[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe registers fn to receive every state produced by Dispatch.
// The returned function removes the subscription.
func (s *Store[T]) Subscribe(fn func(State[T])) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// Reset discards all state, e.g. after logout. Subscribers receive the
// empty state.
func (s *Store[T]) Reset() {
	s.commit(func(State[T]) State[T] { return NewState[T]() })
}

func (s *Store[T]) subscribers() []func(State[T]) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	out := make([]func(State[T]), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}
