package cache

import "sync"

// Store serializes dispatches and notifies subscribers with each new state.
type Store struct {
	mu    sync.RWMutex
	state State

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(State)
}

// NewStore creates a store holding the initial state.
func NewStore() *Store {
	return &Store{state: Initial(), subs: map[int]func(State){}}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies actions in order and notifies subscribers once.
func (s *Store) Dispatch(actions ...Action) State {
	s.mu.Lock()
	for _, a := range actions {
		s.state = Reduce(s.state, a)
	}
	st := s.state
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
	return st
}

// Subscribe registers fn for state changes. The returned func removes it.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}
