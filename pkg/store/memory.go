package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the encoded state in memory. It goes through the same
// encoding as the durable stores so that loaded state never aliases saved state.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() (s *MemoryStore) {
	s = &MemoryStore{}
	return s
}

// Load returns the last saved state.
func (s *MemoryStore) Load(ctx context.Context) (state State, found bool, err error) {
	err = ctx.Err()
	if err != nil {
		return state, found, err
	}

	s.mu.Lock()
	data := s.data
	s.mu.Unlock()

	if data == nil {
		return state, found, err
	}

	state, err = decodeState(data)
	if err != nil {
		return state, found, err
	}
	found = true
	return state, found, err
}

// Save replaces the stored state.
func (s *MemoryStore) Save(ctx context.Context, state State) (err error) {
	err = ctx.Err()
	if err != nil {
		return err
	}

	var data []byte
	data, err = encodeState(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data = data
	s.saves++
	s.mu.Unlock()

	return err
}

// Clear forgets the stored state.
func (s *MemoryStore) Clear(ctx context.Context) (err error) {
	err = ctx.Err()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()

	return err
}

// Close is a no-op.
func (s *MemoryStore) Close() (err error) {
	return err
}

// Saves returns how many times Save succeeded.
func (s *MemoryStore) Saves() (n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n = s.saves
	return n
}
