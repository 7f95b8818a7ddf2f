// Package history implements a linear, snapshot based undo/redo store.
//
// A History holds an ordered sequence of immutable snapshots and a cursor
// pointing at the current one. Committing a value that is equal to the
// current snapshot is a no-op. Committing a different value while the cursor
// is not at the tail discards every snapshot after the cursor before the new
// one is appended.
package history

import (
	"sync"

	deep "github.com/brunoga/deep/v5"
)

// EqualFunc reports whether two states are value-equal.
type EqualFunc[T any] func(a, b T) bool

// CloneFunc returns a deep copy of a state.
type CloneFunc[T any] func(v T) T

// Option configures a History.
type Option[T any] func(h *History[T])

// WithEqual overrides the equality check used to gate commits.
func WithEqual[T any](equal EqualFunc[T]) (opt Option[T]) {
	opt = func(h *History[T]) {
		if equal != nil {
			h.equal = equal
		}
	}
	return opt
}

// WithClone overrides how snapshots are copied in and out of the store.
func WithClone[T any](clone CloneFunc[T]) (opt Option[T]) {
	opt = func(h *History[T]) {
		if clone != nil {
			h.clone = clone
		}
	}
	return opt
}

// WithLimit bounds the number of retained snapshots. Zero means unbounded.
func WithLimit[T any](limit int) (opt Option[T]) {
	opt = func(h *History[T]) {
		if limit > 0 {
			h.limit = limit
		}
	}
	return opt
}

// History is an undo/redo container. It is safe for concurrent use.
type History[T any] struct {
	mu       sync.Mutex
	sequence []T
	cursor   int
	limit    int
	equal    EqualFunc[T]
	clone    CloneFunc[T]
	version  uint64
}

// Checkpoint is a saved position in a History. Rolling back to it abandons
// every change made since, including a redo tail that a commit discarded.
type Checkpoint[T any] struct {
	sequence []T
	cursor   int
	version  uint64
}

// New creates a single-entry history holding initial.
func New[T any](initial T, opts ...Option[T]) (h *History[T]) {
	h = &History[T]{
		equal: defaultEqual[T],
		clone: defaultClone[T],
	}
	for _, opt := range opts {
		opt(h)
	}
	h.sequence = []T{h.clone(initial)}
	h.cursor = 0
	return h
}

// Current returns a copy of the snapshot under the cursor.
func (h *History[T]) Current() (state T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state = h.clone(h.sequence[h.cursor])
	return state
}

// Commit records next as the new current state. It reports false when next
// is equal to the current state, in which case nothing changes.
func (h *History[T]) Commit(next T) (changed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	changed = h.commitLocked(next)
	return changed
}

// CommitFunc resolves the next state from a copy of the current one and
// commits it under the same lock.
func (h *History[T]) CommitFunc(update func(prev T) T) (changed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := update(h.clone(h.sequence[h.cursor]))
	changed = h.commitLocked(next)
	return changed
}

// commitLocked checks equality before truncating; an equal state must leave
// the redo tail intact.
func (h *History[T]) commitLocked(next T) (changed bool) {
	if h.equal(h.sequence[h.cursor], next) {
		return changed
	}

	h.sequence = append(h.sequence[:h.cursor+1:h.cursor+1], h.clone(next))
	h.cursor = len(h.sequence) - 1
	h.version++

	if h.limit > 0 && len(h.sequence) > h.limit {
		drop := len(h.sequence) - h.limit
		h.sequence = append([]T(nil), h.sequence[drop:]...)
		h.cursor -= drop
	}

	changed = true
	return changed
}

// Undo moves the cursor back one entry. It is a no-op at the first entry.
func (h *History[T]) Undo() (moved bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor > 0 {
		h.cursor--
		h.version++
		moved = true
	}
	h.clampLocked()
	return moved
}

// Redo moves the cursor forward one entry. It is a no-op at the tail.
func (h *History[T]) Redo() (moved bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor < len(h.sequence)-1 {
		h.cursor++
		h.version++
		moved = true
	}
	h.clampLocked()
	return moved
}

// CanUndo reports whether Undo would move the cursor.
func (h *History[T]) CanUndo() (ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ok = h.cursor > 0
	return ok
}

// CanRedo reports whether Redo would move the cursor.
func (h *History[T]) CanRedo() (ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ok = h.cursor < len(h.sequence)-1
	return ok
}

// Reset discards every entry and starts over from newInitial.
func (h *History[T]) Reset(newInitial T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sequence = []T{h.clone(newInitial)}
	h.cursor = 0
	h.version++
}

// Checkpoint saves the current position for a later Rollback.
func (h *History[T]) Checkpoint() (cp Checkpoint[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cp = Checkpoint[T]{
		sequence: append([]T(nil), h.sequence...),
		cursor:   h.cursor,
		version:  h.version,
	}
	return cp
}

// Rollback returns the history to cp, dropping everything committed, undone
// or redone since. It reports false when nothing changed after cp was taken.
func (h *History[T]) Rollback(cp Checkpoint[T]) (restored bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cp.sequence == nil || cp.version == h.version {
		return restored
	}

	h.sequence = append([]T(nil), cp.sequence...)
	h.cursor = cp.cursor
	h.version++
	h.clampLocked()

	restored = true
	return restored
}

// Len returns the number of retained snapshots.
func (h *History[T]) Len() (n int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n = len(h.sequence)
	return n
}

// Cursor returns the index of the current snapshot.
func (h *History[T]) Cursor() (cursor int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cursor = h.cursor
	return cursor
}

// clampLocked keeps the cursor within [0, len-1].
func (h *History[T]) clampLocked() {
	if h.cursor < 0 {
		h.cursor = 0
	}
	if h.cursor > len(h.sequence)-1 {
		h.cursor = len(h.sequence) - 1
	}
}

func defaultEqual[T any](a, b T) (equal bool) {
	equal = deep.Equal(a, b)
	return equal
}

func defaultClone[T any](v T) (c T) {
	c = deep.Clone(v)
	return c
}
