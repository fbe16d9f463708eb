// Package guard provides a read/write locked accessor for state shared
// outside the engine's message-passing path.
//
// Guard is backed by sync.RWMutex. Once a writer is blocked in Lock, new
// readers queue behind it, and readers already waiting when the writer
// unlocks are admitted before the next writer. Neither side can starve the
// other. Calls are not re-entrant: fn must not call back into the same Guard.
package guard

import "sync"

// Guard protects a value of type T.
type Guard[T any] struct {
	mu  sync.RWMutex
	val T
}

// New returns a Guard holding v.
func New[T any](v T) *Guard[T] {
	return &Guard[T]{val: v}
}

// Read runs fn under the shared lock. The lock is released before any error
// or panic from fn reaches the caller.
func (g *Guard[T]) Read(fn func(T) error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fn(g.val)
}

// Write runs fn under the exclusive lock with a pointer to the guarded value.
func (g *Guard[T]) Write(fn func(*T) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(&g.val)
}

// Load returns a copy of the guarded value.
func (g *Guard[T]) Load() T {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.val
}

// Store replaces the guarded value.
func (g *Guard[T]) Store(v T) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.val = v
}

// ReadValue runs fn under g's shared lock and returns its result.
func ReadValue[T, U any](g *Guard[T], fn func(T) (U, error)) (U, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fn(g.val)
}

// WriteValue runs fn under g's exclusive lock and returns its result.
func WriteValue[T, U any](g *Guard[T], fn func(*T) (U, error)) (U, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(&g.val)
}
