// Package state provides owned, observable values.
//
// Each Cell has exactly one writer (the component that owns it) and any
// number of observers. Observers run synchronously on the writer's goroutine
// after the lock is released, so they must not block; renderers hand the
// work off to their own draw loop.
package state

import "sync"

// Cell holds a value of type T and notifies observers on every Set.
type Cell[T any] struct {
	mu        sync.RWMutex
	value     T
	version   uint64
	nextID    int
	observers map[int]func(T)
}

// NewCell returns a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value:     initial,
		observers: make(map[int]func(T)),
	}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Version increases by one on every Set. Useful in tests to assert that
// nothing was written.
func (c *Cell[T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Set replaces the value and notifies observers.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	c.version++
	obs := c.snapshotObservers()
	c.mu.Unlock()
	for _, fn := range obs {
		fn(v)
	}
}

// Update applies fn to the current value under the lock and stores the result.
func (c *Cell[T]) Update(fn func(T) T) T {
	c.mu.Lock()
	v := fn(c.value)
	c.value = v
	c.version++
	obs := c.snapshotObservers()
	c.mu.Unlock()
	for _, o := range obs {
		o(v)
	}
	return v
}

// Subscribe registers fn and returns a function that removes it.
func (c *Cell[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.observers, id)
			c.mu.Unlock()
		})
	}
}

func (c *Cell[T]) snapshotObservers() []func(T) {
	if len(c.observers) == 0 {
		return nil
	}
	out := make([]func(T), 0, len(c.observers))
	for _, fn := range c.observers {
		out = append(out, fn)
	}
	return out
}
