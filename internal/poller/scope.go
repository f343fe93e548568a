package poller

import (
	"context"
	"sync"
)

// Scope is the lifetime of a mounted view. Results are only applied while
// the scope is open; Close cancels in-flight requests without waiting for them.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// NewScope returns an open scope derived from parent.
func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context is cancelled when the scope closes.
func (s *Scope) Context() context.Context { return s.ctx }

// Do runs fn unless the scope is closed and reports whether it ran.
// Close blocks on a running fn, so fn must be short and must not block.
func (s *Scope) Do(fn func()) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed || s.ctx.Err() != nil {
		return false
	}
	fn()
	return true
}

// Close is idempotent. Once it returns, no Do callback runs again.
func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// Closed reports whether Close was called or the parent context ended.
func (s *Scope) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed || s.ctx.Err() != nil
}
