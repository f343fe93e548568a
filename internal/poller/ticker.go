package poller

import (
	"sync"
	"time"
)

// DefaultInterval is the cadence of the log and status polls.
const DefaultInterval = 2 * time.Second

// Job is one poll launched on every tick.
type Job func(*Scope)

// Ticker drives every job from a single timer so that one tick issues at
// most one request per job. Jobs of the same tick run concurrently and may
// finish in any order.
type Ticker struct {
	interval time.Duration
	jobs     []Job

	startOnce sync.Once
	done      chan struct{}
}

// NewTicker returns a stopped ticker.
func NewTicker(interval time.Duration, jobs ...Job) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{
		interval: interval,
		jobs:     jobs,
		done:     make(chan struct{}),
	}
}

// Interval returns the tick period.
func (t *Ticker) Interval() time.Duration { return t.interval }

// Start launches the timer loop. The first tick fires one interval after
// Start. The loop exits when scope closes; calling Start again is a no-op.
func (t *Ticker) Start(scope *Scope) {
	t.startOnce.Do(func() {
		go t.run(scope)
	})
}

// Done is closed after the timer loop has exited.
func (t *Ticker) Done() <-chan struct{} { return t.done }

// Tick launches every job once without waiting for them.
func (t *Ticker) Tick(scope *Scope) {
	for _, job := range t.jobs {
		go job(scope)
	}
}

func (t *Ticker) run(scope *Scope) {
	defer close(t.done)

	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	ctx := scope.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			if scope.Closed() {
				return
			}
			t.Tick(scope)
		}
	}
}
