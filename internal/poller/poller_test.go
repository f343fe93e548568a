package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akave-ai/akavelog-dash/internal/metrics"
)

// scripted returns queued results in order.
type scripted struct {
	mu      sync.Mutex
	results []result
}

type result struct {
	v   int
	err error
}

func (s *scripted) fetch(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.results[0]
	s.results = s.results[1:]
	return r.v, r.err
}

func newPoller(policy Retention, s *scripted, m *metrics.Metrics) *Poller[int] {
	return New(Config[int]{
		Kind:    "test",
		Fetch:   s.fetch,
		Policy:  policy,
		Logger:  zerolog.Nop(),
		Metrics: m,
	})
}

func TestPoll_KeepStaleRetainsOnFailure(t *testing.T) {
	s := &scripted{results: []result{{v: 1}, {err: errors.New("boom")}}}
	p := newPoller(KeepStale, s, nil)
	scope := NewScope(context.Background())
	defer scope.Close()

	p.Poll(scope)
	require.Equal(t, Value[int]{Data: 1, Present: true, UpdatedAt: p.Value().UpdatedAt}, p.Value())
	version := p.Cell().Version()

	p.Poll(scope)
	assert.True(t, p.Value().Present)
	assert.Equal(t, 1, p.Value().Data)
	assert.Equal(t, version, p.Cell().Version())
}

func TestPoll_DropToAbsentClearsOnFailure(t *testing.T) {
	s := &scripted{results: []result{{v: 1}, {err: errors.New("boom")}, {v: 2}}}
	p := newPoller(DropToAbsent, s, nil)
	scope := NewScope(context.Background())
	defer scope.Close()

	p.Poll(scope)
	require.True(t, p.Value().Present)

	p.Poll(scope)
	assert.False(t, p.Value().Present)
	assert.Equal(t, 0, p.Value().Data)

	p.Poll(scope)
	assert.Equal(t, 2, p.Value().Data)
}

func TestPoll_TransformAppliedToSuccess(t *testing.T) {
	s := &scripted{results: []result{{v: 21}}}
	p := New(Config[int]{
		Kind:      "double",
		Fetch:     s.fetch,
		Transform: func(v int) int { return v * 2 },
		Logger:    zerolog.Nop(),
	})
	scope := NewScope(context.Background())
	defer scope.Close()

	p.Poll(scope)
	assert.Equal(t, 42, p.Value().Data)
}

func TestPoll_DiscardedAfterTeardown(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	m := metrics.New()
	p := New(Config[int]{
		Kind: "slow",
		Fetch: func(context.Context) (int, error) {
			close(started)
			<-release
			return 99, nil
		},
		Logger:  zerolog.Nop(),
		Metrics: m,
	})
	before := p.Value()

	scope := NewScope(context.Background())
	done := make(chan struct{})
	go func() {
		p.Poll(scope)
		close(done)
	}()

	<-started
	scope.Close()
	close(release)
	<-done

	assert.Equal(t, before, p.Value())
	assert.Equal(t, uint64(0), p.Cell().Version())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollsTotal.WithLabelValues("slow", metrics.ResultDiscarded)))
}

func TestPoll_FailureDiscardedAfterTeardown(t *testing.T) {
	s := &scripted{results: []result{{v: 5}, {err: errors.New("boom")}}}
	p := newPoller(DropToAbsent, s, nil)

	scope := NewScope(context.Background())
	p.Poll(scope)
	scope.Close()
	p.Poll(scope)

	assert.True(t, p.Value().Present, "a failure after teardown must not clear the value")
}

func TestPoll_LastCompletedWins(t *testing.T) {
	first := make(chan struct{})
	second := make(chan struct{})
	var n int
	var mu sync.Mutex
	p := New(Config[int]{
		Kind: "overlap",
		Fetch: func(context.Context) (int, error) {
			mu.Lock()
			n++
			mine := n
			mu.Unlock()
			if mine == 1 {
				<-first
				return 1, nil
			}
			<-second
			return 2, nil
		},
		Logger: zerolog.Nop(),
	})
	scope := NewScope(context.Background())
	defer scope.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() { defer wg.Done(); p.Poll(scope) }()
	require.Eventually(t, func() bool { mu.Lock(); defer mu.Unlock(); return n == 1 }, time.Second, time.Millisecond)
	wg.Add(1)
	go func() { defer wg.Done(); p.Poll(scope) }()
	require.Eventually(t, func() bool { mu.Lock(); defer mu.Unlock(); return n == 2 }, time.Second, time.Millisecond)

	// tick N+1 finishes first, tick N last: the older request is what remains.
	close(second)
	require.Eventually(t, func() bool { return p.Value().Data == 2 }, time.Second, time.Millisecond)
	close(first)
	wg.Wait()

	assert.Equal(t, 1, p.Value().Data)
}

func TestPoll_Metrics(t *testing.T) {
	m := metrics.New()
	s := &scripted{results: []result{{v: 1}, {err: errors.New("boom")}}}
	p := newPoller(KeepStale, s, m)
	scope := NewScope(context.Background())
	defer scope.Close()

	p.Poll(scope)
	p.Poll(scope)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollsTotal.WithLabelValues("test", metrics.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollsTotal.WithLabelValues("test", metrics.ResultError)))
}

func TestScope_CloseIdempotent(t *testing.T) {
	s := NewScope(context.Background())
	assert.False(t, s.Closed())
	s.Close()
	s.Close()
	assert.True(t, s.Closed())
	assert.False(t, s.Do(func() { t.Fatal("must not run") }))
}

func TestScope_ParentCancelCloses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScope(ctx)
	cancel()
	assert.True(t, s.Closed())
	assert.False(t, s.Do(func() {}))
}
