package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicker_TickRunsEveryJob(t *testing.T) {
	var logs, status atomic.Int32
	tk := NewTicker(time.Hour,
		func(*Scope) { logs.Add(1) },
		func(*Scope) { status.Add(1) },
	)
	scope := NewScope(context.Background())
	defer scope.Close()

	tk.Tick(scope)

	require.Eventually(t, func() bool { return logs.Load() == 1 && status.Load() == 1 }, time.Second, time.Millisecond)
}

func TestTicker_JobsDoNotBlockEachOther(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	var fast atomic.Int32
	tk := NewTicker(time.Hour,
		func(*Scope) { <-block },
		func(*Scope) { fast.Add(1) },
	)
	scope := NewScope(context.Background())
	defer scope.Close()

	tk.Tick(scope)
	require.Eventually(t, func() bool { return fast.Load() == 1 }, time.Second, time.Millisecond)
}

func TestTicker_StopsWithScope(t *testing.T) {
	var n atomic.Int32
	tk := NewTicker(5*time.Millisecond, func(*Scope) { n.Add(1) })
	scope := NewScope(context.Background())

	tk.Start(scope)
	tk.Start(scope)
	require.Eventually(t, func() bool { return n.Load() >= 2 }, time.Second, time.Millisecond)

	scope.Close()
	select {
	case <-tk.Done():
	case <-time.After(time.Second):
		t.Fatal("ticker loop did not exit")
	}

	// let a job launched by the last tick finish its increment
	time.Sleep(10 * time.Millisecond)
	after := n.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, n.Load(), "no tick may fire after teardown")
}

func TestTicker_DefaultInterval(t *testing.T) {
	assert.Equal(t, DefaultInterval, NewTicker(0).Interval())
}
