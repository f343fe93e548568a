package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_SetNotifiesObservers(t *testing.T) {
	c := NewCell("a")

	var got []string
	unsub := c.Subscribe(func(v string) { got = append(got, v) })

	c.Set("b")
	c.Set("c")
	unsub()
	c.Set("d")

	assert.Equal(t, []string{"b", "c"}, got)
	assert.Equal(t, "d", c.Get())
	assert.Equal(t, uint64(3), c.Version())
}

func TestCell_UnsubscribeIdempotent(t *testing.T) {
	c := NewCell(0)
	unsub := c.Subscribe(func(int) {})
	unsub()
	unsub()
	c.Set(1)
	assert.Equal(t, 1, c.Get())
}

func TestCell_UpdateIsAtomic(t *testing.T) {
	c := NewCell(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update(func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()

	require.Equal(t, 50, c.Get())
}

func TestCell_ObserverMayReadCell(t *testing.T) {
	c := NewCell(1)
	var seen int
	c.Subscribe(func(int) { seen = c.Get() })
	c.Set(2)
	assert.Equal(t, 2, seen)
}
