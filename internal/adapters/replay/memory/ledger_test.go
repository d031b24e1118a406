package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsume_OnlyOnce(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New().WithClock(func() time.Time { return now })
	exp := now.Add(15 * time.Minute)

	ok, err := l.Consume(context.Background(), "a", exp)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = l.Consume(context.Background(), "a", exp)
	assert.False(t, ok)

	ok, _ = l.Consume(context.Background(), "b", exp)
	assert.True(t, ok)
}

func TestSweep_EvictsAtExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New().WithClock(func() time.Time { return now })

	_, _ = l.Consume(context.Background(), "a", now.Add(time.Minute))
	_, _ = l.Consume(context.Background(), "b", now.Add(time.Hour))
	assert.Equal(t, 2, l.Len())

	// el token vale hasta exp inclusive
	now = now.Add(time.Minute)
	l.Sweep()
	assert.Equal(t, 2, l.Len())
	ok, _ := l.Consume(context.Background(), "a", now)
	assert.False(t, ok)

	now = now.Add(time.Minute)
	l.Sweep()
	assert.Equal(t, 1, l.Len())
}

func TestConsume_ConcurrentSingleWinner(t *testing.T) {
	l := New()
	exp := time.Now().Add(time.Hour)

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Consume(context.Background(), "same", exp); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
