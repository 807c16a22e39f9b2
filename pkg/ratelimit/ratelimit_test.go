package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_AllowsUpToLimitThenDenies(t *testing.T) {
	l := NewLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		d := l.Allow("1.2.3.4")
		require.True(t, d.Allowed, "request %d should pass", i+1)
	}

	d := l.Allow("1.2.3.4")
	assert.False(t, d.Allowed)
	assert.Positive(t, d.RetryAfterSeconds)
	assert.LessOrEqual(t, d.RetryAfterSeconds, 60)
}

func TestLimiter_WindowRollover(t *testing.T) {
	l := NewLimiter(2, time.Minute)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }

	require.True(t, l.Allow("client").Allowed)
	require.True(t, l.Allow("client").Allowed)
	require.False(t, l.Allow("client").Allowed)

	// A full window later the counter starts fresh.
	current = current.Add(time.Minute)
	assert.True(t, l.Allow("client").Allowed)
}

func TestLimiter_RetryAfterShrinksWithElapsedTime(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }

	require.True(t, l.Allow("client").Allowed)

	current = current.Add(45 * time.Second)
	d := l.Allow("client")
	require.False(t, d.Allowed)
	assert.Equal(t, 15, d.RetryAfterSeconds)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l := NewLimiter(1, time.Minute)

	require.True(t, l.Allow("a").Allowed)
	require.False(t, l.Allow("a").Allowed)
	assert.True(t, l.Allow("b").Allowed)
}

func TestLimiter_CountNeverExceedsLimitPlusOne(t *testing.T) {
	l := NewLimiter(3, time.Minute)

	for i := 0; i < 10; i++ {
		l.Allow("client")
	}

	l.mu.Lock()
	count := l.windows["client"].count
	l.mu.Unlock()
	assert.Equal(t, 4, count)
}

func TestLimiter_ConcurrentAllowIsConsistent(t *testing.T) {
	l := NewLimiter(50, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)

	stats := l.Stats()
	assert.Equal(t, int64(50), stats.Allowed)
	assert.Equal(t, int64(50), stats.Denied)
}
