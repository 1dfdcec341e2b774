package resource

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})
	ctx := context.Background()

	require.NoError(t, c.AcquireMemory(ctx, 50))
	require.NoError(t, c.AcquireMemory(ctx, 40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(ctx, 60))
	assert.Equal(t, int64(100), c.MemoryUsage())
}

func TestController_MemoryTooLarge(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	err := c.AcquireMemory(context.Background(), 101)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(0), c.MemoryUsage())
}

func TestController_MemoryBlocking(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})
	require.NoError(t, c.AcquireMemory(context.Background(), 100))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.AcquireMemory(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(context.Background(), 1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_NilChecks(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireMemory(context.Background(), 10))
	c.ReleaseMemory(10)
	assert.Equal(t, int64(0), c.MemoryUsage())
	assert.Equal(t, int64(0), c.Running())

	release, err := c.Admit(context.Background(), 10)
	require.NoError(t, err)
	release()
}

func TestController_AdmitLimitsConcurrency(t *testing.T) {
	c := NewController(Config{MaxConcurrentRuns: 2})

	var (
		wg      sync.WaitGroup
		current atomic.Int64
		peak    atomic.Int64
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			release, err := c.Admit(context.Background(), 0)
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(2))
	assert.Equal(t, int64(0), c.Running())
}

func TestController_AdmitReleasesMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100, MaxConcurrentRuns: 1})

	release, err := c.Admit(context.Background(), 80)
	require.NoError(t, err)
	assert.Equal(t, int64(80), c.MemoryUsage())
	assert.Equal(t, int64(1), c.Running())

	release()
	release()
	assert.Equal(t, int64(0), c.MemoryUsage())
	assert.Equal(t, int64(0), c.Running())

	_, err = c.Admit(context.Background(), 200)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)

	// The failed admission must not leak its run slot.
	release, err = c.Admit(context.Background(), 10)
	require.NoError(t, err)
	release()
}

func TestController_AdmitCancelled(t *testing.T) {
	c := NewController(Config{MaxConcurrentRuns: 1})

	release, err := c.Admit(context.Background(), 0)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Admit(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
