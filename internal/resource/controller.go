package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrMemoryLimitExceeded is returned when a reservation can never fit.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes caps the summed working sets of concurrent runs.
	// If 0, memory is only tracked.
	MemoryLimitBytes int64

	// MaxConcurrentRuns caps how many runs hold a slot at once.
	// If 0, runs are not limited.
	MaxConcurrentRuns int64
}

// Controller tracks memory and run slots.
// A nil *Controller admits everything.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	runSem  *semaphore.Weighted // nil if unlimited
	running atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.MaxConcurrentRuns > 0 {
		c.runSem = semaphore.NewWeighted(cfg.MaxConcurrentRuns)
	}

	return c
}

// AcquireMemory reserves bytes, waiting for other runs to release memory.
// A request larger than the whole limit fails immediately.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if bytes > c.cfg.MemoryLimitBytes {
			return fmt.Errorf("%w: need %d bytes, limit %d", ErrMemoryLimitExceeded, bytes, c.cfg.MemoryLimitBytes)
		}
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory returns a reservation.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the currently reserved bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// Running returns the number of runs currently admitted.
func (c *Controller) Running() int64 {
	if c == nil {
		return 0
	}
	return c.running.Load()
}

// Admit reserves a run slot and bytes of memory. The returned release
// function must be called exactly once when the run ends.
func (c *Controller) Admit(ctx context.Context, bytes int64) (release func(), err error) {
	if c == nil {
		return func() {}, nil
	}

	if c.runSem != nil {
		if err := c.runSem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
	}

	if err := c.AcquireMemory(ctx, bytes); err != nil {
		if c.runSem != nil {
			c.runSem.Release(1)
		}
		return nil, err
	}

	c.running.Add(1)

	var once atomic.Bool
	return func() {
		if !once.CompareAndSwap(false, true) {
			return
		}
		c.running.Add(-1)
		c.ReleaseMemory(bytes)
		if c.runSem != nil {
			c.runSem.Release(1)
		}
	}, nil
}
