// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ads

import (
	"sync"
	"time"
)

// Countdown is a single cancellable ad timer with explicit
// start/pause/resume/cancel. One timer owns the whole break lifetime so
// teardown has exactly one thing to cancel.
type Countdown struct {
	mu        sync.Mutex
	total     time.Duration
	elapsed   time.Duration
	startedAt time.Time
	timer     *time.Timer
	done      chan struct{}
	finished  bool
	canceled  bool
}

// NewCountdown builds a countdown for the full ad duration. It does not
// start until Start is called.
func NewCountdown(total time.Duration) *Countdown {
	if total < 0 {
		total = 0
	}
	return &Countdown{
		total: total,
		done:  make(chan struct{}),
	}
}

// Start arms the timer. Calling Start on a running, finished or canceled
// countdown is a no-op.
func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armLocked()
}

// Pause stops the clock, retaining elapsed time.
func (c *Countdown) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished || c.canceled || c.startedAt.IsZero() {
		return
	}
	c.elapsed += time.Since(c.startedAt)
	c.startedAt = time.Time{}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Resume re-arms the timer for the remaining duration.
func (c *Countdown) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armLocked()
}

// Cancel stops the countdown permanently. Idempotent; Done never fires
// after Cancel.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished || c.canceled {
		return
	}
	c.canceled = true
	if !c.startedAt.IsZero() {
		c.elapsed += time.Since(c.startedAt)
		c.startedAt = time.Time{}
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Done is closed exactly once, on natural expiry of the full duration.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

// Elapsed returns accumulated running time, pause-aware.
func (c *Countdown) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		return c.total
	}
	e := c.elapsed
	if !c.startedAt.IsZero() {
		e += time.Since(c.startedAt)
	}
	if e > c.total {
		e = c.total
	}
	return e
}

// Remaining returns the unplayed portion of the countdown.
func (c *Countdown) Remaining() time.Duration {
	return c.total - c.Elapsed()
}

func (c *Countdown) armLocked() {
	if c.finished || c.canceled || !c.startedAt.IsZero() {
		return
	}
	remaining := c.total - c.elapsed
	if remaining <= 0 {
		c.fireLocked()
		return
	}
	c.startedAt = time.Now()
	c.timer = time.AfterFunc(remaining, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.canceled || c.finished {
			return
		}
		c.elapsed = c.total
		c.startedAt = time.Time{}
		c.fireLocked()
	})
}

func (c *Countdown) fireLocked() {
	c.finished = true
	c.timer = nil
	close(c.done)
}
