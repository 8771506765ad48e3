// Package shutdown decides when a counting session flushes and ends.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"
)

// State is a step of the shutdown sequence. It only moves forward.
type State int

const (
	Running State = iota
	SavePending
	ShutdownPending
	Terminated
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case SavePending:
		return "save-pending"
	case ShutdownPending:
		return "shutdown-pending"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Reasons passed to Schedule.
const (
	ReasonDeadline  = "deadline"
	ReasonSignal    = "signal"
	ReasonFeedError = "feed-error"
	ReasonCanceled  = "canceled"
	ReasonUser      = "user"
)

// Coordinator tracks the save and shutdown flags. Schedule may be called
// from any goroutine; the remaining methods belong to the session loop.
type Coordinator struct {
	duration time.Duration
	deadline time.Time

	// scheduled covers both the save and the shutdown request.
	scheduled  atomic.Bool
	saved      atomic.Bool
	terminated atomic.Bool

	mu     sync.Mutex
	reason string

	wake chan struct{}
}

// New returns a Coordinator for a session window of the given duration.
func New(duration time.Duration) *Coordinator {
	return &Coordinator{
		duration: duration,
		wake:     make(chan struct{}, 1),
	}
}

// Start fixes the deadline at start plus the session duration.
func (c *Coordinator) Start(start time.Time) {
	c.deadline = start.Add(c.duration)
}

// Deadline returns the end of the session window.
func (c *Coordinator) Deadline() time.Time {
	return c.deadline
}

// CheckDeadline schedules shutdown when now has reached the deadline.
func (c *Coordinator) CheckDeadline(now time.Time) bool {
	if now.Before(c.deadline) {
		return false
	}
	c.Schedule(ReasonDeadline)
	return true
}

// Schedule requests a save and shutdown and wakes the loop. Only the first reason is kept.
// It does no I/O, so it is safe to call from signal and timer goroutines.
func (c *Coordinator) Schedule(reason string) {
	c.mu.Lock()
	if c.reason == "" {
		c.reason = reason
	}
	c.mu.Unlock()
	c.scheduled.Store(true)
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Reason returns the reason given to the first Schedule call.
func (c *Coordinator) Reason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// SaveScheduled reports whether a save is pending.
func (c *Coordinator) SaveScheduled() bool {
	return c.scheduled.Load() && !c.saved.Load()
}

// ShutdownScheduled reports whether shutdown has been requested.
func (c *Coordinator) ShutdownScheduled() bool {
	return c.scheduled.Load()
}

// MarkSaved records that the pending save ran.
func (c *Coordinator) MarkSaved() {
	if c.scheduled.Load() {
		c.saved.Store(true)
	}
}

// MarkTerminated records the end of the session.
func (c *Coordinator) MarkTerminated() {
	if c.scheduled.Load() {
		c.terminated.Store(true)
	}
}

// State derives the current step from the flags.
func (c *Coordinator) State() State {
	switch {
	case c.terminated.Load():
		return Terminated
	case c.saved.Load():
		return ShutdownPending
	case c.scheduled.Load():
		return SavePending
	default:
		return Running
	}
}

// Wake is signaled whenever Schedule runs.
func (c *Coordinator) Wake() <-chan struct{} {
	return c.wake
}

// Watch schedules shutdown when one of sigs arrives. It returns when ctx
// is done or after the first signal.
func (c *Coordinator) Watch(ctx context.Context, sigs ...os.Signal) {
	if len(sigs) == 0 {
		return
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	go func() {
		defer signal.Stop(ch)
		select {
		case <-ch:
			c.Schedule(ReasonSignal)
		case <-ctx.Done():
		}
	}()
}

// Arm schedules shutdown at the deadline even when no message arrives.
// Start must be called first.
func (c *Coordinator) Arm(ctx context.Context) {
	timer := time.NewTimer(time.Until(c.deadline))
	go func() {
		defer timer.Stop()
		select {
		case <-timer.C:
			c.Schedule(ReasonDeadline)
		case <-ctx.Done():
		}
	}()
}
