package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ExpireFunc receives the deadline callback. The coordinator guarantees at
// most one call per arm/reset cycle; the caller applies its own freshness
// guard before acting, because cancellation racing a fired timer is allowed.
type ExpireFunc func(eventID, itemID uuid.UUID)

// Coordinator owns at most one live countdown per auction event. Arming an
// event cancels whatever handle it previously held.
type Coordinator interface {
	Arm(eventID, itemID uuid.UUID, window time.Duration, onExpire ExpireFunc) error
	Reset(eventID uuid.UUID) bool
	Cancel(eventID uuid.UUID) bool
	Remaining(eventID uuid.UUID) (time.Duration, bool)
	Stop()
}

type handle struct {
	itemID     uuid.UUID
	window     time.Duration
	onExpire   ExpireFunc
	timer      *time.Timer
	deadline   time.Time
	generation uint64
}

type coordinator struct {
	mu      sync.Mutex
	handles map[uuid.UUID]*handle
	stopped bool
}

// NewCoordinator returns an empty coordinator.
func NewCoordinator() Coordinator {
	return &coordinator{handles: make(map[uuid.UUID]*handle)}
}

// Arm starts a countdown for the event, replacing any prior handle.
func (c *coordinator) Arm(eventID, itemID uuid.UUID, window time.Duration, onExpire ExpireFunc) error {
	if eventID == uuid.Nil {
		return fmt.Errorf("event id is required")
	}
	if itemID == uuid.Nil {
		return fmt.Errorf("item id is required")
	}
	if window <= 0 {
		return fmt.Errorf("window must be positive, got %s", window)
	}
	if onExpire == nil {
		return fmt.Errorf("expiry callback is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return fmt.Errorf("coordinator is stopped")
	}

	prev := c.handles[eventID]
	var generation uint64
	if prev != nil {
		prev.timer.Stop()
		generation = prev.generation + 1
	}

	h := &handle{
		itemID:     itemID,
		window:     window,
		onExpire:   onExpire,
		deadline:   time.Now().Add(window),
		generation: generation,
	}
	h.timer = time.AfterFunc(window, func() {
		c.fire(eventID, h.generation)
	})
	c.handles[eventID] = h
	return nil
}

// Reset restores the full window on the current handle. Returns false when
// the event has no live handle, which callers treat as "nothing to extend".
func (c *coordinator) Reset(eventID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.handles[eventID]
	if !ok {
		return false
	}

	h.timer.Stop()
	h.generation++
	h.deadline = time.Now().Add(h.window)
	generation := h.generation
	h.timer = time.AfterFunc(h.window, func() {
		c.fire(eventID, generation)
	})
	return true
}

// Cancel drops the event's handle. Idempotent against an already-fired or
// never-armed timer.
func (c *coordinator) Cancel(eventID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.handles[eventID]
	if !ok {
		return false
	}
	h.timer.Stop()
	h.generation++
	delete(c.handles, eventID)
	return true
}

// Remaining reports time left on the live handle, if any.
func (c *coordinator) Remaining(eventID uuid.UUID) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.handles[eventID]
	if !ok {
		return 0, false
	}
	left := time.Until(h.deadline)
	if left < 0 {
		left = 0
	}
	return left, true
}

// Stop cancels every handle. Used on shutdown.
func (c *coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, h := range c.handles {
		h.timer.Stop()
		h.generation++
		delete(c.handles, id)
	}
	c.stopped = true
}

// fire delivers expiry for one arm/reset cycle. The generation check makes a
// stale AfterFunc (one that raced a Reset or Cancel) a no-op.
func (c *coordinator) fire(eventID uuid.UUID, generation uint64) {
	c.mu.Lock()
	h, ok := c.handles[eventID]
	if !ok || h.generation != generation {
		c.mu.Unlock()
		return
	}
	delete(c.handles, eventID)
	itemID := h.itemID
	onExpire := h.onExpire
	c.mu.Unlock()

	onExpire(eventID, itemID)
}
