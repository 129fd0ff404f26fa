package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type expiryRecorder struct {
	mu    sync.Mutex
	calls []uuid.UUID
	done  chan struct{}
}

func newExpiryRecorder() *expiryRecorder {
	return &expiryRecorder{done: make(chan struct{}, 8)}
}

func (r *expiryRecorder) expire(eventID, itemID uuid.UUID) {
	r.mu.Lock()
	r.calls = append(r.calls, itemID)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *expiryRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *expiryRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for expiry")
	}
}

func TestCoordinatorFiresOnce(t *testing.T) {
	c := NewCoordinator()
	defer c.Stop()

	rec := newExpiryRecorder()
	eventID, itemID := uuid.New(), uuid.New()

	if err := c.Arm(eventID, itemID, 10*time.Millisecond, rec.expire); err != nil {
		t.Fatalf("arm: %v", err)
	}

	rec.wait(t)
	time.Sleep(30 * time.Millisecond)
	if got := rec.count(); got != 1 {
		t.Fatalf("expected exactly one expiry, got %d", got)
	}
}

func TestCoordinatorResetRestoresFullWindow(t *testing.T) {
	c := NewCoordinator()
	defer c.Stop()

	rec := newExpiryRecorder()
	eventID := uuid.New()

	if err := c.Arm(eventID, uuid.New(), 80*time.Millisecond, rec.expire); err != nil {
		t.Fatalf("arm: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if !c.Reset(eventID) {
		t.Fatal("reset should succeed on a live handle")
	}

	// The original deadline has passed; only the reset cycle may fire.
	time.Sleep(50 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Fatalf("expiry fired before the reset window elapsed: %d", got)
	}

	rec.wait(t)
	if got := rec.count(); got != 1 {
		t.Fatalf("expected exactly one expiry after reset, got %d", got)
	}
}

func TestCoordinatorCancelSuppressesExpiry(t *testing.T) {
	c := NewCoordinator()
	defer c.Stop()

	rec := newExpiryRecorder()
	eventID := uuid.New()

	if err := c.Arm(eventID, uuid.New(), 30*time.Millisecond, rec.expire); err != nil {
		t.Fatalf("arm: %v", err)
	}
	if !c.Cancel(eventID) {
		t.Fatal("cancel should report a live handle")
	}

	time.Sleep(80 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Fatalf("cancelled timer still fired %d times", got)
	}

	// Cancelling again is a no-op.
	if c.Cancel(eventID) {
		t.Fatal("second cancel should report no handle")
	}
}

func TestCoordinatorArmReplacesPriorHandle(t *testing.T) {
	c := NewCoordinator()
	defer c.Stop()

	rec := newExpiryRecorder()
	eventID := uuid.New()
	first, second := uuid.New(), uuid.New()

	if err := c.Arm(eventID, first, 200*time.Millisecond, rec.expire); err != nil {
		t.Fatalf("arm first: %v", err)
	}
	if err := c.Arm(eventID, second, 20*time.Millisecond, rec.expire); err != nil {
		t.Fatalf("arm second: %v", err)
	}

	rec.wait(t)
	time.Sleep(250 * time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.calls) != 1 {
		t.Fatalf("expected one expiry, got %d", len(rec.calls))
	}
	if rec.calls[0] != second {
		t.Fatal("expiry delivered the replaced item")
	}
}

func TestCoordinatorResetOnMissingHandle(t *testing.T) {
	c := NewCoordinator()
	defer c.Stop()

	if c.Reset(uuid.New()) {
		t.Fatal("reset should fail without a live handle")
	}
}

func TestCoordinatorRemaining(t *testing.T) {
	c := NewCoordinator()
	defer c.Stop()

	eventID := uuid.New()
	if _, ok := c.Remaining(eventID); ok {
		t.Fatal("remaining should report no handle")
	}

	if err := c.Arm(eventID, uuid.New(), time.Second, func(uuid.UUID, uuid.UUID) {}); err != nil {
		t.Fatalf("arm: %v", err)
	}
	left, ok := c.Remaining(eventID)
	if !ok {
		t.Fatal("expected a live handle")
	}
	if left <= 0 || left > time.Second {
		t.Fatalf("unexpected remaining window %s", left)
	}
}

func TestCoordinatorArmValidation(t *testing.T) {
	c := NewCoordinator()
	defer c.Stop()

	cb := func(uuid.UUID, uuid.UUID) {}
	if err := c.Arm(uuid.Nil, uuid.New(), time.Second, cb); err == nil {
		t.Fatal("expected missing event id to fail")
	}
	if err := c.Arm(uuid.New(), uuid.Nil, time.Second, cb); err == nil {
		t.Fatal("expected missing item id to fail")
	}
	if err := c.Arm(uuid.New(), uuid.New(), 0, cb); err == nil {
		t.Fatal("expected non-positive window to fail")
	}
	if err := c.Arm(uuid.New(), uuid.New(), time.Second, nil); err == nil {
		t.Fatal("expected nil callback to fail")
	}
}

func TestCoordinatorStopPreventsArming(t *testing.T) {
	c := NewCoordinator()
	c.Stop()

	if err := c.Arm(uuid.New(), uuid.New(), time.Second, func(uuid.UUID, uuid.UUID) {}); err == nil {
		t.Fatal("expected arm after stop to fail")
	}
}
