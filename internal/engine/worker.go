package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// commandResult travels back to synchronous callers.
type commandResult struct {
	value any
	err   error
}

// command is one unit of serialized work for a single event. Operator and
// bidder commands carry a reply channel; timer-driven commands run fire and
// forget, logging their own failures.
type command struct {
	name  string
	fn    func(ctx context.Context) (any, error)
	reply chan commandResult
}

// worker serializes every mutating operation against one auction event.
// Different events get different workers, so auctions run in parallel while
// each one stays single-threaded.
type worker struct {
	eventID  uuid.UUID
	commands chan command
	stop     chan struct{}
}

func newWorker(eventID uuid.UUID, queueSize int) *worker {
	return &worker{
		eventID:  eventID,
		commands: make(chan command, queueSize),
		stop:     make(chan struct{}),
	}
}

func (w *worker) run(e *Engine) {
	ctx := e.logg.WithAuctionID(context.Background(), w.eventID.String())
	for {
		select {
		case cmd := <-w.commands:
			w.execute(ctx, e, cmd)
		case <-w.stop:
			// Drain whatever was already queued so synchronous callers are
			// not left waiting on a reply.
			for {
				select {
				case cmd := <-w.commands:
					if cmd.reply != nil {
						cmd.reply <- commandResult{err: fmt.Errorf("auction worker stopped")}
					}
				default:
					return
				}
			}
		}
	}
}

func (w *worker) execute(ctx context.Context, e *Engine, cmd command) {
	started := time.Now()
	value, err := cmd.fn(ctx)
	e.metrics.ObserveCommand(cmd.name, time.Since(started))

	if cmd.reply != nil {
		cmd.reply <- commandResult{value: value, err: err}
		return
	}
	if err != nil {
		// Timer-driven paths log and continue: one event's failure must not
		// halt the worker or other events.
		e.logg.Error(ctx, fmt.Sprintf("engine: %s failed", cmd.name), err)
	}
}

// submit runs fn on the worker and waits for the result.
func (w *worker) submit(ctx context.Context, name string, fn func(ctx context.Context) (any, error)) (any, error) {
	reply := make(chan commandResult, 1)
	select {
	case w.commands <- command{name: name, fn: fn, reply: reply}:
	case <-w.stop:
		return nil, fmt.Errorf("auction worker stopped")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// enqueue schedules fn without waiting. Returns false when the queue is full
// or the worker is stopping.
func (w *worker) enqueue(name string, fn func(ctx context.Context) (any, error)) bool {
	select {
	case w.commands <- command{name: name, fn: fn}:
		return true
	case <-w.stop:
		return false
	default:
		return false
	}
}
