package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auctionhub/auctionhub-backend/internal/auctions"
	"github.com/auctionhub/auctionhub-backend/internal/bidding"
	"github.com/auctionhub/auctionhub-backend/internal/broadcast"
	"github.com/auctionhub/auctionhub-backend/internal/budget"
	"github.com/auctionhub/auctionhub-backend/internal/timer"
	"github.com/auctionhub/auctionhub-backend/pkg/config"
	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	"github.com/auctionhub/auctionhub-backend/pkg/logger"
	"github.com/auctionhub/auctionhub-backend/pkg/metrics"
	"github.com/auctionhub/auctionhub-backend/pkg/outbox"
)

const commandQueueSize = 64

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OutboxEmitter queues durable domain events inside the caller's transaction.
type OutboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the auction state machine. Every mutating operation for one
// event is serialized through that event's worker; the deadline path enters
// through the same queue, so bids and expiry can never interleave mid-flight.
type Service interface {
	Start(ctx context.Context, eventID, actorID uuid.UUID) (*models.AuctionEvent, error)
	Pause(ctx context.Context, eventID, actorID uuid.UUID) (*models.AuctionEvent, error)
	Resume(ctx context.Context, eventID, actorID uuid.UUID) (*models.AuctionEvent, error)
	Cancel(ctx context.Context, eventID, actorID uuid.UUID) (*models.AuctionEvent, error)
	StartItem(ctx context.Context, eventID, itemID, actorID uuid.UUID) (*models.AuctionEvent, error)
	SubmitBid(ctx context.Context, eventID, itemID, partyID, actorID uuid.UUID, amount int64) (*bidding.SubmitBidResult, error)
	FinalizeSold(ctx context.Context, eventID, itemID, actorID uuid.UUID) (*models.AuctionEvent, error)
	FinalizeUnsold(ctx context.Context, eventID, itemID, actorID uuid.UUID) (*models.AuctionEvent, error)
	UpdateSettings(ctx context.Context, eventID uuid.UUID, input auctions.UpdateSettingsInput) (*models.AuctionEvent, error)
	Stop()
}

// Engine implements Service.
type Engine struct {
	cfg      config.AuctionConfig
	logg     *logger.Logger
	tx       TxRunner
	events   auctions.Repository
	bids     bidding.Repository
	bidding  bidding.Service
	budgets  budget.Service
	timers   timer.Coordinator
	emitter  OutboxEmitter
	realtime broadcast.Publisher
	metrics  *metrics.EngineMetrics

	mu      sync.Mutex
	workers map[uuid.UUID]*worker
	stopped bool
}

// Deps carries everything the engine needs.
type Deps struct {
	Config    config.AuctionConfig
	Logger    *logger.Logger
	Tx        TxRunner
	Events    auctions.Repository
	Bids      bidding.Repository
	Bidding   bidding.Service
	Budgets   budget.Service
	Timers    timer.Coordinator
	Outbox    OutboxEmitter
	Broadcast broadcast.Publisher
	Metrics   *metrics.EngineMetrics
}

// NewEngine wires the state machine.
func NewEngine(deps Deps) (*Engine, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if deps.Events == nil {
		return nil, fmt.Errorf("auctions repository required")
	}
	if deps.Bids == nil {
		return nil, fmt.Errorf("bid repository required")
	}
	if deps.Bidding == nil {
		return nil, fmt.Errorf("bidding service required")
	}
	if deps.Budgets == nil {
		return nil, fmt.Errorf("budget service required")
	}
	if deps.Timers == nil {
		return nil, fmt.Errorf("timer coordinator required")
	}
	if deps.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if deps.Broadcast == nil {
		return nil, fmt.Errorf("broadcast publisher required")
	}
	return &Engine{
		cfg:      deps.Config,
		logg:     deps.Logger,
		tx:       deps.Tx,
		events:   deps.Events,
		bids:     deps.Bids,
		bidding:  deps.Bidding,
		budgets:  deps.Budgets,
		timers:   deps.Timers,
		emitter:  deps.Outbox,
		realtime: deps.Broadcast,
		metrics:  deps.Metrics,
		workers:  make(map[uuid.UUID]*worker),
	}, nil
}

// Stop shuts down every worker and cancels outstanding timers.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	workers := make([]*worker, 0, len(e.workers))
	for _, w := range e.workers {
		workers = append(workers, w)
	}
	e.mu.Unlock()

	for _, w := range workers {
		close(w.stop)
	}
	e.timers.Stop()
}

func (e *Engine) workerFor(eventID uuid.UUID) (*worker, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil, fmt.Errorf("engine is stopped")
	}
	if w, ok := e.workers[eventID]; ok {
		return w, nil
	}
	w := newWorker(eventID, commandQueueSize)
	e.workers[eventID] = w
	go w.run(e)
	return w, nil
}

// do serializes fn through the event's worker and waits for its result.
func (e *Engine) do(ctx context.Context, eventID uuid.UUID, name string, fn func(ctx context.Context) (any, error)) (any, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event id is required")
	}
	w, err := e.workerFor(eventID)
	if err != nil {
		return nil, err
	}
	return w.submit(ctx, name, fn)
}

// doAsync serializes fn without waiting; timer-driven entry point.
func (e *Engine) doAsync(eventID uuid.UUID, name string, fn func(ctx context.Context) (any, error)) {
	w, err := e.workerFor(eventID)
	if err != nil {
		return
	}
	if !w.enqueue(name, fn) {
		ctx := e.logg.WithAuctionID(context.Background(), eventID.String())
		e.logg.Warn(ctx, fmt.Sprintf("engine: dropped %s, worker queue full", name))
	}
}

// onExpire is the timer coordinator callback. It hops onto the event worker
// so deadline handling is serialized with bids and operator commands.
func (e *Engine) onExpire(eventID, itemID uuid.UUID) {
	e.metrics.IncTimerExpiry(eventID.String())
	e.metrics.TimerArmed(-1)
	e.doAsync(eventID, "handle_deadline", func(ctx context.Context) (any, error) {
		return nil, e.handleDeadline(ctx, eventID, itemID)
	})
}
