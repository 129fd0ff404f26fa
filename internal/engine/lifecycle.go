package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auctionhub/auctionhub-backend/internal/auctions"
	"github.com/auctionhub/auctionhub-backend/internal/broadcast"
	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	"github.com/auctionhub/auctionhub-backend/pkg/enums"
	pkgerrors "github.com/auctionhub/auctionhub-backend/pkg/errors"
	"github.com/auctionhub/auctionhub-backend/pkg/outbox"
	"github.com/auctionhub/auctionhub-backend/pkg/outbox/payloads"
)

// Start flips a draft or scheduled auction live. In auto mode the first item
// is offered right away.
func (e *Engine) Start(ctx context.Context, eventID, actorID uuid.UUID) (*models.AuctionEvent, error) {
	value, err := e.do(ctx, eventID, "start", func(ctx context.Context) (any, error) {
		event, err := e.loadEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if event.Status != enums.AuctionStatusDraft && event.Status != enums.AuctionStatusScheduled {
			return nil, invalidTransition("start", event.Status)
		}
		items, err := e.events.ListEventItems(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "auction needs at least one assigned item to start")
		}

		now := time.Now().UTC()
		err = e.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := e.events.WithTx(tx)
			if err := repo.UpdateEvent(ctx, eventID, map[string]any{
				"status":     enums.AuctionStatusLive,
				"started_at": now,
				"started_by": actorID,
			}); err != nil {
				return err
			}
			return e.emitter.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.OutboxEventAuctionStarted,
				AggregateType: enums.OutboxAggregateAuction,
				AggregateID:   eventID,
				Data: payloads.AuctionStartedEvent{
					EventID:   eventID,
					StartedBy: actorID,
					StartedAt: now,
				},
			})
		})
		if err != nil {
			return nil, err
		}

		event.Status = enums.AuctionStatusLive
		event.StartedAt = &now
		event.StartedBy = &actorID
		e.realtime.Publish(ctx, eventID, broadcast.MessageAuctionStarted, broadcast.AuctionStatusChanged{
			Status: string(enums.AuctionStatusLive),
		})

		if event.AutoMode {
			e.scheduleAdvance(eventID, 0)
		}
		return event, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.AuctionEvent), nil
}

// Pause suspends a live auction and its countdown.
func (e *Engine) Pause(ctx context.Context, eventID, actorID uuid.UUID) (*models.AuctionEvent, error) {
	value, err := e.do(ctx, eventID, "pause", func(ctx context.Context) (any, error) {
		event, err := e.loadEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if event.Status != enums.AuctionStatusLive {
			return nil, invalidTransition("pause", event.Status)
		}
		if e.timers.Cancel(eventID) {
			e.metrics.TimerArmed(-1)
		}
		if err := e.events.UpdateEvent(ctx, eventID, map[string]any{
			"status": enums.AuctionStatusPaused,
		}); err != nil {
			return nil, err
		}
		event.Status = enums.AuctionStatusPaused
		e.realtime.Publish(ctx, eventID, broadcast.MessageAuctionPaused, broadcast.AuctionStatusChanged{
			Status: string(enums.AuctionStatusPaused),
		})
		return event, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.AuctionEvent), nil
}

// Resume puts a paused auction back live. A current item gets a fresh full
// window; otherwise auto mode moves to the next item.
func (e *Engine) Resume(ctx context.Context, eventID, actorID uuid.UUID) (*models.AuctionEvent, error) {
	value, err := e.do(ctx, eventID, "resume", func(ctx context.Context) (any, error) {
		event, err := e.loadEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if event.Status != enums.AuctionStatusPaused {
			return nil, invalidTransition("resume", event.Status)
		}
		if err := e.events.UpdateEvent(ctx, eventID, map[string]any{
			"status": enums.AuctionStatusLive,
		}); err != nil {
			return nil, err
		}
		event.Status = enums.AuctionStatusLive
		e.realtime.Publish(ctx, eventID, broadcast.MessageAuctionResumed, broadcast.AuctionStatusChanged{
			Status: string(enums.AuctionStatusLive),
		})

		if event.CurrentItemID != nil {
			if err := e.timers.Arm(eventID, *event.CurrentItemID, event.TimerWindow(), e.onExpire); err != nil {
				return nil, err
			}
			e.metrics.TimerArmed(1)
		} else if event.AutoMode {
			e.scheduleAdvance(eventID, 0)
		}
		return event, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.AuctionEvent), nil
}

// Cancel aborts an auction from any pre-completed state.
func (e *Engine) Cancel(ctx context.Context, eventID, actorID uuid.UUID) (*models.AuctionEvent, error) {
	value, err := e.do(ctx, eventID, "cancel", func(ctx context.Context) (any, error) {
		event, err := e.loadEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if event.Status.IsTerminal() {
			return nil, invalidTransition("cancel", event.Status)
		}
		if e.timers.Cancel(eventID) {
			e.metrics.TimerArmed(-1)
		}

		now := time.Now().UTC()
		err = e.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := e.events.WithTx(tx)
			if err := repo.UpdateEvent(ctx, eventID, map[string]any{
				"status":                  enums.AuctionStatusCancelled,
				"current_item_id":         nil,
				"current_item_started_at": nil,
			}); err != nil {
				return err
			}
			return e.emitter.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.OutboxEventAuctionCancelled,
				AggregateType: enums.OutboxAggregateAuction,
				AggregateID:   eventID,
				Data: payloads.AuctionCancelledEvent{
					EventID:     eventID,
					CancelledAt: now,
				},
			})
		})
		if err != nil {
			return nil, err
		}

		event.Status = enums.AuctionStatusCancelled
		event.CurrentItemID = nil
		event.CurrentItemStartedAt = nil
		e.realtime.Publish(ctx, eventID, broadcast.MessageAuctionCancelled, broadcast.AuctionStatusChanged{
			Status: string(enums.AuctionStatusCancelled),
		})
		return event, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.AuctionEvent), nil
}

// UpdateSettings applies settings changes through the event worker so they
// never interleave with bids or deadline handling.
func (e *Engine) UpdateSettings(ctx context.Context, eventID uuid.UUID, input auctions.UpdateSettingsInput) (*models.AuctionEvent, error) {
	value, err := e.do(ctx, eventID, "update_settings", func(ctx context.Context) (any, error) {
		event, err := e.loadEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if event.Status.IsTerminal() {
			return nil, invalidTransition("update settings", event.Status)
		}

		columns := map[string]any{}
		if input.TimerWindowSeconds != nil {
			if *input.TimerWindowSeconds <= 0 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "timer window must be positive")
			}
			event.TimerWindowSeconds = *input.TimerWindowSeconds
			columns["timer_window_seconds"] = *input.TimerWindowSeconds
		}
		if input.StartingBudget != nil {
			if *input.StartingBudget <= 0 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "starting budget must be positive")
			}
			event.StartingBudget = *input.StartingBudget
			columns["starting_budget"] = *input.StartingBudget
		}
		if input.MaxBidCap != nil {
			if *input.MaxBidCap <= 0 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "max bid cap must be positive")
			}
			event.MaxBidCap = *input.MaxBidCap
			columns["max_bid_cap"] = *input.MaxBidCap
		}
		if input.MaxItemsPerParty != nil {
			if *input.MaxItemsPerParty < 0 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "max items per party must be non-negative")
			}
			event.MaxItemsPerParty = *input.MaxItemsPerParty
			columns["max_items_per_party"] = *input.MaxItemsPerParty
		}
		if input.AutoMode != nil {
			event.AutoMode = *input.AutoMode
			columns["auto_mode"] = *input.AutoMode
		}
		if input.ScheduledAt != nil {
			if event.Status != enums.AuctionStatusDraft && event.Status != enums.AuctionStatusScheduled {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "only a draft or scheduled auction can be rescheduled")
			}
			event.ScheduledAt = input.ScheduledAt
			columns["scheduled_at"] = *input.ScheduledAt
			if event.Status == enums.AuctionStatusDraft {
				event.Status = enums.AuctionStatusScheduled
				columns["status"] = enums.AuctionStatusScheduled
			}
		}
		if len(input.IncrementTiers) > 0 {
			encoded, err := encodeTiers(input.IncrementTiers)
			if err != nil {
				return nil, err
			}
			event.IncrementTiers = encoded
			columns["increment_tiers"] = encoded
		}
		if len(columns) == 0 {
			return event, nil
		}

		if err := e.events.UpdateEvent(ctx, eventID, columns); err != nil {
			return nil, err
		}
		return event, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.AuctionEvent), nil
}

func (e *Engine) loadEvent(ctx context.Context, eventID uuid.UUID) (*models.AuctionEvent, error) {
	event, err := e.events.FindEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auction event not found")
	}
	return event, nil
}

func invalidTransition(action string, current enums.AuctionStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot %s a %s auction", action, current)).
		WithReason(pkgerrors.ReasonInvalidTransition)
}
