package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auctionhub/auctionhub-backend/internal/bidding"
	"github.com/auctionhub/auctionhub-backend/internal/broadcast"
	"github.com/auctionhub/auctionhub-backend/internal/rotation"
	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	"github.com/auctionhub/auctionhub-backend/pkg/enums"
	pkgerrors "github.com/auctionhub/auctionhub-backend/pkg/errors"
	"github.com/auctionhub/auctionhub-backend/pkg/outbox"
	"github.com/auctionhub/auctionhub-backend/pkg/outbox/payloads"
)

// StartItem puts an item on the block and arms its countdown.
func (e *Engine) StartItem(ctx context.Context, eventID, itemID, actorID uuid.UUID) (*models.AuctionEvent, error) {
	value, err := e.do(ctx, eventID, "start_item", func(ctx context.Context) (any, error) {
		event, err := e.loadEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if event.Status != enums.AuctionStatusLive {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "items can only be offered while the auction is live").
				WithReason(pkgerrors.ReasonAuctionNotLive)
		}
		if event.CurrentItemID != nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				"another item is already on the block, finalize it first")
		}

		item, err := e.loadEventItem(ctx, event, itemID)
		if err != nil {
			return nil, err
		}
		if item.Status != enums.ItemStatusAvailable {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("item is %s and cannot be offered", item.Status)).
				WithReason(pkgerrors.ReasonInvalidTransition)
		}
		winning, err := e.bids.GetWinning(ctx, eventID, itemID)
		if err != nil {
			return nil, err
		}
		if winning != nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "item already has a winning bid")
		}

		if err := e.offerItem(ctx, event, item); err != nil {
			return nil, err
		}
		return event, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.AuctionEvent), nil
}

// offerItem makes item current and arms a full timer window. Runs on the
// event worker.
func (e *Engine) offerItem(ctx context.Context, event *models.AuctionEvent, item *models.Item) error {
	now := time.Now().UTC()
	if err := e.events.UpdateEvent(ctx, event.ID, map[string]any{
		"current_item_id":         item.ID,
		"current_item_started_at": now,
		"current_category":        item.Category,
	}); err != nil {
		return err
	}
	event.CurrentItemID = &item.ID
	event.CurrentItemStartedAt = &now
	event.CurrentCategory = item.Category

	if err := e.timers.Arm(event.ID, item.ID, event.TimerWindow(), e.onExpire); err != nil {
		return err
	}
	e.metrics.TimerArmed(1)

	e.realtime.Publish(ctx, event.ID, broadcast.MessageCurrentItemChanged, broadcast.CurrentItemChanged{
		ItemID:           item.ID,
		Name:             item.Name,
		Category:         string(item.Category),
		BasePrice:        item.BasePrice,
		CurrentTopAmount: item.BasePrice,
		StartedAt:        now,
		WindowSeconds:    event.TimerWindowSeconds,
	})
	return nil
}

// SubmitBid routes a bid through the event worker, resets the countdown on
// acceptance and broadcasts the new top.
func (e *Engine) SubmitBid(ctx context.Context, eventID, itemID, partyID, actorID uuid.UUID, amount int64) (*bidding.SubmitBidResult, error) {
	value, err := e.do(ctx, eventID, "submit_bid", func(ctx context.Context) (any, error) {
		event, err := e.loadEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		item, err := e.loadEventItem(ctx, event, itemID)
		if err != nil {
			return nil, err
		}

		result, err := e.bidding.SubmitBid(ctx, bidding.SubmitBidInput{
			Event:   event,
			Item:    item,
			PartyID: partyID,
			ActorID: actorID,
			Amount:  amount,
		})
		if err != nil {
			e.metrics.IncBidRejected(eventID.String(), rejectionReason(err))
			return nil, err
		}
		e.metrics.IncBidAccepted(eventID.String())

		// The reset restores the full window; a bid in the final second is
		// worth the same breathing room as the first one. A false return
		// means the countdown already fired and the deadline command is in
		// flight, so the broadcast must not promise a fresh window.
		reset := e.timers.Reset(eventID)
		var remaining int64
		if reset {
			remaining = int64(event.TimerWindowSeconds)
		}

		e.realtime.Publish(ctx, eventID, broadcast.MessageBidAccepted, broadcast.BidAccepted{
			ItemID:           itemID,
			PartyID:          partyID,
			Amount:           amount,
			NextValidAmount:  result.NextValidAmount,
			PreviousWinner:   result.PreviousWinnerParty,
			PreviousAmount:   result.PreviousAmount,
			TimerReset:       reset,
			RemainingSeconds: remaining,
		})
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*bidding.SubmitBidResult), nil
}

// FinalizeSold is the manual close: sell the current item to its winning
// bidder without waiting for the countdown.
func (e *Engine) FinalizeSold(ctx context.Context, eventID, itemID, actorID uuid.UUID) (*models.AuctionEvent, error) {
	value, err := e.do(ctx, eventID, "finalize_sold", func(ctx context.Context) (any, error) {
		event, err := e.loadEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if event.Status != enums.AuctionStatusLive {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "finalize requires a live auction").
				WithReason(pkgerrors.ReasonAuctionNotLive)
		}
		if event.CurrentItemID == nil || *event.CurrentItemID != itemID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "item is not currently on the block").
				WithReason(pkgerrors.ReasonNotCurrentItem)
		}

		winning, err := e.bids.GetWinning(ctx, eventID, itemID)
		if err != nil {
			return nil, err
		}
		if winning == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				"item has no winning bid, mark it unsold instead")
		}

		if e.timers.Cancel(eventID) {
			e.metrics.TimerArmed(-1)
		}
		if err := e.finalizeSale(ctx, event, itemID, winning); err != nil {
			return nil, err
		}
		return event, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.AuctionEvent), nil
}

// FinalizeUnsold is the manual close for an item nobody bid on. Unsold is a
// global item status: the item leaves this auction and every future rotation.
func (e *Engine) FinalizeUnsold(ctx context.Context, eventID, itemID, actorID uuid.UUID) (*models.AuctionEvent, error) {
	value, err := e.do(ctx, eventID, "finalize_unsold", func(ctx context.Context) (any, error) {
		event, err := e.loadEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if event.Status != enums.AuctionStatusLive {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "finalize requires a live auction").
				WithReason(pkgerrors.ReasonAuctionNotLive)
		}
		if event.CurrentItemID == nil || *event.CurrentItemID != itemID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "item is not currently on the block").
				WithReason(pkgerrors.ReasonNotCurrentItem)
		}

		winning, err := e.bids.GetWinning(ctx, eventID, itemID)
		if err != nil {
			return nil, err
		}
		if winning != nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				"item has a winning bid and cannot be marked unsold")
		}

		if e.timers.Cancel(eventID) {
			e.metrics.TimerArmed(-1)
		}

		err = e.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := e.events.WithTx(tx)
			if err := repo.UpdateItemStatus(ctx, itemID, enums.ItemStatusUnsold); err != nil {
				return err
			}
			if err := repo.UpdateEvent(ctx, eventID, map[string]any{
				"current_item_id":         nil,
				"current_item_started_at": nil,
				"items_unsold":            gorm.Expr("items_unsold + 1"),
			}); err != nil {
				return err
			}
			return e.emitter.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.OutboxEventItemUnsold,
				AggregateType: enums.OutboxAggregateItem,
				AggregateID:   itemID,
				Data: payloads.ItemUnsoldEvent{
					EventID: eventID,
					ItemID:  itemID,
				},
			})
		})
		if err != nil {
			return nil, err
		}
		event.CurrentItemID = nil
		event.CurrentItemStartedAt = nil
		event.ItemsUnsold++

		e.realtime.Publish(ctx, eventID, broadcast.MessageItemUnsold, broadcast.ItemUnsold{ItemID: itemID})
		if err := e.afterItemClosed(ctx, event); err != nil {
			return nil, err
		}
		return event, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.AuctionEvent), nil
}

// handleDeadline runs when the countdown fires. It re-reads state before
// acting: the expiry may have raced a pause, cancel or manual finalize, in
// which case it is simply stale and must be ignored.
func (e *Engine) handleDeadline(ctx context.Context, eventID, itemID uuid.UUID) error {
	event, err := e.events.FindEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return nil
	}
	if event.Status != enums.AuctionStatusLive {
		e.logg.Info(ctx, fmt.Sprintf("engine: deadline for item %s ignored, auction is %s", itemID, event.Status))
		return nil
	}
	if event.CurrentItemID == nil || *event.CurrentItemID != itemID {
		e.logg.Info(ctx, fmt.Sprintf("engine: deadline for item %s ignored, item no longer current", itemID))
		return nil
	}

	winning, err := e.bids.GetWinning(ctx, eventID, itemID)
	if err != nil {
		return err
	}

	if winning == nil {
		// No bids before the deadline: the item goes back into the pool and
		// stays eligible for later rotations. Only an operator can declare it
		// unsold for good.
		if err := e.events.UpdateEvent(ctx, eventID, map[string]any{
			"current_item_id":         nil,
			"current_item_started_at": nil,
		}); err != nil {
			return err
		}
		event.CurrentItemID = nil
		event.CurrentItemStartedAt = nil
		e.metrics.IncItemRequeued(eventID.String())
		return e.afterItemClosed(ctx, event)
	}
	return e.finalizeSale(ctx, event, itemID, winning)
}

// finalizeSale commits the sale atomically: debit the buyer, record the sale,
// update event stats and queue the outbox rows. Broadcasts happen after the
// commit. Runs on the event worker.
func (e *Engine) finalizeSale(ctx context.Context, event *models.AuctionEvent, itemID uuid.UUID, winning *models.Bid) error {
	now := time.Now().UTC()
	var remaining int64

	err := e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		updated, err := e.budgets.Debit(ctx, tx, winning.PartyID, event.ID, winning.Amount)
		if err != nil {
			return err
		}
		remaining = updated.Remaining()

		repo := e.events.WithTx(tx)
		if err := repo.CreateSaleRecord(ctx, &models.SaleRecord{
			ID:      uuid.New(),
			EventID: event.ID,
			ItemID:  itemID,
			PartyID: winning.PartyID,
			Amount:  winning.Amount,
			SoldAt:  now,
		}); err != nil {
			return err
		}
		if err := repo.UpdateEvent(ctx, event.ID, map[string]any{
			"current_item_id":         nil,
			"current_item_started_at": nil,
			"items_sold":              gorm.Expr("items_sold + 1"),
			"total_amount_spent":      gorm.Expr("total_amount_spent + ?", winning.Amount),
		}); err != nil {
			return err
		}

		if err := e.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventItemSold,
			AggregateType: enums.OutboxAggregateItem,
			AggregateID:   itemID,
			Data: payloads.ItemSoldEvent{
				EventID:    event.ID,
				ItemID:     itemID,
				BuyerParty: winning.PartyID,
				Amount:     winning.Amount,
				SoldAt:     now,
			},
		}); err != nil {
			return err
		}
		return e.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventBudgetDebited,
			AggregateType: enums.OutboxAggregateBudget,
			AggregateID:   winning.PartyID,
			Data: payloads.BudgetDebitedEvent{
				EventID:   event.ID,
				PartyID:   winning.PartyID,
				Amount:    winning.Amount,
				Remaining: remaining,
			},
		})
	})
	if err != nil {
		return err
	}

	event.CurrentItemID = nil
	event.CurrentItemStartedAt = nil
	event.ItemsSold++
	event.TotalAmountSpent += winning.Amount
	e.metrics.IncItemSold(event.ID.String())

	e.realtime.Publish(ctx, event.ID, broadcast.MessageItemSold, broadcast.ItemSold{
		ItemID:     itemID,
		BuyerParty: winning.PartyID,
		Amount:     winning.Amount,
	})
	e.realtime.Publish(ctx, event.ID, broadcast.MessageBalanceChanged, broadcast.BalanceChanged{
		PartyID:   winning.PartyID,
		Remaining: remaining,
	})

	return e.afterItemClosed(ctx, event)
}

// afterItemClosed runs once the block is clear again: announce what is still
// available, complete the auction if nothing eligible remains, otherwise
// advance in auto mode.
func (e *Engine) afterItemClosed(ctx context.Context, event *models.AuctionEvent) error {
	items, won, err := e.loadPool(ctx, event.ID)
	if err != nil {
		return err
	}

	open := openItemIDs(items, won)
	e.realtime.Publish(ctx, event.ID, broadcast.MessageAvailableItemsChange, broadcast.AvailableItemsChanged{
		ItemIDs: open,
	})

	if len(open) == 0 {
		return e.complete(ctx, event)
	}
	if event.AutoMode {
		e.scheduleAdvance(event.ID, e.cfg.AdvanceDelay)
	}
	return nil
}

// advance offers the next item per the category rotation. Timer and auto-mode
// paths enter here; a stale advance (auction paused, item already on the
// block) is a no-op.
func (e *Engine) advance(ctx context.Context, eventID uuid.UUID) error {
	event, err := e.events.FindEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event == nil || event.Status != enums.AuctionStatusLive || event.CurrentItemID != nil {
		return nil
	}

	items, won, err := e.loadPool(ctx, eventID)
	if err != nil {
		return err
	}
	next, category, ok := rotation.NextItem(items, won, event.CurrentCategory)
	if !ok {
		return e.complete(ctx, event)
	}

	if category != event.CurrentCategory {
		event.CurrentCategory = category
	}
	return e.offerItem(ctx, event, next)
}

// scheduleAdvance queues an advance after delay. The guard re-checks state
// when the command finally runs, so an operator action in between wins.
func (e *Engine) scheduleAdvance(eventID uuid.UUID, delay time.Duration) {
	run := func() {
		e.doAsync(eventID, "advance", func(ctx context.Context) (any, error) {
			return nil, e.advance(ctx, eventID)
		})
	}
	if delay <= 0 {
		run()
		return
	}
	time.AfterFunc(delay, run)
}

// complete closes out the auction and publishes the summary exactly once.
func (e *Engine) complete(ctx context.Context, event *models.AuctionEvent) error {
	if event.Status.IsTerminal() {
		return nil
	}
	summary, err := e.buildSummary(ctx, event)
	if err != nil {
		return err
	}

	now := summary.CompletedAt
	err = e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := e.events.WithTx(tx)
		if err := repo.UpdateEvent(ctx, event.ID, map[string]any{
			"status":                  enums.AuctionStatusCompleted,
			"completed_at":            now,
			"current_item_id":         nil,
			"current_item_started_at": nil,
		}); err != nil {
			return err
		}
		// Idempotent per aggregate: a replayed completion command cannot
		// publish a second summary.
		return e.emitter.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventAuctionCompleted,
			AggregateType: enums.OutboxAggregateAuction,
			AggregateID:   event.ID,
			Data:          summary,
		})
	})
	if err != nil {
		return err
	}

	event.Status = enums.AuctionStatusCompleted
	event.CompletedAt = &now
	event.CurrentItemID = nil
	event.CurrentItemStartedAt = nil

	if e.timers.Cancel(event.ID) {
		e.metrics.TimerArmed(-1)
	}
	e.realtime.Publish(ctx, event.ID, broadcast.MessageAuctionEnded, broadcast.AuctionStatusChanged{
		Status:  string(enums.AuctionStatusCompleted),
		Summary: summary,
	})
	return nil
}

// loadPool fetches the event's items and the set of item ids already won.
func (e *Engine) loadPool(ctx context.Context, eventID uuid.UUID) ([]models.Item, map[uuid.UUID]bool, error) {
	items, err := e.events.ListEventItems(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	winners, err := e.bids.ListWinningByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	won := make(map[uuid.UUID]bool, len(winners))
	for _, bid := range winners {
		won[bid.ItemID] = true
	}
	return items, won, nil
}

func (e *Engine) loadEventItem(ctx context.Context, event *models.AuctionEvent, itemID uuid.UUID) (*models.Item, error) {
	item, err := e.events.FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	if item.EventID == nil || *item.EventID != event.ID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "item is not assigned to this auction")
	}
	return item, nil
}

func openItemIDs(items []models.Item, won map[uuid.UUID]bool) []uuid.UUID {
	var open []uuid.UUID
	for _, item := range items {
		if item.Status != enums.ItemStatusAvailable {
			continue
		}
		if won[item.ID] {
			continue
		}
		open = append(open, item.ID)
	}
	return open
}

func rejectionReason(err error) string {
	if coded := pkgerrors.As(err); coded != nil && coded.Reason() != "" {
		return string(coded.Reason())
	}
	return "error"
}

func encodeTiers(tiers []models.IncrementTier) (json.RawMessage, error) {
	if err := bidding.ValidateTiers(tiers); err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(tiers)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode increment tiers")
	}
	return encoded, nil
}
