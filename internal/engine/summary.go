package engine

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	"github.com/auctionhub/auctionhub-backend/pkg/outbox/payloads"
)

// buildSummary aggregates the completion summary from sale records so it
// reflects committed rows, not in-memory counters.
func (e *Engine) buildSummary(ctx context.Context, event *models.AuctionEvent) (payloads.AuctionCompletedEvent, error) {
	summary := payloads.AuctionCompletedEvent{
		EventID:          event.ID,
		TotalItems:       event.TotalItems,
		ItemsUnsold:      event.ItemsUnsold,
		AverageSalePrice: "0",
		CompletedAt:      time.Now().UTC(),
	}

	sales, err := e.events.ListSaleRecords(ctx, event.ID)
	if err != nil {
		return summary, err
	}

	var totalSpent int64
	var top *models.SaleRecord
	perParty := map[uuid.UUID]*payloads.PartySummary{}
	for i := range sales {
		sale := &sales[i]
		totalSpent += sale.Amount
		if top == nil || sale.Amount > top.Amount {
			top = sale
		}
		party, ok := perParty[sale.PartyID]
		if !ok {
			party = &payloads.PartySummary{PartyID: sale.PartyID}
			perParty[sale.PartyID] = party
		}
		party.ItemsWon++
		party.TotalSpent += sale.Amount
		party.ItemIDs = append(party.ItemIDs, sale.ItemID)
	}

	summary.ItemsSold = len(sales)
	summary.TotalSpent = totalSpent
	if len(sales) > 0 {
		summary.AverageSalePrice = decimal.NewFromInt(totalSpent).
			Div(decimal.NewFromInt(int64(len(sales)))).
			Round(2).String()
	}
	if top != nil {
		summary.MostExpensive = &payloads.ItemSoldEvent{
			EventID:    event.ID,
			ItemID:     top.ItemID,
			BuyerParty: top.PartyID,
			Amount:     top.Amount,
			SoldAt:     top.SoldAt,
		}
	}

	highest, err := e.bids.HighestBid(ctx, event.ID)
	if err != nil {
		return summary, err
	}
	if highest != nil {
		summary.HighestBid = highest.Amount
	}

	for _, party := range perParty {
		summary.Parties = append(summary.Parties, *party)
	}
	sort.Slice(summary.Parties, func(i, j int) bool {
		if summary.Parties[i].TotalSpent != summary.Parties[j].TotalSpent {
			return summary.Parties[i].TotalSpent > summary.Parties[j].TotalSpent
		}
		return summary.Parties[i].PartyID.String() < summary.Parties[j].PartyID.String()
	})
	return summary, nil
}
