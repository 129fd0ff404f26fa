package payloads

import (
	"time"

	"github.com/google/uuid"
)

// ItemSoldEvent is emitted when an item is finalized as sold.
type ItemSoldEvent struct {
	EventID    uuid.UUID `json:"eventId"`
	ItemID     uuid.UUID `json:"itemId"`
	BuyerParty uuid.UUID `json:"buyerPartyId"`
	Amount     int64     `json:"amount"`
	SoldAt     time.Time `json:"soldAt"`
}

// ItemUnsoldEvent is emitted when an operator marks an item unsold.
type ItemUnsoldEvent struct {
	EventID uuid.UUID `json:"eventId"`
	ItemID  uuid.UUID `json:"itemId"`
}

// BudgetDebitedEvent is emitted when a sale debits a party's event budget.
type BudgetDebitedEvent struct {
	EventID   uuid.UUID `json:"eventId"`
	PartyID   uuid.UUID `json:"partyId"`
	Amount    int64     `json:"amount"`
	Remaining int64     `json:"remaining"`
}

// AuctionStartedEvent is emitted when an auction goes live.
type AuctionStartedEvent struct {
	EventID   uuid.UUID `json:"eventId"`
	StartedBy uuid.UUID `json:"startedBy"`
	StartedAt time.Time `json:"startedAt"`
}

// PartySummary is the per-party breakdown in the completion summary.
type PartySummary struct {
	PartyID    uuid.UUID   `json:"partyId"`
	ItemsWon   int         `json:"itemsWon"`
	TotalSpent int64       `json:"totalSpent"`
	ItemIDs    []uuid.UUID `json:"itemIds"`
}

// AuctionCompletedEvent carries the aggregated summary published exactly once
// when every item in the event has a winning bid.
type AuctionCompletedEvent struct {
	EventID          uuid.UUID      `json:"eventId"`
	TotalItems       int            `json:"totalItems"`
	ItemsSold        int            `json:"itemsSold"`
	ItemsUnsold      int            `json:"itemsUnsold"`
	TotalSpent       int64          `json:"totalSpent"`
	AverageSalePrice string         `json:"averageSalePrice"`
	HighestBid       int64          `json:"highestBid"`
	MostExpensive    *ItemSoldEvent `json:"mostExpensiveSale,omitempty"`
	Parties          []PartySummary `json:"parties"`
	CompletedAt      time.Time      `json:"completedAt"`
}

// AuctionCancelledEvent is emitted when an operator cancels an auction.
type AuctionCancelledEvent struct {
	EventID     uuid.UUID `json:"eventId"`
	CancelledAt time.Time `json:"cancelledAt"`
}
