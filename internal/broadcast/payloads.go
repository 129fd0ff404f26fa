package broadcast

import (
	"time"

	"github.com/google/uuid"
)

// MessageType names a realtime message on an event channel.
type MessageType string

const (
	MessageBidAccepted          MessageType = "bid.accepted"
	MessageItemSold             MessageType = "item.sold"
	MessageItemUnsold           MessageType = "item.unsold"
	MessageCurrentItemChanged   MessageType = "item.current_changed"
	MessageBalanceChanged       MessageType = "budget.balance_changed"
	MessageAvailableItemsChange MessageType = "items.available_changed"
	MessageAuctionStarted       MessageType = "auction.started"
	MessageAuctionPaused        MessageType = "auction.paused"
	MessageAuctionResumed       MessageType = "auction.resumed"
	MessageAuctionEnded         MessageType = "auction.ended"
	MessageAuctionCancelled     MessageType = "auction.cancelled"
)

// Message is the channel envelope. Data holds one of the payload types below.
type Message struct {
	Type       MessageType `json:"type"`
	EventID    uuid.UUID   `json:"event_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       any         `json:"data"`
}

// BidAccepted announces a new top bid.
type BidAccepted struct {
	ItemID           uuid.UUID  `json:"item_id"`
	PartyID          uuid.UUID  `json:"party_id"`
	Amount           int64      `json:"amount"`
	NextValidAmount  *int64     `json:"next_valid_amount,omitempty"`
	PreviousWinner   *uuid.UUID `json:"previous_winner,omitempty"`
	PreviousAmount   *int64     `json:"previous_amount,omitempty"`
	TimerReset       bool       `json:"timer_reset"`
	RemainingSeconds int64      `json:"remaining_seconds"`
}

// ItemSold announces a finalized sale.
type ItemSold struct {
	ItemID     uuid.UUID `json:"item_id"`
	BuyerParty uuid.UUID `json:"buyer_party"`
	Amount     int64     `json:"amount"`
}

// ItemUnsold announces an operator-confirmed unsold item.
type ItemUnsold struct {
	ItemID uuid.UUID `json:"item_id"`
}

// CurrentItemChanged announces the item now on the block.
type CurrentItemChanged struct {
	ItemID           uuid.UUID `json:"item_id"`
	Name             string    `json:"name"`
	Category         string    `json:"category"`
	BasePrice        int64     `json:"base_price"`
	CurrentTopAmount int64     `json:"current_top_amount"`
	StartedAt        time.Time `json:"started_at"`
	WindowSeconds    int       `json:"window_seconds"`
}

// BalanceChanged announces a party's updated remaining budget.
type BalanceChanged struct {
	PartyID   uuid.UUID `json:"party_id"`
	Remaining int64     `json:"remaining"`
}

// AvailableItemsChanged carries the ids still open for bidding.
type AvailableItemsChanged struct {
	ItemIDs []uuid.UUID `json:"item_ids"`
}

// AuctionStatusChanged carries lifecycle updates; Summary is set on ended.
type AuctionStatusChanged struct {
	Status  string `json:"status"`
	Summary any    `json:"summary,omitempty"`
}
