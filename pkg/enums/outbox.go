package enums

// OutboxEventType identifies the durable domain events published by the engine.
type OutboxEventType string

const (
	OutboxEventItemSold         OutboxEventType = "auction.item_sold"
	OutboxEventItemUnsold       OutboxEventType = "auction.item_unsold"
	OutboxEventBudgetDebited    OutboxEventType = "auction.budget_debited"
	OutboxEventAuctionStarted   OutboxEventType = "auction.started"
	OutboxEventAuctionCompleted OutboxEventType = "auction.completed"
	OutboxEventAuctionCancelled OutboxEventType = "auction.cancelled"
)

// IsValid reports whether the type is a known outbox event type.
func (t OutboxEventType) IsValid() bool {
	switch t {
	case OutboxEventItemSold, OutboxEventItemUnsold, OutboxEventBudgetDebited,
		OutboxEventAuctionStarted, OutboxEventAuctionCompleted, OutboxEventAuctionCancelled:
		return true
	}
	return false
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	OutboxAggregateAuction OutboxAggregateType = "auction_event"
	OutboxAggregateItem    OutboxAggregateType = "item"
	OutboxAggregateBudget  OutboxAggregateType = "event_budget"
)

// OutboxDLQReason classifies why an outbox event was dead-lettered.
type OutboxDLQReason string

const (
	OutboxDLQReasonMaxAttempts OutboxDLQReason = "max_attempts_exceeded"
	OutboxDLQReasonUnroutable  OutboxDLQReason = "unroutable_event_type"
)
