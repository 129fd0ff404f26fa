package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/auctionhub/auctionhub-backend/pkg/enums"
)

// Bid is an append-only arbitration record. Superseded bids are relabeled
// outbid, never deleted. The partial unique index ux_bids_winning on
// (event_id, item_id) WHERE is_winning_bid guarantees at most one winning
// bid per item per event regardless of application races.
type Bid struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID      uuid.UUID       `gorm:"column:event_id;type:uuid;not null;index"`
	ItemID       uuid.UUID       `gorm:"column:item_id;type:uuid;not null;index"`
	PartyID      uuid.UUID       `gorm:"column:party_id;type:uuid;not null"`
	ActorID      uuid.UUID       `gorm:"column:actor_id;type:uuid;not null"`
	Amount       int64           `gorm:"column:amount;not null"`
	IsWinningBid bool            `gorm:"column:is_winning_bid;not null;default:false"`
	Status       enums.BidStatus `gorm:"column:status;type:bid_status_enum;not null"`
	BidTime      time.Time       `gorm:"column:bid_time;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}
