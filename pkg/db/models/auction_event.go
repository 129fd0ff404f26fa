package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/auctionhub/auctionhub-backend/pkg/enums"
)

// AuctionEvent is one scheduled run of the auction over a fixed item and
// party roster. Only the auction engine mutates rows of this table.
type AuctionEvent struct {
	ID     uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name   string              `gorm:"column:name;not null"`
	Status enums.AuctionStatus `gorm:"column:status;type:auction_status_enum;not null;default:'draft'"`

	TimerWindowSeconds int             `gorm:"column:timer_window_seconds;not null;default:20"`
	StartingBudget     int64           `gorm:"column:starting_budget;not null"`
	MaxBidCap          int64           `gorm:"column:max_bid_cap;not null"`
	MaxItemsPerParty   int             `gorm:"column:max_items_per_party;not null;default:0"`
	AutoMode           bool            `gorm:"column:auto_mode;not null;default:true"`
	IncrementTiers     json.RawMessage `gorm:"column:increment_tiers;type:jsonb;not null"`

	// CurrentItemID carries a partial unique index so no two live auctions
	// can offer the same item simultaneously.
	CurrentItemID        *uuid.UUID         `gorm:"column:current_item_id;type:uuid"`
	CurrentItemStartedAt *time.Time         `gorm:"column:current_item_started_at"`
	CurrentCategory      enums.ItemCategory `gorm:"column:current_category;type:item_category_enum;not null;default:'batsman'"`

	ScheduledAt *time.Time `gorm:"column:scheduled_at"`
	StartedAt   *time.Time `gorm:"column:started_at"`
	StartedBy   *uuid.UUID `gorm:"column:started_by;type:uuid"`
	CompletedAt *time.Time `gorm:"column:completed_at"`

	TotalItems       int   `gorm:"column:total_items;not null;default:0"`
	ItemsSold        int   `gorm:"column:items_sold;not null;default:0"`
	ItemsUnsold      int   `gorm:"column:items_unsold;not null;default:0"`
	TotalAmountSpent int64 `gorm:"column:total_amount_spent;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IncrementTier is one band of the tiered bid increment table. Amounts at or
// above From and below To require the given Step over the current top bid.
// A nil To marks the open-ended final band.
type IncrementTier struct {
	From int64  `json:"from"`
	To   *int64 `json:"to,omitempty"`
	Step int64  `json:"step"`
}

// Tiers decodes the configured increment table.
func (e *AuctionEvent) Tiers() ([]IncrementTier, error) {
	var tiers []IncrementTier
	if len(e.IncrementTiers) == 0 {
		return tiers, nil
	}
	if err := json.Unmarshal(e.IncrementTiers, &tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

// TimerWindow returns the per-item bidding window.
func (e *AuctionEvent) TimerWindow() time.Duration {
	return time.Duration(e.TimerWindowSeconds) * time.Second
}
