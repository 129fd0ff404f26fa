package models

import (
	"time"

	"github.com/google/uuid"
)

// SaleRecord is the event-scoped audit row written when an item is finalized
// as sold.
type SaleRecord struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID   uuid.UUID `gorm:"column:event_id;type:uuid;not null;uniqueIndex:ux_sale_records_event_item"`
	ItemID    uuid.UUID `gorm:"column:item_id;type:uuid;not null;uniqueIndex:ux_sale_records_event_item"`
	PartyID   uuid.UUID `gorm:"column:party_id;type:uuid;not null"`
	Amount    int64     `gorm:"column:amount;not null"`
	SoldAt    time.Time `gorm:"column:sold_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
