package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/auctionhub/auctionhub-backend/pkg/enums"
)

// Item is a thing being auctioned (a player). Status is global and
// event-independent; whether an item sold in a given event is derived from
// the presence of a winning bid, never stored here.
type Item struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID   *uuid.UUID         `gorm:"column:event_id;type:uuid;index"`
	Name      string             `gorm:"column:name;not null"`
	Category  enums.ItemCategory `gorm:"column:category;type:item_category_enum;not null"`
	BasePrice int64              `gorm:"column:base_price;not null"`
	Status    enums.ItemStatus   `gorm:"column:status;type:item_status_enum;not null;default:'available'"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
