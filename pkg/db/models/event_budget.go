package models

import (
	"time"

	"github.com/google/uuid"
)

// EventBudget is one party's balance scoped to one auction event. Remaining
// is always computed from allocated - spent; it is intentionally not a column
// so the two can never drift. spent <= allocated is enforced by the guarded
// debit in the budget repository.
type EventBudget struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PartyID   uuid.UUID `gorm:"column:party_id;type:uuid;not null;uniqueIndex:ux_event_budgets_party_event"`
	EventID   uuid.UUID `gorm:"column:event_id;type:uuid;not null;uniqueIndex:ux_event_budgets_party_event"`
	Allocated int64     `gorm:"column:allocated;not null"`
	Spent     int64     `gorm:"column:spent;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Remaining returns the balance still available for bidding.
func (b *EventBudget) Remaining() int64 {
	return b.Allocated - b.Spent
}
