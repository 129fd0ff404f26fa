package models

import (
	"time"

	"github.com/google/uuid"
)

// Party is a bidding entity (a team). Party management is owned by an
// external service; the engine only references rows by id.
type Party struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	ShortName string    `gorm:"column:short_name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
