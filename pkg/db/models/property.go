package models

import (
	"time"

	"github.com/google/uuid"
)

// Property is the listing a booking points at. Only the owner link and name are
// read by finance.
type Property struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID   *uuid.UUID `gorm:"column:owner_id;type:uuid"`
	Name      string     `gorm:"column:name;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
