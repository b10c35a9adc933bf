package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/haani-backend/pkg/enums"
	"github.com/angelmondragon/haani-backend/pkg/pagination"
	"github.com/angelmondragon/haani-backend/pkg/types"
)

// Notification stores in-app notifications addressed to a single user.
type Notification struct {
	ID          uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID uuid.UUID              `gorm:"column:recipient_id;type:uuid;not null"`
	Kind        enums.NotificationKind `gorm:"column:kind;not null"`
	Title       string                 `gorm:"type:text;not null"`
	Message     string                 `gorm:"type:text;not null"`
	Payload     types.JSONMap          `gorm:"column:payload;type:jsonb"`
	ReadAt      *time.Time             `gorm:"type:timestamptz"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}

// PageKey implements pagination.Keyed.
func (m Notification) PageKey() pagination.Cursor {
	return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
}
