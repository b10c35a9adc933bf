package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/haani-backend/pkg/enums"
	"github.com/angelmondragon/haani-backend/pkg/types"
)

// LedgerEvent records an immutable finance lifecycle event tied to a source record.
type LedgerEvent struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type       enums.LedgerEventType  `gorm:"column:type;not null"`
	SourceType enums.PayoutSourceType `gorm:"column:source_type;not null"`
	SourceID   uuid.UUID              `gorm:"column:source_id;type:uuid;not null"`
	RecordID   *uuid.UUID             `gorm:"column:record_id;type:uuid"`
	ActorID    *uuid.UUID             `gorm:"column:actor_id;type:uuid"`
	ActorRole  enums.UserRole         `gorm:"column:actor_role;not null"`
	Amount     decimal.NullDecimal    `gorm:"column:amount;type:numeric(14,2)"`
	Currency   string                 `gorm:"column:currency"`
	Metadata   types.JSONMap          `gorm:"column:metadata;type:jsonb"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
}
