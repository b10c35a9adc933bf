package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/haani-backend/pkg/enums"
)

// LedgerClaim reserves (scope, source) for a single record. The composite
// primary key is what makes concurrent claims race-free.
type LedgerClaim struct {
	Scope      string                 `gorm:"column:scope;primaryKey"`
	SourceType enums.PayoutSourceType `gorm:"column:source_type;primaryKey"`
	SourceID   uuid.UUID              `gorm:"column:source_id;type:uuid;primaryKey"`
	ClaimedBy  uuid.UUID              `gorm:"column:claimed_by;type:uuid;not null"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
}
