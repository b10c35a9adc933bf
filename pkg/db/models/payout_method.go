package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/haani-backend/pkg/enums"
)

// PayoutMethod is the live disbursement destination a user maintains.
type PayoutMethod struct {
	ID            uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Type          enums.PayoutMethodType `gorm:"column:type;not null"`
	AccountHolder string                 `gorm:"column:account_holder;not null"`
	Institution   string                 `gorm:"column:institution"`
	AccountNumber string                 `gorm:"column:account_number;not null"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
