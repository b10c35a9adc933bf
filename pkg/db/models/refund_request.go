package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RefundRequest is read to enrich tenant refund notifications.
type RefundRequest struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID    uuid.UUID       `gorm:"column:booking_id;type:uuid;not null"`
	TenantID     uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null"`
	PropertyName string          `gorm:"column:property_name"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}
