package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferralDiscount is granted to a referred tenant. Once linked to a booking it
// waits for move-in plus the refund window before IsUsed latches.
type ReferralDiscount struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID              uuid.UUID       `gorm:"column:user_id;type:uuid;not null"`
	TenantName          string          `gorm:"column:tenant_name"`
	AdvertiserID        uuid.UUID       `gorm:"column:advertiser_id;type:uuid;not null"`
	BookingID           *uuid.UUID      `gorm:"column:booking_id;type:uuid"`
	IsUsed              bool            `gorm:"column:is_used;not null"`
	UsedAt              *time.Time      `gorm:"column:used_at"`
	BookingAmount       decimal.Decimal `gorm:"column:booking_amount;type:numeric(14,2);not null"`
	BookingPropertyID   *uuid.UUID      `gorm:"column:booking_property_id;type:uuid"`
	BookingPropertyName string          `gorm:"column:booking_property_name"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
}
