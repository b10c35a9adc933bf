package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/haani-backend/pkg/enums"
	"github.com/angelmondragon/haani-backend/pkg/types"
)

// Booking is a tenancy agreement between a tenant and a property. Finance only
// ever writes the safety-window and payout latch columns.
type Booking struct {
	ID                   uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Status               enums.BookingStatus `gorm:"column:status;type:booking_status;not null"`
	TenantID             uuid.UUID           `gorm:"column:tenant_id;type:uuid;not null"`
	PropertyID           uuid.UUID           `gorm:"column:property_id;type:uuid;not null"`
	AdvertiserID         *uuid.UUID          `gorm:"column:advertiser_id;type:uuid"`
	TotalPrice           decimal.Decimal     `gorm:"column:total_price;type:numeric(14,2);not null"`
	PremiumFee           decimal.Decimal     `gorm:"column:premium_fee;type:numeric(14,2);not null"`
	Currency             string              `gorm:"column:currency;not null"`
	MoveInDate           types.RawTimestamp  `gorm:"column:move_in_date;type:jsonb"`
	MovedInAt            types.RawTimestamp  `gorm:"column:moved_in_at;type:jsonb"`
	SafetyWindowClosed   bool                `gorm:"column:safety_window_closed;not null"`
	SafetyWindowClosedAt *time.Time          `gorm:"column:safety_window_closed_at"`
	PayoutCreated        bool                `gorm:"column:payout_created;not null"`
	PayoutCreatedAt      *time.Time          `gorm:"column:payout_created_at"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// SafetyAnchor is the instant the rent safety window counts from: the recorded
// move-in, or the planned move-in date when no move-in was recorded.
func (b *Booking) SafetyAnchor() types.RawTimestamp {
	if !b.MovedInAt.IsZero() {
		return b.MovedInAt
	}
	return b.MoveInDate
}
