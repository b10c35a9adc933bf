package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/haani-backend/pkg/types"
)

// Referral holds a referrer's aggregate stats, keyed by advertiser id.
type Referral struct {
	AdvertiserID       uuid.UUID             `gorm:"column:advertiser_id;type:uuid;primaryKey"`
	BonusRate          string                `gorm:"column:bonus_rate;not null"`
	SuccessfulBookings int                   `gorm:"column:successful_bookings;not null"`
	MonthlyEarnings    decimal.Decimal       `gorm:"column:monthly_earnings;type:numeric(14,2);not null"`
	AnnualEarnings     decimal.Decimal       `gorm:"column:annual_earnings;type:numeric(14,2);not null"`
	ReferralHistory    types.ReferralHistory `gorm:"column:referral_history;type:jsonb;not null"`
	CreatedAt          time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
