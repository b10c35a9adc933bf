package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/haani-backend/pkg/enums"
	"github.com/angelmondragon/haani-backend/pkg/pagination"
	"github.com/angelmondragon/haani-backend/pkg/types"
)

// Payout is a payment obligation ready for manual disbursement. Amount is net
// of platform fees; GrossAmount and FeeAmount keep the breakdown.
type Payout struct {
	ID              uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PayeeID         uuid.UUID                  `gorm:"column:payee_id;type:uuid;not null"`
	PayeeType       enums.UserType             `gorm:"column:payee_type;not null"`
	Reason          enums.PayoutReason         `gorm:"column:reason;not null"`
	GrossAmount     decimal.Decimal            `gorm:"column:gross_amount;type:numeric(14,2);not null"`
	FeeAmount       decimal.Decimal            `gorm:"column:fee_amount;type:numeric(14,2);not null"`
	Amount          decimal.Decimal            `gorm:"column:amount;type:numeric(14,2);not null"`
	Currency        string                     `gorm:"column:currency;not null"`
	Status          enums.PayoutStatus         `gorm:"column:status;not null"`
	SourceType      enums.PayoutSourceType     `gorm:"column:source_type;not null"`
	SourceID        uuid.UUID                  `gorm:"column:source_id;type:uuid;not null"`
	PayoutRequestID *uuid.UUID                 `gorm:"column:payout_request_id;type:uuid"`
	PaymentMethod   types.PayoutMethodSnapshot `gorm:"column:payment_method;type:jsonb;not null"`
	CreatedBy       *uuid.UUID                 `gorm:"column:created_by;type:uuid"`
	PaidBy          *uuid.UUID                 `gorm:"column:paid_by;type:uuid"`
	PaidAt          *time.Time                 `gorm:"column:paid_at"`
	CreatedAt       time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}

// PageKey implements pagination.Keyed.
func (m Payout) PageKey() pagination.Cursor {
	return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
}
