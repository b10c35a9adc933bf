package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/haani-backend/pkg/enums"
	"github.com/angelmondragon/haani-backend/pkg/pagination"
	"github.com/angelmondragon/haani-backend/pkg/types"
)

// PayoutRequest is a proposal to pay someone, awaiting admin review.
type PayoutRequest struct {
	ID              uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID                  `gorm:"column:user_id;type:uuid;not null"`
	UserType        enums.UserType             `gorm:"column:user_type;not null"`
	Amount          decimal.Decimal            `gorm:"column:amount;type:numeric(14,2);not null"`
	Currency        string                     `gorm:"column:currency;not null"`
	SourceType      enums.PayoutSourceType     `gorm:"column:source_type;not null"`
	SourceID        uuid.UUID                  `gorm:"column:source_id;type:uuid;not null"`
	Status          enums.PayoutRequestStatus  `gorm:"column:status;not null"`
	PaymentMethod   types.PayoutMethodSnapshot `gorm:"column:payment_method;type:jsonb;not null"`
	Notes           string                     `gorm:"column:notes"`
	ApprovedBy      *uuid.UUID                 `gorm:"column:approved_by;type:uuid"`
	ApprovedAt      *time.Time                 `gorm:"column:approved_at"`
	RejectedBy      *uuid.UUID                 `gorm:"column:rejected_by;type:uuid"`
	RejectedAt      *time.Time                 `gorm:"column:rejected_at"`
	RejectionReason *string                    `gorm:"column:rejection_reason"`
	CreatedAt       time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}

// PageKey implements pagination.Keyed.
func (m PayoutRequest) PageKey() pagination.Cursor {
	return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
}
