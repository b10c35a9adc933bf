package payouts

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
)

// CreateRequestInput is a payee asking to be paid for a source record.
type CreateRequestInput struct {
	// UserID defaults to the source owner when an admin files on their behalf.
	UserID     uuid.UUID
	Amount     decimal.Decimal
	Currency   string
	SourceType enums.PayoutSourceType
	SourceID   uuid.UUID
	Notes      string
}

// CreateRequestResult carries the request. Duplicate is true when an active
// request for the same source already existed and was returned instead.
type CreateRequestResult struct {
	Request   *models.PayoutRequest `json:"request"`
	Duplicate bool                  `json:"duplicate"`
}

// ApproveResult is the approved request and the payout it produced.
type ApproveResult struct {
	Request *models.PayoutRequest `json:"request"`
	Payout  *models.Payout        `json:"payout"`
}

// ListRequestsParams filters the admin payout request list.
type ListRequestsParams struct {
	Status     *enums.PayoutRequestStatus
	UserID     *uuid.UUID
	SourceType *enums.PayoutSourceType
	Limit      int
	Cursor     string
}

// ListPayoutsParams filters the admin payout list.
type ListPayoutsParams struct {
	Status     *enums.PayoutStatus
	PayeeID    *uuid.UUID
	SourceType *enums.PayoutSourceType
	Limit      int
	Cursor     string
}
