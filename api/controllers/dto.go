package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	"github.com/angelmondragon/haani-backend/pkg/pagination"
	"github.com/angelmondragon/haani-backend/pkg/types"
)

type payoutRequestDTO struct {
	ID              uuid.UUID                  `json:"id"`
	UserID          uuid.UUID                  `json:"userId"`
	UserType        enums.UserType             `json:"userType"`
	Amount          decimal.Decimal            `json:"amount"`
	Currency        string                     `json:"currency"`
	SourceType      enums.PayoutSourceType     `json:"sourceType"`
	SourceID        uuid.UUID                  `json:"sourceId"`
	Status          enums.PayoutRequestStatus  `json:"status"`
	PaymentMethod   types.PayoutMethodSnapshot `json:"paymentMethod"`
	Notes           string                     `json:"notes,omitempty"`
	ApprovedBy      *uuid.UUID                 `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time                 `json:"approvedAt,omitempty"`
	RejectedBy      *uuid.UUID                 `json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time                 `json:"rejectedAt,omitempty"`
	RejectionReason *string                    `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time                  `json:"createdAt"`
	UpdatedAt       time.Time                  `json:"updatedAt"`
}

func toPayoutRequestDTO(m *models.PayoutRequest) *payoutRequestDTO {
	if m == nil {
		return nil
	}
	return &payoutRequestDTO{
		ID:              m.ID,
		UserID:          m.UserID,
		UserType:        m.UserType,
		Amount:          m.Amount,
		Currency:        m.Currency,
		SourceType:      m.SourceType,
		SourceID:        m.SourceID,
		Status:          m.Status,
		PaymentMethod:   m.PaymentMethod,
		Notes:           m.Notes,
		ApprovedBy:      m.ApprovedBy,
		ApprovedAt:      m.ApprovedAt,
		RejectedBy:      m.RejectedBy,
		RejectedAt:      m.RejectedAt,
		RejectionReason: m.RejectionReason,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// masked hides the account number; payees see their own request this way.
func (d *payoutRequestDTO) masked() *payoutRequestDTO {
	if d == nil {
		return nil
	}
	d.PaymentMethod.AccountNumber = d.PaymentMethod.Masked()
	return d
}

type payoutDTO struct {
	ID              uuid.UUID                  `json:"id"`
	PayeeID         uuid.UUID                  `json:"payeeId"`
	PayeeType       enums.UserType             `json:"payeeType"`
	Reason          enums.PayoutReason         `json:"reason"`
	GrossAmount     decimal.Decimal            `json:"grossAmount"`
	FeeAmount       decimal.Decimal            `json:"feeAmount"`
	Amount          decimal.Decimal            `json:"amount"`
	Currency        string                     `json:"currency"`
	Status          enums.PayoutStatus         `json:"status"`
	SourceType      enums.PayoutSourceType     `json:"sourceType"`
	SourceID        uuid.UUID                  `json:"sourceId"`
	PayoutRequestID *uuid.UUID                 `json:"payoutRequestId,omitempty"`
	PaymentMethod   types.PayoutMethodSnapshot `json:"paymentMethod"`
	CreatedBy       *uuid.UUID                 `json:"createdBy,omitempty"`
	PaidBy          *uuid.UUID                 `json:"paidBy,omitempty"`
	PaidAt          *time.Time                 `json:"paidAt,omitempty"`
	CreatedAt       time.Time                  `json:"createdAt"`
}

func toPayoutDTO(m *models.Payout) *payoutDTO {
	if m == nil {
		return nil
	}
	return &payoutDTO{
		ID:              m.ID,
		PayeeID:         m.PayeeID,
		PayeeType:       m.PayeeType,
		Reason:          m.Reason,
		GrossAmount:     m.GrossAmount,
		FeeAmount:       m.FeeAmount,
		Amount:          m.Amount,
		Currency:        m.Currency,
		Status:          m.Status,
		SourceType:      m.SourceType,
		SourceID:        m.SourceID,
		PayoutRequestID: m.PayoutRequestID,
		PaymentMethod:   m.PaymentMethod,
		CreatedBy:       m.CreatedBy,
		PaidBy:          m.PaidBy,
		PaidAt:          m.PaidAt,
		CreatedAt:       m.CreatedAt,
	}
}

type ledgerEventDTO struct {
	ID         uuid.UUID              `json:"id"`
	Type       enums.LedgerEventType  `json:"type"`
	SourceType enums.PayoutSourceType `json:"sourceType"`
	SourceID   uuid.UUID              `json:"sourceId"`
	RecordID   *uuid.UUID             `json:"recordId,omitempty"`
	ActorID    *uuid.UUID             `json:"actorId,omitempty"`
	ActorRole  enums.UserRole         `json:"actorRole"`
	Amount     decimal.NullDecimal    `json:"amount"`
	Currency   string                 `json:"currency,omitempty"`
	Metadata   types.JSONMap          `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}

func toLedgerEventDTO(m *models.LedgerEvent) *ledgerEventDTO {
	return &ledgerEventDTO{
		ID:         m.ID,
		Type:       m.Type,
		SourceType: m.SourceType,
		SourceID:   m.SourceID,
		RecordID:   m.RecordID,
		ActorID:    m.ActorID,
		ActorRole:  m.ActorRole,
		Amount:     m.Amount,
		Currency:   m.Currency,
		Metadata:   m.Metadata,
		CreatedAt:  m.CreatedAt,
	}
}

type notificationDTO struct {
	ID        uuid.UUID              `json:"id"`
	Kind      enums.NotificationKind `json:"kind"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Payload   types.JSONMap          `json:"payload,omitempty"`
	ReadAt    *time.Time             `json:"readAt,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

func toNotificationDTO(m *models.Notification) *notificationDTO {
	return &notificationDTO{
		ID:        m.ID,
		Kind:      m.Kind,
		Title:     m.Title,
		Message:   m.Message,
		Payload:   m.Payload,
		ReadAt:    m.ReadAt,
		CreatedAt: m.CreatedAt,
	}
}

func mapPage[T, D any](page *pagination.Page[T], convert func(*T) D) pagination.Page[D] {
	out := pagination.Page[D]{Items: []D{}}
	if page == nil {
		return out
	}
	out.NextCursor = page.NextCursor
	for i := range page.Items {
		out.Items = append(out.Items, convert(&page.Items[i]))
	}
	return out
}
