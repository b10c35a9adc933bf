package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/haani-backend/pkg/auth"
	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	"github.com/angelmondragon/haani-backend/pkg/types"
)

// Service defines operations that record ledger events.
type Service interface {
	WithTx(tx *gorm.DB) Service
	RecordEvent(ctx context.Context, input RecordLedgerEventInput) (*models.LedgerEvent, error)
	LatestEvent(ctx context.Context, sourceType enums.PayoutSourceType, sourceID uuid.UUID, eventType enums.LedgerEventType) (*models.LedgerEvent, bool, error)
	ListBySource(ctx context.Context, sourceType enums.PayoutSourceType, sourceID uuid.UUID) ([]models.LedgerEvent, error)
}

type service struct {
	repo Repository
}

// RecordLedgerEventInput captures the immutable data a ledger event requires.
type RecordLedgerEventInput struct {
	Type       enums.LedgerEventType
	SourceType enums.PayoutSourceType
	SourceID   uuid.UUID
	// RecordID points at the payout request or payout the event describes.
	RecordID *uuid.UUID
	Actor    auth.Actor
	Amount   *decimal.Decimal
	Currency string
	Metadata map[string]any
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) RecordEvent(ctx context.Context, input RecordLedgerEventInput) (*models.LedgerEvent, error) {
	if input.SourceID == uuid.Nil {
		return nil, fmt.Errorf("source id is required")
	}
	if !input.SourceType.IsValid() {
		return nil, fmt.Errorf("invalid source type %q", input.SourceType)
	}
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("invalid ledger event type %q", input.Type)
	}
	if !input.Actor.Role.IsValid() {
		return nil, fmt.Errorf("invalid actor role %q", input.Actor.Role)
	}

	event := &models.LedgerEvent{
		ID:         uuid.New(),
		Type:       input.Type,
		SourceType: input.SourceType,
		SourceID:   input.SourceID,
		RecordID:   input.RecordID,
		ActorID:    input.Actor.IDPtr(),
		ActorRole:  input.Actor.Role,
		Currency:   input.Currency,
	}
	if input.Amount != nil {
		event.Amount = decimal.NewNullDecimal(*input.Amount)
	}
	if len(input.Metadata) > 0 {
		event.Metadata = types.JSONMap(input.Metadata)
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// LatestEvent returns the newest event of eventType for the source. found is
// false when the source has no such event.
func (s *service) LatestEvent(ctx context.Context, sourceType enums.PayoutSourceType, sourceID uuid.UUID, eventType enums.LedgerEventType) (*models.LedgerEvent, bool, error) {
	if sourceID == uuid.Nil {
		return nil, false, fmt.Errorf("source id is required")
	}
	if !eventType.IsValid() {
		return nil, false, fmt.Errorf("invalid ledger event type %q", eventType)
	}

	event, err := s.repo.FindLatest(ctx, sourceType, sourceID, eventType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return event, true, nil
}

func (s *service) ListBySource(ctx context.Context, sourceType enums.PayoutSourceType, sourceID uuid.UUID) ([]models.LedgerEvent, error) {
	if sourceID == uuid.Nil {
		return nil, fmt.Errorf("source id is required")
	}
	return s.repo.ListBySource(ctx, sourceType, sourceID)
}
