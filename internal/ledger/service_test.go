package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/haani-backend/pkg/auth"
	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
)

type fakeRepository struct {
	createFn func(ctx context.Context, event *models.LedgerEvent) error
	events   []models.LedgerEvent
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, event *models.LedgerEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeRepository) FindLatest(ctx context.Context, sourceType enums.PayoutSourceType, sourceID uuid.UUID, eventType enums.LedgerEventType) (*models.LedgerEvent, error) {
	for i := len(f.events) - 1; i >= 0; i-- {
		event := f.events[i]
		if event.SourceType == sourceType && event.SourceID == sourceID && event.Type == eventType {
			return &event, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ListBySource(ctx context.Context, sourceType enums.PayoutSourceType, sourceID uuid.UUID) ([]models.LedgerEvent, error) {
	var out []models.LedgerEvent
	for _, event := range f.events {
		if event.SourceType == sourceType && event.SourceID == sourceID {
			out = append(out, event)
		}
	}
	return out, nil
}

func TestService_RecordEvent(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	admin := auth.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	amount := decimal.RequireFromString("4500.00")
	recordID := uuid.New()
	input := RecordLedgerEventInput{
		Type:       enums.LedgerEventPayoutCreated,
		SourceType: enums.PayoutSourceRent,
		SourceID:   uuid.New(),
		RecordID:   &recordID,
		Actor:      admin,
		Amount:     &amount,
		Currency:   "EGP",
		Metadata:   map[string]any{"reason": "Rent – Move-in"},
	}

	var created *models.LedgerEvent
	repo.createFn = func(ctx context.Context, event *models.LedgerEvent) error {
		created = event
		return nil
	}

	got, err := svc.RecordEvent(context.Background(), input)
	if err != nil {
		t.Fatalf("RecordEvent error: %v", err)
	}
	if created == nil || got != created {
		t.Fatal("expected the created ledger event to be returned")
	}
	if created.SourceID != input.SourceID || created.Type != input.Type || !created.Amount.Valid || !created.Amount.Decimal.Equal(amount) {
		t.Fatalf("unexpected ledger event data: %+v", created)
	}
	if created.ActorID == nil || *created.ActorID != admin.UserID || created.ActorRole != enums.UserRoleAdmin {
		t.Fatalf("actor not recorded: %+v", created)
	}
	if created.Metadata["reason"] != "Rent – Move-in" {
		t.Fatalf("metadata mismatch: %v", created.Metadata)
	}
}

func TestService_RecordEventSystemActorHasNoID(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo)

	event, err := svc.RecordEvent(context.Background(), RecordLedgerEventInput{
		Type:       enums.LedgerEventReferralDiscountFinalized,
		SourceType: enums.PayoutSourceReferral,
		SourceID:   uuid.New(),
		Actor:      auth.SystemActor(),
	})
	if err != nil {
		t.Fatalf("RecordEvent error: %v", err)
	}
	if event.ActorID != nil || event.ActorRole != enums.UserRoleSystem {
		t.Fatalf("unexpected actor fields %+v", event)
	}
	if event.Amount.Valid {
		t.Fatal("amount should be null when not provided")
	}
}

func TestService_RecordEventValidation(t *testing.T) {
	svc, _ := NewService(&fakeRepository{})
	valid := RecordLedgerEventInput{
		Type:       enums.LedgerEventPayoutPaid,
		SourceType: enums.PayoutSourceRent,
		SourceID:   uuid.New(),
		Actor:      auth.SystemActor(),
	}

	cases := map[string]func(*RecordLedgerEventInput){
		"missing source":  func(in *RecordLedgerEventInput) { in.SourceID = uuid.Nil },
		"bad source type": func(in *RecordLedgerEventInput) { in.SourceType = "invoice" },
		"bad event type":  func(in *RecordLedgerEventInput) { in.Type = "payout_voided" },
		"missing actor":   func(in *RecordLedgerEventInput) { in.Actor = auth.Actor{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := valid
			mutate(&input)
			if _, err := svc.RecordEvent(context.Background(), input); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestService_RecordEventPropagatesRepoError(t *testing.T) {
	repo := &fakeRepository{createFn: func(ctx context.Context, event *models.LedgerEvent) error {
		return errors.New("insert failed")
	}}
	svc, _ := NewService(repo)

	_, err := svc.RecordEvent(context.Background(), RecordLedgerEventInput{
		Type:       enums.LedgerEventPayoutPaid,
		SourceType: enums.PayoutSourceRent,
		SourceID:   uuid.New(),
		Actor:      auth.SystemActor(),
	})
	if err == nil {
		t.Fatal("expected repository error")
	}
}

func TestService_LatestEvent(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo)
	sourceID := uuid.New()

	for _, amount := range []string{"10.00", "12.50"} {
		value := decimal.RequireFromString(amount)
		if _, err := svc.RecordEvent(context.Background(), RecordLedgerEventInput{
			Type:       enums.LedgerEventPayoutCreated,
			SourceType: enums.PayoutSourceRent,
			SourceID:   sourceID,
			Actor:      auth.SystemActor(),
			Amount:     &value,
		}); err != nil {
			t.Fatalf("RecordEvent error: %v", err)
		}
	}

	event, found, err := svc.LatestEvent(context.Background(), enums.PayoutSourceRent, sourceID, enums.LedgerEventPayoutCreated)
	if err != nil || !found {
		t.Fatalf("expected payout_created event, got %v, %v", found, err)
	}
	if !event.Amount.Decimal.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("expected newest amount 12.50, got %s", event.Amount.Decimal)
	}
	_, found, err = svc.LatestEvent(context.Background(), enums.PayoutSourceRent, sourceID, enums.LedgerEventPayoutPaid)
	if err != nil || found {
		t.Fatalf("did not expect payout_paid event, got %v, %v", found, err)
	}
	if _, _, err := svc.LatestEvent(context.Background(), enums.PayoutSourceRent, uuid.Nil, enums.LedgerEventPayoutPaid); err == nil {
		t.Fatal("expected source id validation error")
	}
}
