package payouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/haani-backend/internal/ledger"
	"github.com/angelmondragon/haani-backend/pkg/auth"
	"github.com/angelmondragon/haani-backend/pkg/db"
	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
	"github.com/angelmondragon/haani-backend/pkg/types"
)

// NewPayoutInput describes a payout about to be materialized.
type NewPayoutInput struct {
	PayeeID         uuid.UUID
	PayeeType       enums.UserType
	SourceType      enums.PayoutSourceType
	SourceID        uuid.UUID
	Fees            FeeBreakdown
	Currency        string
	PaymentMethod   types.PayoutMethodSnapshot
	PayoutRequestID *uuid.UUID
	Actor           auth.Actor
	Metadata        map[string]any
}

func (in NewPayoutInput) validate() error {
	if in.PayeeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payee id required")
	}
	if !in.PayeeType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payee type %q", in.PayeeType))
	}
	if !in.SourceType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid source type %q", in.SourceType))
	}
	if in.SourceID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "source id required")
	}
	if in.PaymentMethod.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method snapshot required")
	}
	if in.Fees.Net.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payout amount cannot be negative")
	}
	return nil
}

// Writer creates payouts. It is shared by request approval and the rent
// finalizer so both go through the same claim.
type Writer struct {
	repo   Repository
	guard  ledger.Claimer
	ledger ledger.Service
	now    func() time.Time
}

// NewWriter wires a payout writer.
func NewWriter(repo Repository, guard ledger.Claimer, ledgerSvc ledger.Service) (*Writer, error) {
	if repo == nil {
		return nil, fmt.Errorf("payouts repository required")
	}
	if guard == nil {
		return nil, fmt.Errorf("claim guard required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &Writer{repo: repo, guard: guard, ledger: ledgerSvc, now: time.Now}, nil
}

// Create claims (payout, source) and inserts the payout inside tx. When the
// claim is already held, the existing payout is returned with created=false.
func (w *Writer) Create(ctx context.Context, tx *gorm.DB, input NewPayoutInput) (*models.Payout, bool, error) {
	if err := input.validate(); err != nil {
		return nil, false, err
	}

	repo := w.repo.WithTx(tx)
	now := w.now().UTC()
	payout := &models.Payout{
		ID:              uuid.New(),
		PayeeID:         input.PayeeID,
		PayeeType:       input.PayeeType,
		Reason:          input.SourceType.Reason(),
		GrossAmount:     input.Fees.Gross,
		FeeAmount:       input.Fees.Fees(),
		Amount:          input.Fees.Net,
		Currency:        input.Currency,
		Status:          enums.PayoutStatusPending,
		SourceType:      input.SourceType,
		SourceID:        input.SourceID,
		PayoutRequestID: input.PayoutRequestID,
		PaymentMethod:   input.PaymentMethod,
		CreatedBy:       input.Actor.IDPtr(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	key := ledger.ClaimKey{Scope: ledger.ScopePayout, SourceType: input.SourceType, SourceID: input.SourceID}
	claim, err := w.guard.WithTx(tx).TryClaim(ctx, key, payout.ID)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim payout source")
	}
	if claim == ledger.AlreadyClaimed {
		existing, err := repo.FindPayoutBySource(ctx, input.SourceType, input.SourceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, pkgerrors.New(pkgerrors.CodeConflict, "payout source claimed without a payout")
			}
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load existing payout")
		}
		return existing, false, nil
	}

	if err := repo.CreatePayout(ctx, payout); err != nil {
		if db.IsUniqueViolation(err, "payouts_source_key") {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "payout already exists for source")
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert payout")
	}

	amount := payout.Amount
	metadata := map[string]any{
		"payee_id":     payout.PayeeID.String(),
		"reason":       string(payout.Reason),
		"gross_amount": payout.GrossAmount.StringFixed(2),
		"fee_amount":   payout.FeeAmount.StringFixed(2),
	}
	for k, v := range input.Metadata {
		metadata[k] = v
	}
	if _, err := w.ledger.WithTx(tx).RecordEvent(ctx, ledger.RecordLedgerEventInput{
		Type:       enums.LedgerEventPayoutCreated,
		SourceType: payout.SourceType,
		SourceID:   payout.SourceID,
		RecordID:   &payout.ID,
		Actor:      input.Actor,
		Amount:     &amount,
		Currency:   payout.Currency,
		Metadata:   metadata,
	}); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payout event")
	}
	return payout, true, nil
}
