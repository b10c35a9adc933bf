package referrals

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/haani-backend/internal/ledger"
	"github.com/angelmondragon/haani-backend/internal/notifications"
	"github.com/angelmondragon/haani-backend/internal/window"
	"github.com/angelmondragon/haani-backend/pkg/auth"
	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
	"github.com/angelmondragon/haani-backend/pkg/logger"
	"github.com/angelmondragon/haani-backend/pkg/metrics"
	"github.com/angelmondragon/haani-backend/pkg/types"
	"github.com/angelmondragon/haani-backend/pkg/workerpool"
)

// JobName labels logs and metrics for the discount finalizer.
const JobName = "referral-discount-finalizer"

// SkipReason says why a discount was left untouched this run.
type SkipReason string

const (
	SkipBookingNotFound   SkipReason = "booking_not_found"
	SkipBookingNotMovedIn SkipReason = "booking_not_moved_in"
	SkipMissingMovedInAt  SkipReason = "missing_moved_in_at"
	SkipInvalidMovedInAt  SkipReason = "invalid_moved_in_at"
	SkipRefundWindowOpen  SkipReason = "refund_window_open"
	SkipAlreadyFinalized  SkipReason = "already_finalized"
)

// BatchResult summarizes one FinalizeReferralDiscounts run.
type BatchResult struct {
	Total       int                `json:"total"`
	Finalized   int                `json:"finalized"`
	Failed      int                `json:"failed"`
	Skipped     int                `json:"skipped"`
	SkipReasons map[SkipReason]int `json:"skip_reasons,omitempty"`
}

type itemOutcome struct {
	finalized bool
	skip      SkipReason
	earned    decimal.Decimal
}

var errAlreadyFinalized = stdErrors.New("referral discount already finalized")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// BookingReader is implemented by the bookings repository.
type BookingReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

// FinalizerParams wires a Finalizer.
type FinalizerParams struct {
	Repo         Repository
	Bookings     BookingReader
	Tx           txRunner
	Ledger       ledger.Service
	Notifier     notifications.Notifier
	Metrics      *metrics.FinalizerMetrics
	Logger       *logger.Logger
	RefundWindow time.Duration
	Pool         workerpool.Options
	BatchLimit   int
}

// Finalizer latches referral discounts once the referred tenant has moved in
// and the refund window has passed, crediting the referrer exactly once.
type Finalizer struct {
	repo         Repository
	bookings     BookingReader
	tx           txRunner
	ledger       ledger.Service
	notifier     notifications.Notifier
	metrics      *metrics.FinalizerMetrics
	logg         *logger.Logger
	refundWindow time.Duration
	pool         workerpool.Options
	batchLimit   int
	now          func() time.Time
}

// NewFinalizer validates dependencies.
func NewFinalizer(params FinalizerParams) (*Finalizer, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("referrals repository required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("booking reader required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.RefundWindow <= 0 {
		return nil, fmt.Errorf("refund window must be positive")
	}
	notifier := params.Notifier
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	return &Finalizer{
		repo:         params.Repo,
		bookings:     params.Bookings,
		tx:           params.Tx,
		ledger:       params.Ledger,
		notifier:     notifier,
		metrics:      params.Metrics,
		logg:         params.Logger,
		refundWindow: params.RefundWindow,
		pool:         params.Pool,
		batchLimit:   params.BatchLimit,
		now:          time.Now,
	}, nil
}

// SetClock overrides the time source.
func (f *Finalizer) SetClock(now func() time.Time) {
	if now != nil {
		f.now = now
	}
}

// FinalizeReferralDiscounts evaluates every linked, unused discount. Items are
// independent: one failure is counted and logged, never fatal to the batch.
// The returned error is non-nil only when the candidate query itself fails.
func (f *Finalizer) FinalizeReferralDiscounts(ctx context.Context) (BatchResult, error) {
	ctx = f.logg.WithJob(ctx, JobName)
	result := BatchResult{SkipReasons: map[SkipReason]int{}}

	discounts, err := f.repo.ListPendingDiscounts(ctx, f.batchLimit)
	if err != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending referral discounts")
	}
	result.Total = len(discounts)
	f.logg.Info(ctx, fmt.Sprintf("referral discount finalization started: %d candidates", result.Total))

	var mu sync.Mutex
	_ = workerpool.Run(ctx, discounts, f.pool, func(ctx context.Context, discount models.ReferralDiscount) error {
		itemCtx := f.logg.WithFields(ctx, map[string]any{
			"discount_id":   discount.ID.String(),
			"advertiser_id": discount.AdvertiserID.String(),
		})
		outcome, err := f.finalize(itemCtx, discount)

		mu.Lock()
		defer mu.Unlock()
		switch {
		case err != nil:
			result.Failed++
			f.metrics.IncItem(JobName, metrics.OutcomeFailed)
			f.logg.Error(itemCtx, "referral discount finalization failed", err)
		case outcome.finalized:
			result.Finalized++
			f.metrics.IncItem(JobName, metrics.OutcomeFinalized)
		default:
			result.Skipped++
			result.SkipReasons[outcome.skip]++
			f.metrics.IncItem(JobName, metrics.OutcomeSkipped)
		}
		return err
	})

	f.logg.Info(f.logg.WithFields(ctx, map[string]any{
		"total":     result.Total,
		"finalized": result.Finalized,
		"failed":    result.Failed,
		"skipped":   result.Skipped,
	}), "referral discount finalization completed")
	return result, nil
}

func (f *Finalizer) finalize(ctx context.Context, discount models.ReferralDiscount) (itemOutcome, error) {
	if discount.BookingID == nil {
		return f.skip(ctx, SkipBookingNotFound, nil), nil
	}

	booking, err := f.bookings.FindByID(ctx, *discount.BookingID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return f.skip(ctx, SkipBookingNotFound, nil), nil
		}
		return itemOutcome{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	ctx = f.logg.WithBookingID(ctx, booking.ID.String())

	if booking.Status != enums.BookingStatusMovedIn {
		return f.skip(ctx, SkipBookingNotMovedIn, nil), nil
	}

	now := f.now().UTC()
	elapsed, err := window.HasWindowElapsed(booking.MovedInAt, f.refundWindow, now)
	switch {
	case stdErrors.Is(err, window.ErrMissingAnchor):
		return f.skip(ctx, SkipMissingMovedInAt, nil), nil
	case err != nil:
		return f.skip(ctx, SkipInvalidMovedInAt, err), nil
	case !elapsed:
		return f.skip(ctx, SkipRefundWindowOpen, nil), nil
	}

	var outcome itemOutcome
	err = f.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := f.repo.WithTx(tx)

		ok, err := repo.MarkDiscountUsed(ctx, discount.ID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark discount used")
		}
		if !ok {
			return errAlreadyFinalized
		}

		referral, err := repo.LockReferral(ctx, discount.AdvertiserID)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "referral record not found for advertiser")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock referral")
		}
		rate := f.parseRate(ctx, referral.BonusRate)

		amount := discount.BookingAmount
		if !amount.IsPositive() {
			amount = booking.TotalPrice
		}
		earned := amount.Mul(rate).Round(2)

		referral.SuccessfulBookings++
		referral.MonthlyEarnings = referral.MonthlyEarnings.Add(earned)
		referral.AnnualEarnings = referral.AnnualEarnings.Add(earned)
		referral.ReferralHistory = f.historyWith(referral.ReferralHistory, discount, booking, amount, earned, now)
		referral.UpdatedAt = now
		if err := repo.SaveReferralStats(ctx, referral); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save referral stats")
		}

		if _, err := f.ledger.WithTx(tx).RecordEvent(ctx, ledger.RecordLedgerEventInput{
			Type:       enums.LedgerEventReferralDiscountFinalized,
			SourceType: enums.PayoutSourceReferral,
			SourceID:   discount.ID,
			Actor:      auth.SystemActor(),
			Amount:     &earned,
			Currency:   booking.Currency,
			Metadata: map[string]any{
				"advertiser_id":  discount.AdvertiserID.String(),
				"booking_id":     booking.ID.String(),
				"booking_amount": amount.StringFixed(2),
				"bonus_rate":     rate.String(),
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record finalization event")
		}

		outcome = itemOutcome{finalized: true, earned: earned}
		return nil
	})
	if stdErrors.Is(err, errAlreadyFinalized) {
		return f.skip(ctx, SkipAlreadyFinalized, nil), nil
	}
	if err != nil {
		return itemOutcome{}, err
	}

	f.logg.Info(f.logg.WithField(ctx, "earned", outcome.earned.StringFixed(2)), "referral discount finalized")
	f.notifier.Notify(ctx, notifications.Message{
		RecipientID: discount.AdvertiserID,
		Kind:        enums.NotificationReferralBonusEarned,
		Payload: map[string]any{
			"discount_id": discount.ID.String(),
			"amount":      outcome.earned.StringFixed(2),
			"currency":    booking.Currency,
			"tenant_name": discount.TenantName,
		},
	})
	return outcome, nil
}

func (f *Finalizer) parseRate(ctx context.Context, raw string) decimal.Decimal {
	rate, err := ParseBonusRate(raw)
	if err != nil {
		f.logg.Warn(f.logg.WithField(ctx, "bonus_rate", raw), "malformed bonus rate, crediting 0%")
		return decimal.Zero
	}
	return rate
}

func (f *Finalizer) historyWith(history types.ReferralHistory, discount models.ReferralDiscount, booking *models.Booking, amount, earned decimal.Decimal, now time.Time) types.ReferralHistory {
	entry, _ := history.Find(discount.UserID)
	entry.TenantID = discount.UserID
	if discount.TenantName != "" {
		entry.TenantName = discount.TenantName
	}
	entry.Status = enums.ReferralHistorySuccess
	entry.PropertyID = discount.BookingPropertyID
	if entry.PropertyID == nil {
		propertyID := booking.PropertyID
		entry.PropertyID = &propertyID
	}
	entry.PropertyName = discount.BookingPropertyName
	entry.BookingAmount = amount
	entry.EarnedAmount = earned
	entry.UpdatedAt = now

	updated, _ := history.Upsert(entry)
	return updated
}

func (f *Finalizer) skip(ctx context.Context, reason SkipReason, cause error) itemOutcome {
	ctx = f.logg.WithField(ctx, "skip_reason", string(reason))
	if cause != nil {
		f.logg.Error(ctx, "referral discount skipped: bad move-in timestamp", cause)
	} else {
		f.logg.Info(ctx, "referral discount skipped")
	}
	return itemOutcome{skip: reason}
}
