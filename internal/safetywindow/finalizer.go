// Package safetywindow releases rent to advertisers once the post move-in
// safety window has closed.
package safetywindow

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/haani-backend/internal/bookings"
	"github.com/angelmondragon/haani-backend/internal/notifications"
	"github.com/angelmondragon/haani-backend/internal/payees"
	"github.com/angelmondragon/haani-backend/internal/payouts"
	"github.com/angelmondragon/haani-backend/internal/window"
	"github.com/angelmondragon/haani-backend/pkg/auth"
	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
	"github.com/angelmondragon/haani-backend/pkg/logger"
	"github.com/angelmondragon/haani-backend/pkg/metrics"
	"github.com/angelmondragon/haani-backend/pkg/workerpool"
)

// JobName labels logs and metrics for the rent finalizer.
const JobName = "safety-window-closer"

// Reasons reported by CheckAndProcessSafetyWindow.
const (
	MsgBookingNotFound = "Booking not found"
	MsgWindowOpen      = "Safety window has not expired yet"
	MsgNoPaymentMethod = payees.MessageNoPaymentMethod
	MsgNoPayee         = "No payee found for booking"
	MsgNotEligible     = "Booking is not eligible for payout"
	MsgAlreadyCreated  = "Payout already created"
	MsgMissingMoveIn   = "Booking has no move-in date"
	MsgInvalidMoveIn   = "Booking move-in date could not be read"
	MsgInternal        = "Failed to process safety window"
)

// BatchResult summarizes one ProcessSafetyWindowClosures run. Processed counts
// bookings whose window had closed; Skipped counts the rest.
type BatchResult struct {
	Processed      int       `json:"processed"`
	Errors         int       `json:"errors"`
	PayoutsCreated int       `json:"payouts_created"`
	Skipped        int       `json:"skipped"`
	Failures       []Failure `json:"failures,omitempty"`
}

// Failure is one booking that could not be finalized.
type Failure struct {
	BookingID uuid.UUID `json:"booking_id"`
	Reason    string    `json:"reason"`
}

// CheckResult is the structured outcome of an on-demand check. It never
// carries a Go error; Error holds a reason an admin can read.
type CheckResult struct {
	Processed        bool       `json:"processed"`
	PayoutCreated    bool       `json:"payout_created"`
	AlreadyProcessed bool       `json:"already_processed"`
	PayoutID         *uuid.UUID `json:"payout_id,omitempty"`
	Error            string     `json:"error,omitempty"`
}

type status int

const (
	statusCreated status = iota + 1
	statusAlreadyCreated
	statusNotEligible
	statusWindowOpen
	statusMissingAnchor
	statusInvalidAnchor
)

type outcome struct {
	status   status
	payoutID *uuid.UUID
}

var errLatched = stdErrors.New("booking payout already latched")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PayeeResolver is implemented by payees.Resolver.
type PayeeResolver interface {
	ResolveBooking(ctx context.Context, booking *models.Booking) (payees.Payee, error)
}

// FinalizerParams wires a Finalizer.
type FinalizerParams struct {
	Bookings     bookings.Repository
	Resolver     PayeeResolver
	Writer       *payouts.Writer
	Fees         payouts.FeePolicy
	Tx           txRunner
	Notifier     notifications.Notifier
	Metrics      *metrics.FinalizerMetrics
	Logger       *logger.Logger
	SafetyWindow time.Duration
	Currency     string
	Pool         workerpool.Options
	BatchLimit   int
}

// Finalizer creates exactly one rent payout per booking after the safety
// window closes.
type Finalizer struct {
	bookings     bookings.Repository
	resolver     PayeeResolver
	writer       *payouts.Writer
	fees         payouts.FeePolicy
	tx           txRunner
	notifier     notifications.Notifier
	metrics      *metrics.FinalizerMetrics
	logg         *logger.Logger
	safetyWindow time.Duration
	currency     string
	pool         workerpool.Options
	batchLimit   int
	now          func() time.Time
}

// NewFinalizer validates dependencies.
func NewFinalizer(params FinalizerParams) (*Finalizer, error) {
	if params.Bookings == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("payee resolver required")
	}
	if params.Writer == nil {
		return nil, fmt.Errorf("payout writer required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.SafetyWindow <= 0 {
		return nil, fmt.Errorf("safety window must be positive")
	}
	fees := params.Fees
	if fees == nil {
		fees = payouts.NoFees{}
	}
	notifier := params.Notifier
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	currency := params.Currency
	if currency == "" {
		currency = "EGP"
	}
	return &Finalizer{
		bookings:     params.Bookings,
		resolver:     params.Resolver,
		writer:       params.Writer,
		fees:         fees,
		tx:           params.Tx,
		notifier:     notifier,
		metrics:      params.Metrics,
		logg:         params.Logger,
		safetyWindow: params.SafetyWindow,
		currency:     currency,
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

// ProcessSafetyWindowClosures evaluates every paid or moved-in booking without
// a rent payout. The returned error is non-nil only when the candidate query
// fails; per-booking failures are counted in the result.
func (f *Finalizer) ProcessSafetyWindowClosures(ctx context.Context) (BatchResult, error) {
	ctx = f.logg.WithJob(ctx, JobName)
	var result BatchResult

	candidates, err := f.bookings.ListSafetyWindowCandidates(ctx, f.batchLimit)
	if err != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list safety window candidates")
	}
	f.logg.Info(ctx, fmt.Sprintf("safety window run started: %d candidates", len(candidates)))

	var mu sync.Mutex
	_ = workerpool.Run(ctx, candidates, f.pool, func(ctx context.Context, booking models.Booking) error {
		itemCtx := f.logg.WithBookingID(ctx, booking.ID.String())
		out, err := f.process(itemCtx, &booking, false)

		mu.Lock()
		defer mu.Unlock()
		switch {
		case err != nil:
			result.Processed++
			result.Errors++
			result.Failures = append(result.Failures, Failure{BookingID: booking.ID, Reason: reasonFor(err)})
			f.metrics.IncItem(JobName, metrics.OutcomeFailed)
			f.logg.Error(itemCtx, "rent payout failed", err)
		case out.status == statusCreated:
			result.Processed++
			result.PayoutsCreated++
			f.metrics.IncItem(JobName, metrics.OutcomeFinalized)
		case out.status == statusAlreadyCreated:
			result.Processed++
			f.metrics.IncItem(JobName, metrics.OutcomeSkipped)
		default:
			result.Skipped++
			f.metrics.IncItem(JobName, metrics.OutcomeSkipped)
		}
		return err
	})

	f.logg.Info(f.logg.WithFields(ctx, map[string]any{
		"processed":       result.Processed,
		"errors":          result.Errors,
		"payouts_created": result.PayoutsCreated,
		"skipped":         result.Skipped,
	}), "safety window run completed")
	return result, nil
}

// CheckAndProcessSafetyWindow runs the same logic for a single booking.
func (f *Finalizer) CheckAndProcessSafetyWindow(ctx context.Context, bookingID uuid.UUID) CheckResult {
	ctx = f.logg.WithBookingID(ctx, bookingID.String())
	if bookingID == uuid.Nil {
		return CheckResult{Error: MsgBookingNotFound}
	}

	booking, err := f.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return CheckResult{Error: MsgBookingNotFound}
		}
		f.logg.Error(ctx, "load booking for safety window check", err)
		return CheckResult{Error: MsgInternal}
	}

	out, err := f.process(ctx, booking, true)
	if err != nil {
		f.logg.Error(ctx, "on-demand rent payout failed", err)
		return CheckResult{Processed: true, Error: reasonFor(err)}
	}

	switch out.status {
	case statusCreated:
		return CheckResult{Processed: true, PayoutCreated: true, PayoutID: out.payoutID}
	case statusAlreadyCreated:
		return CheckResult{AlreadyProcessed: true, PayoutID: out.payoutID, Error: MsgAlreadyCreated}
	case statusNotEligible:
		return CheckResult{Error: MsgNotEligible}
	case statusWindowOpen:
		return CheckResult{Error: MsgWindowOpen}
	case statusMissingAnchor:
		return CheckResult{Error: MsgMissingMoveIn}
	case statusInvalidAnchor:
		return CheckResult{Error: MsgInvalidMoveIn}
	}
	return CheckResult{Error: MsgInternal}
}

func (f *Finalizer) process(ctx context.Context, booking *models.Booking, onDemand bool) (outcome, error) {
	if booking.PayoutCreated {
		return outcome{status: statusAlreadyCreated}, nil
	}
	if !booking.Status.EligibleForRentPayout() {
		return outcome{status: statusNotEligible}, nil
	}

	now := f.now().UTC()
	elapsed, err := window.HasWindowElapsed(booking.SafetyAnchor(), f.safetyWindow, now)
	switch {
	case stdErrors.Is(err, window.ErrMissingAnchor):
		f.logg.Warn(f.logg.WithField(ctx, "skip_reason", "missing_move_in"), "rent payout skipped")
		return outcome{status: statusMissingAnchor}, nil
	case err != nil:
		f.logg.Error(f.logg.WithField(ctx, "skip_reason", "invalid_move_in"), "rent payout skipped", err)
		return outcome{status: statusInvalidAnchor}, nil
	case !elapsed:
		return outcome{status: statusWindowOpen}, nil
	}

	closedNow, err := f.bookings.MarkSafetyWindowClosed(ctx, booking.ID, now)
	if err != nil {
		return outcome{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close safety window")
	}

	payee, err := f.resolver.ResolveBooking(ctx, booking)
	if err != nil {
		if payeeID, ok := payees.UnresolvedPayeeID(err); ok && (closedNow || onDemand) {
			f.notifier.Notify(ctx, notifications.Message{
				RecipientID: payeeID,
				Kind:        enums.NotificationPayoutMethodMissing,
				Payload:     map[string]any{"booking_id": booking.ID.String()},
			})
		}
		return outcome{}, err
	}

	currency := booking.Currency
	if currency == "" {
		currency = f.currency
	}
	fees := f.fees.Apply(booking.TotalPrice, booking.PremiumFee)

	var (
		payout  *models.Payout
		created bool
	)
	err = f.tx.WithTx(ctx, func(tx *gorm.DB) error {
		latched, err := f.bookings.WithTx(tx).LatchPayoutCreated(ctx, booking.ID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "latch payout created")
		}
		if !latched {
			return errLatched
		}

		payout, created, err = f.writer.Create(ctx, tx, payouts.NewPayoutInput{
			PayeeID:       payee.UserID,
			PayeeType:     enums.UserTypeAdvertiser,
			SourceType:    enums.PayoutSourceRent,
			SourceID:      booking.ID,
			Fees:          fees,
			Currency:      currency,
			PaymentMethod: payee.PaymentMethod,
			Actor:         auth.SystemActor(),
			Metadata:      map[string]any{"payee_via": string(payee.Via)},
		})
		return err
	})
	if stdErrors.Is(err, errLatched) {
		return outcome{status: statusAlreadyCreated}, nil
	}
	if err != nil {
		return outcome{}, err
	}
	if !created {
		return outcome{status: statusAlreadyCreated, payoutID: &payout.ID}, nil
	}

	f.logg.Info(f.logg.WithFields(ctx, map[string]any{
		"payout_id": payout.ID.String(),
		"amount":    payout.Amount.StringFixed(2),
		"payee_id":  payout.PayeeID.String(),
	}), "rent payout created")
	f.notifier.Notify(ctx, notifications.Message{
		RecipientID: payout.PayeeID,
		Kind:        enums.NotificationPayoutCreated,
		Payload: map[string]any{
			"payout_id":  payout.ID.String(),
			"booking_id": booking.ID.String(),
			"amount":     payout.Amount.StringFixed(2),
			"currency":   payout.Currency,
			"reason":     string(payout.Reason),
		},
	})
	return outcome{status: statusCreated, payoutID: &payout.ID}, nil
}

func reasonFor(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return MsgInternal
	}
	switch typed.Code() {
	case pkgerrors.CodePayeeUnresolvable:
		if payees.IsMissingPaymentMethod(err) {
			return MsgNoPaymentMethod
		}
		return MsgNoPayee
	case pkgerrors.CodeValidation, pkgerrors.CodeConflict:
		return typed.Message()
	}
	return MsgInternal
}
