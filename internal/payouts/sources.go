package payouts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/haani-backend/internal/payees"
	"github.com/angelmondragon/haani-backend/internal/window"
	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
)

// source is the record a payout request points at. Exactly one of the
// pointers is set, matching kind.
type source struct {
	kind     enums.PayoutSourceType
	id       uuid.UUID
	booking  *models.Booking
	refund   *models.RefundRequest
	discount *models.ReferralDiscount
}

// owed is what a source entitles its payee to. A fixed amount must be
// requested exactly; otherwise fees.Net is a ceiling.
type owed struct {
	fees  FeeBreakdown
	fixed bool
}

func (s *service) loadSource(ctx context.Context, kind enums.PayoutSourceType, id uuid.UUID) (source, error) {
	src := source{kind: kind, id: id}
	var err error
	switch kind {
	case enums.PayoutSourceRent, enums.PayoutSourceCancellation:
		if src.booking, err = s.sources.FindByID(ctx, id); err != nil {
			return source{}, mapLoadErr(err, "booking")
		}
	case enums.PayoutSourceRefund:
		if src.refund, err = s.sources.FindRefundRequestByID(ctx, id); err != nil {
			return source{}, mapLoadErr(err, "refund request")
		}
	case enums.PayoutSourceReferral:
		if s.discounts == nil {
			return source{}, pkgerrors.New(pkgerrors.CodeInternal, "referral sources are not configured")
		}
		if src.discount, err = s.discounts.FindDiscount(ctx, id); err != nil {
			return source{}, mapLoadErr(err, "referral discount")
		}
	default:
		return source{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid source type")
	}
	return src, nil
}

// payeeFor resolves who is owed money for the source and snapshots their
// payout method.
func (s *service) payeeFor(ctx context.Context, src source) (payees.Payee, error) {
	switch {
	case src.booking != nil:
		return s.resolver.ResolveBooking(ctx, src.booking)
	case src.refund != nil:
		return s.resolver.ResolveUser(ctx, src.refund.TenantID, enums.UserTypeClient)
	default:
		return s.resolver.ResolveUser(ctx, src.discount.AdvertiserID, enums.UserTypeAdvertiser)
	}
}

// owedFor derives the payable amount from the source itself and refuses
// sources that are not yet releasable.
func (s *service) owedFor(ctx context.Context, src source, now time.Time) (owed, error) {
	switch src.kind {
	case enums.PayoutSourceRent:
		booking := src.booking
		if !booking.Status.EligibleForRentPayout() {
			return owed{}, pkgerrors.New(pkgerrors.CodeStateConflict, "booking is not eligible for a rent payout")
		}
		elapsed, err := window.HasWindowElapsed(booking.SafetyAnchor(), s.safetyWindow, now)
		if err != nil {
			return owed{}, err
		}
		if !elapsed {
			return owed{}, pkgerrors.New(pkgerrors.CodeStateConflict, "Safety window has not expired yet")
		}
		return owed{fees: s.fees.Apply(booking.TotalPrice, booking.PremiumFee), fixed: true}, nil

	case enums.PayoutSourceCancellation:
		booking := src.booking
		if booking.Status != enums.BookingStatusCancelled {
			return owed{}, pkgerrors.New(pkgerrors.CodeStateConflict, "booking is not cancelled")
		}
		ceiling := s.fees.Apply(booking.TotalPrice, booking.PremiumFee).Net
		return owed{fees: NoFees{}.Apply(ceiling, decimal.Zero)}, nil

	case enums.PayoutSourceRefund:
		return owed{fees: NoFees{}.Apply(src.refund.Amount, decimal.Zero), fixed: true}, nil

	case enums.PayoutSourceReferral:
		if !src.discount.IsUsed {
			return owed{}, pkgerrors.New(pkgerrors.CodeStateConflict, "referral discount is not finalized")
		}
		event, found, err := s.ledger.LatestEvent(ctx, enums.PayoutSourceReferral, src.id, enums.LedgerEventReferralDiscountFinalized)
		if err != nil {
			return owed{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load referral finalization")
		}
		if !found {
			return owed{}, pkgerrors.New(pkgerrors.CodeStateConflict, "referral discount is not finalized")
		}
		if !event.Amount.Valid {
			return owed{}, pkgerrors.New(pkgerrors.CodeDataQuality, "referral finalization has no earned amount")
		}
		return owed{fees: NoFees{}.Apply(event.Amount.Decimal, decimal.Zero), fixed: true}, nil
	}
	return owed{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid source type")
}

// settle checks requested against what is owed and returns the breakdown the
// payout will carry. A zero request takes the owed amount when it is fixed.
func (o owed) settle(requested decimal.Decimal) (FeeBreakdown, error) {
	net := o.fees.Net
	if !net.IsPositive() {
		return FeeBreakdown{}, pkgerrors.New(pkgerrors.CodeStateConflict, "nothing is owed for this source")
	}
	requested = requested.Round(2)
	if o.fixed {
		if requested.IsZero() || requested.Equal(net) {
			return o.fees, nil
		}
		return FeeBreakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "amount does not match what is owed for this source").
			WithDetails(map[string]any{"owed": net.StringFixed(2)})
	}
	if !requested.IsPositive() {
		return FeeBreakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "amount required for this source")
	}
	if requested.GreaterThan(net) {
		return FeeBreakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "amount exceeds what is owed for this source").
			WithDetails(map[string]any{"max": net.StringFixed(2)})
	}
	return NoFees{}.Apply(requested, decimal.Zero), nil
}
