// Package payees determines who receives money for a booking and which
// payout method the money goes to.
package payees

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
	"github.com/angelmondragon/haani-backend/pkg/types"
)

const (
	// MessageNoPayee is returned when no advertiser can be linked to a booking.
	MessageNoPayee = "no payee found for booking"
	// MessageNoPaymentMethod is shown to admins and the payee alike.
	MessageNoPaymentMethod = "Advertiser has no payment method"
)

// Via records which resolution step produced the payee.
type Via string

const (
	ViaBookingAdvertiser Via = "booking_advertiser"
	ViaPropertyOwner     Via = "property_owner"
	ViaAdvertiserScan    Via = "advertiser_scan"
	ViaDirect            Via = "direct"
)

// Directory is the read surface the resolver needs. The bookings repository
// implements it.
type Directory interface {
	FindProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListAdvertisers(ctx context.Context) ([]models.User, error)
	FindPayoutMethod(ctx context.Context, userID uuid.UUID) (*models.PayoutMethod, error)
}

// Payee is a resolved recipient with a frozen copy of their payout method.
type Payee struct {
	UserID        uuid.UUID
	UserType      enums.UserType
	Via           Via
	PaymentMethod types.PayoutMethodSnapshot
}

// Details is attached to PAYEE_UNRESOLVABLE errors.
type Details struct {
	BookingID *uuid.UUID `json:"booking_id,omitempty"`
	PayeeID   *uuid.UUID `json:"payee_id,omitempty"`
	Reason    string     `json:"reason"`
}

// Resolver walks the fallback chain for booking payees.
type Resolver struct {
	dir Directory
	now func() time.Time
}

// NewResolver wires a resolver over dir.
func NewResolver(dir Directory) (*Resolver, error) {
	if dir == nil {
		return nil, fmt.Errorf("payee directory required")
	}
	return &Resolver{dir: dir, now: time.Now}, nil
}

// ResolveBooking finds the advertiser for booking: the booking's own
// advertiser id, then the property owner, then a scan of advertisers listing
// the property. The first hit wins.
func (r *Resolver) ResolveBooking(ctx context.Context, booking *models.Booking) (Payee, error) {
	if booking == nil {
		return Payee{}, pkgerrors.New(pkgerrors.CodeValidation, "booking is required")
	}

	payeeID, via, err := r.findBookingPayee(ctx, booking)
	if err != nil {
		return Payee{}, err
	}
	if payeeID == uuid.Nil {
		bookingID := booking.ID
		return Payee{}, pkgerrors.New(pkgerrors.CodePayeeUnresolvable, MessageNoPayee).
			WithDetails(Details{BookingID: &bookingID, Reason: "no_payee"})
	}

	payee, err := r.withPaymentMethod(ctx, payeeID, enums.UserTypeAdvertiser, via)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodePayeeUnresolvable {
			if details, ok := typed.Details().(Details); ok {
				bookingID := booking.ID
				details.BookingID = &bookingID
				typed.WithDetails(details)
			}
		}
		return Payee{}, err
	}
	return payee, nil
}

// ResolveUser snapshots the payout method of a payee that is already known,
// such as a referrer or a refunded tenant.
func (r *Resolver) ResolveUser(ctx context.Context, userID uuid.UUID, userType enums.UserType) (Payee, error) {
	if userID == uuid.Nil {
		return Payee{}, pkgerrors.New(pkgerrors.CodeValidation, "payee id is required")
	}
	if !userType.IsValid() {
		return Payee{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payee type %q", userType))
	}
	return r.withPaymentMethod(ctx, userID, userType, ViaDirect)
}

func (r *Resolver) findBookingPayee(ctx context.Context, booking *models.Booking) (uuid.UUID, Via, error) {
	if booking.AdvertiserID != nil && *booking.AdvertiserID != uuid.Nil {
		return *booking.AdvertiserID, ViaBookingAdvertiser, nil
	}

	if booking.PropertyID != uuid.Nil {
		property, err := r.dir.FindProperty(ctx, booking.PropertyID)
		switch {
		case err == nil:
			if property.OwnerID != nil && *property.OwnerID != uuid.Nil {
				return *property.OwnerID, ViaPropertyOwner, nil
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load property")
		}

		// O(advertisers); acceptable because it only runs when both direct
		// links are missing.
		advertisers, err := r.dir.ListAdvertisers(ctx)
		if err != nil {
			return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list advertisers")
		}
		for _, advertiser := range advertisers {
			if advertiser.PropertyIDs.Contains(booking.PropertyID) {
				return advertiser.ID, ViaAdvertiserScan, nil
			}
		}
	}

	return uuid.Nil, "", nil
}

func (r *Resolver) withPaymentMethod(ctx context.Context, payeeID uuid.UUID, userType enums.UserType, via Via) (Payee, error) {
	method, err := r.dir.FindPayoutMethod(ctx, payeeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		id := payeeID
		return Payee{}, pkgerrors.New(pkgerrors.CodePayeeUnresolvable, MessageNoPaymentMethod).
			WithDetails(Details{PayeeID: &id, Reason: "missing_payment_method"})
	}
	if err != nil {
		return Payee{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payout method")
	}

	return Payee{
		UserID:        payeeID,
		UserType:      userType,
		Via:           via,
		PaymentMethod: Snapshot(method, r.now()),
	}, nil
}

// Snapshot freezes method as of capturedAt.
func Snapshot(method *models.PayoutMethod, capturedAt time.Time) types.PayoutMethodSnapshot {
	if method == nil {
		return types.PayoutMethodSnapshot{}
	}
	return types.PayoutMethodSnapshot{
		MethodID:      method.ID,
		Type:          method.Type,
		AccountHolder: method.AccountHolder,
		Institution:   method.Institution,
		AccountNumber: method.AccountNumber,
		CapturedAt:    capturedAt.UTC(),
	}
}

// UnresolvedPayeeID extracts the payee id from a missing-payment-method error so
// callers can tell the payee to add one.
func UnresolvedPayeeID(err error) (uuid.UUID, bool) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePayeeUnresolvable {
		return uuid.Nil, false
	}
	details, ok := typed.Details().(Details)
	if !ok || details.PayeeID == nil {
		return uuid.Nil, false
	}
	return *details.PayeeID, true
}

// IsMissingPaymentMethod reports whether err means the payee exists but has no
// payout method.
func IsMissingPaymentMethod(err error) bool {
	_, ok := UnresolvedPayeeID(err)
	return ok
}
