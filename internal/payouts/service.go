package payouts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/haani-backend/internal/ledger"
	"github.com/angelmondragon/haani-backend/internal/notifications"
	"github.com/angelmondragon/haani-backend/internal/payees"
	"github.com/angelmondragon/haani-backend/pkg/auth"
	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
	"github.com/angelmondragon/haani-backend/pkg/logger"
	"github.com/angelmondragon/haani-backend/pkg/metrics"
	"github.com/angelmondragon/haani-backend/pkg/pagination"
)

// Service runs the payout request lifecycle: request, approve or reject, pay.
type Service interface {
	CreateRequest(ctx context.Context, actor auth.Actor, input CreateRequestInput) (*CreateRequestResult, error)
	Approve(ctx context.Context, actor auth.Actor, requestID uuid.UUID) (*ApproveResult, error)
	Reject(ctx context.Context, actor auth.Actor, requestID uuid.UUID, reason string) (*models.PayoutRequest, error)
	MarkPaid(ctx context.Context, actor auth.Actor, payoutID uuid.UUID) (*models.Payout, error)
	ListRequests(ctx context.Context, params ListRequestsParams) (*pagination.Page[models.PayoutRequest], error)
	ListPayouts(ctx context.Context, params ListPayoutsParams) (*pagination.Page[models.Payout], error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PayeeResolver is implemented by payees.Resolver.
type PayeeResolver interface {
	ResolveBooking(ctx context.Context, booking *models.Booking) (payees.Payee, error)
	ResolveUser(ctx context.Context, userID uuid.UUID, userType enums.UserType) (payees.Payee, error)
}

// Sources reads the records a payout can originate from. The bookings
// repository implements it.
type Sources interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindRefundRequest(ctx context.Context, bookingID uuid.UUID) (*models.RefundRequest, error)
	FindRefundRequestByID(ctx context.Context, id uuid.UUID) (*models.RefundRequest, error)
}

// DiscountFinder is implemented by the referrals repository.
type DiscountFinder interface {
	FindDiscount(ctx context.Context, id uuid.UUID) (*models.ReferralDiscount, error)
}

// ServiceParams wires the payouts service.
type ServiceParams struct {
	Repo         Repository
	Tx           txRunner
	Writer       *Writer
	Guard        ledger.Claimer
	Ledger       ledger.Service
	Resolver     PayeeResolver
	Sources      Sources
	Discounts    DiscountFinder
	Notifier     notifications.Notifier
	Metrics      *metrics.FinalizerMetrics
	Logger       *logger.Logger
	Currency     string
	// Fees and SafetyWindow must match the rent finalizer so a manual rent
	// request releases the same amount at the same time.
	Fees         FeePolicy
	SafetyWindow time.Duration
}

type service struct {
	repo         Repository
	tx           txRunner
	writer       *Writer
	guard        ledger.Claimer
	ledger       ledger.Service
	resolver     PayeeResolver
	sources      Sources
	discounts    DiscountFinder
	notifier     notifications.Notifier
	metrics      *metrics.FinalizerMetrics
	logg         *logger.Logger
	currency     string
	fees         FeePolicy
	safetyWindow time.Duration
	now          func() time.Time
}

// NewService wires the payout lifecycle.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payouts repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Writer == nil {
		return nil, fmt.Errorf("payout writer required")
	}
	if params.Guard == nil {
		return nil, fmt.Errorf("claim guard required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("payee resolver required")
	}
	if params.Sources == nil {
		return nil, fmt.Errorf("payout sources required")
	}
	if params.Fees == nil {
		return nil, fmt.Errorf("fee policy required")
	}
	if params.SafetyWindow <= 0 {
		return nil, fmt.Errorf("safety window must be positive")
	}
	notifier := params.Notifier
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	currency := params.Currency
	if currency == "" {
		currency = "EGP"
	}
	return &service{
		repo:         params.Repo,
		tx:           params.Tx,
		writer:       params.Writer,
		guard:        params.Guard,
		ledger:       params.Ledger,
		resolver:     params.Resolver,
		sources:      params.Sources,
		discounts:    params.Discounts,
		notifier:     notifier,
		metrics:      params.Metrics,
		logg:         params.Logger,
		currency:     currency,
		fees:         params.Fees,
		safetyWindow: params.SafetyWindow,
		now:          time.Now,
	}, nil
}

func (s *service) CreateRequest(ctx context.Context, actor auth.Actor, input CreateRequestInput) (*CreateRequestResult, error) {
	if !input.SourceType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid source type")
	}
	if input.SourceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source id required")
	}
	if input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	privileged := actor.IsAdmin() || actor.IsSystem()
	if !privileged {
		if actor.UserID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
		}
		if input.UserID == uuid.Nil {
			input.UserID = actor.UserID
		}
		if input.UserID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payout requests can only be filed for yourself")
		}
	}

	src, err := s.loadSource(ctx, input.SourceType, input.SourceID)
	if err != nil {
		return nil, err
	}
	payee, err := s.payeeFor(ctx, src)
	if err != nil {
		return nil, err
	}
	if input.UserID == uuid.Nil {
		input.UserID = payee.UserID
	}
	if payee.UserID != input.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "source does not belong to payee")
	}

	now := s.now().UTC()
	due, err := s.owedFor(ctx, src, now)
	if err != nil {
		return nil, err
	}
	fees, err := due.settle(input.Amount)
	if err != nil {
		return nil, err
	}

	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = s.currency
	}
	request := &models.PayoutRequest{
		ID:            uuid.New(),
		UserID:        input.UserID,
		UserType:      payee.UserType,
		Amount:        fees.Net,
		Currency:      currency,
		SourceType:    input.SourceType,
		SourceID:      input.SourceID,
		Status:        enums.PayoutRequestStatusPending,
		PaymentMethod: payee.PaymentMethod,
		Notes:         strings.TrimSpace(input.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	result := &CreateRequestResult{Request: request}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		guard := s.guard.WithTx(tx)

		payoutKey := ledger.ClaimKey{Scope: ledger.ScopePayout, SourceType: input.SourceType, SourceID: input.SourceID}
		if _, exists, err := guard.Holder(ctx, payoutKey); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check payout claim")
		} else if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "a payout already exists for this source")
		}

		requestKey := ledger.ClaimKey{Scope: ledger.ScopePayoutRequest, SourceType: input.SourceType, SourceID: input.SourceID}
		claim, err := guard.TryClaim(ctx, requestKey, request.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim payout request source")
		}
		if claim == ledger.AlreadyClaimed {
			holder, _, err := guard.Holder(ctx, requestKey)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payout request claim")
			}
			existing, err := repo.FindRequest(ctx, holder)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active payout request")
			}
			result.Request = existing
			result.Duplicate = true
			return nil
		}

		if err := repo.CreateRequest(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert payout request")
		}
		amount := request.Amount
		_, err = s.ledger.WithTx(tx).RecordEvent(ctx, ledger.RecordLedgerEventInput{
			Type:       enums.LedgerEventPayoutRequestCreated,
			SourceType: request.SourceType,
			SourceID:   request.SourceID,
			RecordID:   &request.ID,
			Actor:      actor,
			Amount:     &amount,
			Currency:   request.Currency,
			Metadata:   map[string]any{"user_id": request.UserID.String()},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payout request event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Duplicate {
		s.metrics.IncTransition("requested")
	}
	return result, nil
}

func (s *service) Approve(ctx context.Context, actor auth.Actor, requestID uuid.UUID) (*ApproveResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout request id required")
	}

	request, err := s.repo.FindRequest(ctx, requestID)
	if err != nil {
		return nil, mapLoadErr(err, "payout request")
	}
	if request.Status != enums.PayoutRequestStatusPending {
		return nil, wrongState("payout request", string(request.Status))
	}

	// The amount is derived again so a source that changed since filing, such
	// as a cancelled booking, cannot be paid on a stale request.
	src, err := s.loadSource(ctx, request.SourceType, request.SourceID)
	if err != nil {
		return nil, err
	}
	due, err := s.owedFor(ctx, src, s.now().UTC())
	if err != nil {
		return nil, err
	}
	fees, err := due.settle(request.Amount)
	if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "amount owed for the source changed since the request was filed")
	}
	if err != nil {
		return nil, err
	}

	// The request carries the payee's method as of filing. Only a request
	// filed without one is resolved again here.
	method := request.PaymentMethod
	if method.IsZero() {
		payee, err := s.resolver.ResolveUser(ctx, request.UserID, request.UserType)
		if err != nil {
			return nil, err
		}
		method = payee.PaymentMethod
	}

	result := &ApproveResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		ok, err := repo.ApproveRequest(ctx, request.ID, actor.IDPtr(), now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve payout request")
		}
		if !ok {
			current, err := repo.FindRequest(ctx, request.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload payout request")
			}
			return wrongState("payout request", string(current.Status))
		}

		payout, _, err := s.writer.Create(ctx, tx, NewPayoutInput{
			PayeeID:         request.UserID,
			PayeeType:       request.UserType,
			SourceType:      request.SourceType,
			SourceID:        request.SourceID,
			Fees:            fees,
			Currency:        request.Currency,
			PaymentMethod:   method,
			PayoutRequestID: &request.ID,
			Actor:           actor,
		})
		if err != nil {
			return err
		}

		amount := request.Amount
		if _, err := s.ledger.WithTx(tx).RecordEvent(ctx, ledger.RecordLedgerEventInput{
			Type:       enums.LedgerEventPayoutRequestApproved,
			SourceType: request.SourceType,
			SourceID:   request.SourceID,
			RecordID:   &request.ID,
			Actor:      actor,
			Amount:     &amount,
			Currency:   request.Currency,
			Metadata:   map[string]any{"payout_id": payout.ID.String()},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record approval event")
		}

		updated, err := repo.FindRequest(ctx, request.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload payout request")
		}
		result.Request = updated
		result.Payout = payout
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition("approved")
	s.notifier.Notify(ctx, notifications.Message{
		RecipientID: result.Request.UserID,
		Kind:        enums.NotificationPayoutRequestApproved,
		Payload: map[string]any{
			"request_id": result.Request.ID.String(),
			"payout_id":  result.Payout.ID.String(),
			"amount":     result.Request.Amount.StringFixed(2),
			"currency":   result.Request.Currency,
		},
	})
	return result, nil
}

func (s *service) Reject(ctx context.Context, actor auth.Actor, requestID uuid.UUID, reason string) (*models.PayoutRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout request id required")
	}

	var rejected *models.PayoutRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := repo.FindRequest(ctx, requestID)
		if err != nil {
			return mapLoadErr(err, "payout request")
		}
		if request.Status != enums.PayoutRequestStatusPending {
			return wrongState("payout request", string(request.Status))
		}

		ok, err := repo.RejectRequest(ctx, request.ID, actor.IDPtr(), reason, s.now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject payout request")
		}
		if !ok {
			return wrongState("payout request", "changed")
		}

		// Rejected requests are not active; the source may be requested again.
		key := ledger.ClaimKey{Scope: ledger.ScopePayoutRequest, SourceType: request.SourceType, SourceID: request.SourceID}
		if err := s.guard.WithTx(tx).Release(ctx, key); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release payout request claim")
		}

		if _, err := s.ledger.WithTx(tx).RecordEvent(ctx, ledger.RecordLedgerEventInput{
			Type:       enums.LedgerEventPayoutRequestRejected,
			SourceType: request.SourceType,
			SourceID:   request.SourceID,
			RecordID:   &request.ID,
			Actor:      actor,
			Metadata:   map[string]any{"reason": reason},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record rejection event")
		}

		rejected, err = repo.FindRequest(ctx, request.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload payout request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition("rejected")
	s.notifier.Notify(ctx, notifications.Message{
		RecipientID: rejected.UserID,
		Kind:        enums.NotificationPayoutRequestRejected,
		Payload: map[string]any{
			"request_id": rejected.ID.String(),
			"amount":     rejected.Amount.StringFixed(2),
			"currency":   rejected.Currency,
			"reason":     reason,
		},
	})
	return rejected, nil
}

func (s *service) MarkPaid(ctx context.Context, actor auth.Actor, payoutID uuid.UUID) (*models.Payout, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if payoutID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout id required")
	}

	var paid *models.Payout
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payout, err := repo.FindPayout(ctx, payoutID)
		if err != nil {
			return mapLoadErr(err, "payout")
		}
		if payout.Status != enums.PayoutStatusPending {
			return wrongState("payout", string(payout.Status))
		}

		ok, err := repo.MarkPaid(ctx, payout.ID, actor.IDPtr(), s.now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payout paid")
		}
		if !ok {
			return wrongState("payout", string(enums.PayoutStatusPaid))
		}

		amount := payout.Amount
		if _, err := s.ledger.WithTx(tx).RecordEvent(ctx, ledger.RecordLedgerEventInput{
			Type:       enums.LedgerEventPayoutPaid,
			SourceType: payout.SourceType,
			SourceID:   payout.SourceID,
			RecordID:   &payout.ID,
			Actor:      actor,
			Amount:     &amount,
			Currency:   payout.Currency,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record paid event")
		}

		paid, err = repo.FindPayout(ctx, payout.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload payout")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition("paid")
	s.notifyPaid(ctx, paid)
	return paid, nil
}

func (s *service) notifyPaid(ctx context.Context, payout *models.Payout) {
	payload := map[string]any{
		"payout_id": payout.ID.String(),
		"amount":    payout.Amount.StringFixed(2),
		"currency":  payout.Currency,
		"reason":    string(payout.Reason),
	}
	kind := enums.NotificationPayoutPaid
	if payout.Reason == enums.PayoutReasonTenantRefund {
		kind = enums.NotificationTenantRefundPaid
		if name := s.refundPropertyName(ctx, payout); name != "" {
			payload["property_name"] = name
		}
	}
	s.notifier.Notify(ctx, notifications.Message{RecipientID: payout.PayeeID, Kind: kind, Payload: payload})
}

// refundPropertyName looks up the originating refund request. Refund payouts
// point at the refund request, older ones at the booking.
func (s *service) refundPropertyName(ctx context.Context, payout *models.Payout) string {
	refund, err := s.sources.FindRefundRequestByID(ctx, payout.SourceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		refund, err = s.sources.FindRefundRequest(ctx, payout.SourceID)
	}
	if err != nil {
		if s.logg != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Warn(s.logg.WithField(ctx, "payout_id", payout.ID.String()), "refund notification enrichment failed: "+err.Error())
		}
		return ""
	}
	return refund.PropertyName
}

func (s *service) ListRequests(ctx context.Context, params ListRequestsParams) (*pagination.Page[models.PayoutRequest], error) {
	query := listRequestsParams{
		Status:     params.Status,
		UserID:     params.UserID,
		SourceType: params.SourceType,
		Limit:      params.Limit,
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, err := s.repo.ListRequests(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payout requests")
	}
	page := pagination.Slice(rows, params.Limit)
	return &page, nil
}

func (s *service) ListPayouts(ctx context.Context, params ListPayoutsParams) (*pagination.Page[models.Payout], error) {
	query := listPayoutsParams{
		Status:     params.Status,
		PayeeID:    params.PayeeID,
		SourceType: params.SourceType,
		Limit:      params.Limit,
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, err := s.repo.ListPayouts(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payouts")
	}
	page := pagination.Slice(rows, params.Limit)
	return &page, nil
}

func requireAdmin(actor auth.Actor) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return nil
}

func wrongState(record, status string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("%s is %s", record, status))
}

func mapLoadErr(err error, record string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, record+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+record)
}
