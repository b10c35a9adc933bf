package payouts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/haani-backend/internal/bookings"
	"github.com/angelmondragon/haani-backend/internal/ledger"
	"github.com/angelmondragon/haani-backend/internal/notifications"
	"github.com/angelmondragon/haani-backend/internal/payees"
	"github.com/angelmondragon/haani-backend/pkg/auth"
	"github.com/angelmondragon/haani-backend/pkg/db"
	"github.com/angelmondragon/haani-backend/pkg/db/dbtest"
	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notifications.Message
}

func (r *recordingNotifier) Notify(_ context.Context, msg notifications.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recordingNotifier) kinds() []enums.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]enums.NotificationKind, 0, len(r.messages))
	for _, msg := range r.messages {
		out = append(out, msg.Kind)
	}
	return out
}

func (r *recordingNotifier) last() notifications.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[len(r.messages)-1]
}

type gormDiscounts struct {
	conn *gorm.DB
}

func (g gormDiscounts) FindDiscount(ctx context.Context, id uuid.UUID) (*models.ReferralDiscount, error) {
	var discount models.ReferralDiscount
	if err := g.conn.WithContext(ctx).Where("id = ?", id).First(&discount).Error; err != nil {
		return nil, err
	}
	return &discount, nil
}

// rentNet is what a 5000 booking pays out under the harness's 10% fee.
var rentNet = decimal.NewFromInt(4500)

type harness struct {
	conn     *gorm.DB
	client   *db.Client
	svc      Service
	writer   *Writer
	ledger   ledger.Service
	notifier *recordingNotifier
	admin    auth.Actor
}

func newHarness(t *testing.T, notifier notifications.Notifier) *harness {
	t.Helper()
	return newHarnessOn(t, dbtest.Open(t), notifier)
}

func newHarnessOn(t *testing.T, conn *gorm.DB, notifier notifications.Notifier) *harness {
	t.Helper()
	client := db.NewFromConn(conn)

	bookingsRepo := bookings.NewRepository(conn)
	resolver, err := payees.NewResolver(bookingsRepo)
	require.NoError(t, err)
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn))
	require.NoError(t, err)
	guard := ledger.NewGuard(conn)
	repo := NewRepository(conn)
	writer, err := NewWriter(repo, guard, ledgerSvc)
	require.NoError(t, err)

	recorder := &recordingNotifier{}
	if notifier == nil {
		notifier = recorder
	}
	svc, err := NewService(ServiceParams{
		Repo:         repo,
		Tx:           client,
		Writer:       writer,
		Guard:        guard,
		Ledger:       ledgerSvc,
		Resolver:     resolver,
		Sources:      bookingsRepo,
		Discounts:    gormDiscounts{conn: conn},
		Notifier:     notifier,
		Fees:         PercentFeePolicy{Percent: decimal.NewFromInt(10)},
		SafetyWindow: 24 * time.Hour,
	})
	require.NoError(t, err)

	return &harness{
		conn:     conn,
		client:   client,
		svc:      svc,
		writer:   writer,
		ledger:   ledgerSvc,
		notifier: recorder,
		admin:    auth.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin},
	}
}

// rentSource seeds an advertiser with a payout method and a booking whose
// safety window closed a day ago.
func (h *harness) rentSource(t *testing.T) (*models.User, *models.Booking) {
	t.Helper()
	return h.rentSourceMovedIn(t, time.Now().Add(-48*time.Hour))
}

func (h *harness) rentSourceMovedIn(t *testing.T, movedIn time.Time) (*models.User, *models.Booking) {
	t.Helper()
	advertiser := dbtest.User(t, h.conn, enums.UserRoleAdvertiser)
	dbtest.PayoutMethod(t, h.conn, advertiser.ID)
	booking := dbtest.Booking(t, h.conn, dbtest.BookingOptions{
		Status:       enums.BookingStatusMovedIn,
		AdvertiserID: &advertiser.ID,
		TotalPrice:   decimal.NewFromInt(5000),
		MovedInAt:    &movedIn,
	})
	return advertiser, booking
}

func (h *harness) fileRent(t *testing.T, advertiser *models.User, booking *models.Booking) *models.PayoutRequest {
	t.Helper()
	res, err := h.svc.CreateRequest(context.Background(), auth.Actor{UserID: advertiser.ID, Role: enums.UserRoleAdvertiser}, CreateRequestInput{
		Amount:     rentNet,
		SourceType: enums.PayoutSourceRent,
		SourceID:   booking.ID,
	})
	require.NoError(t, err)
	require.False(t, res.Duplicate)
	return res.Request
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.True(t, pkgerrors.IsCode(err, code), "expected %s, got %v", code, err)
}

func TestCreateRequestIsIdempotentPerSource(t *testing.T) {
	h := newHarness(t, nil)
	advertiser, booking := h.rentSource(t)

	first := h.fileRent(t, advertiser, booking)
	require.Equal(t, enums.PayoutRequestStatusPending, first.Status)
	require.Equal(t, enums.UserTypeAdvertiser, first.UserType)
	require.False(t, first.PaymentMethod.IsZero())

	again, err := h.svc.CreateRequest(context.Background(), auth.Actor{UserID: advertiser.ID, Role: enums.UserRoleAdvertiser}, CreateRequestInput{
		Amount:     decimal.Zero,
		SourceType: enums.PayoutSourceRent,
		SourceID:   booking.ID,
	})
	require.NoError(t, err)
	require.True(t, again.Duplicate)
	require.Equal(t, first.ID, again.Request.ID)
	require.Equal(t, int64(1), dbtest.Count(t, h.conn, &models.PayoutRequest{}, ""))
}

func TestCreateRequestOwnership(t *testing.T) {
	h := newHarness(t, nil)
	_, booking := h.rentSource(t)
	stranger := dbtest.User(t, h.conn, enums.UserRoleAdvertiser)

	_, err := h.svc.CreateRequest(context.Background(), auth.Actor{UserID: stranger.ID, Role: enums.UserRoleAdvertiser}, CreateRequestInput{
		Amount:     decimal.NewFromInt(10),
		SourceType: enums.PayoutSourceRent,
		SourceID:   booking.ID,
	})
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = h.svc.CreateRequest(context.Background(), auth.Actor{UserID: stranger.ID, Role: enums.UserRoleAdvertiser}, CreateRequestInput{
		Amount:     decimal.NewFromInt(-5),
		SourceType: enums.PayoutSourceRent,
		SourceID:   booking.ID,
	})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = h.svc.CreateRequest(context.Background(), h.admin, CreateRequestInput{
		Amount:     decimal.NewFromInt(10),
		SourceType: enums.PayoutSourceRent,
		SourceID:   uuid.New(),
	})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateRequestRentRespectsWindowAndAmount(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	advertiser, fresh := h.rentSourceMovedIn(t, time.Now())
	self := auth.Actor{UserID: advertiser.ID, Role: enums.UserRoleAdvertiser}
	_, err := h.svc.CreateRequest(ctx, self, CreateRequestInput{Amount: rentNet, SourceType: enums.PayoutSourceRent, SourceID: fresh.ID})
	requireCode(t, err, pkgerrors.CodeStateConflict)

	unanchored := dbtest.Booking(t, h.conn, dbtest.BookingOptions{
		Status:       enums.BookingStatusPaid,
		AdvertiserID: &advertiser.ID,
		TotalPrice:   decimal.NewFromInt(5000),
	})
	_, err = h.svc.CreateRequest(ctx, self, CreateRequestInput{Amount: rentNet, SourceType: enums.PayoutSourceRent, SourceID: unanchored.ID})
	requireCode(t, err, pkgerrors.CodeDataQuality)

	advertiser, settled := h.rentSource(t)
	self = auth.Actor{UserID: advertiser.ID, Role: enums.UserRoleAdvertiser}
	for _, amount := range []int64{999999, 5000, 4499} {
		_, err = h.svc.CreateRequest(ctx, self, CreateRequestInput{Amount: decimal.NewFromInt(amount), SourceType: enums.PayoutSourceRent, SourceID: settled.ID})
		requireCode(t, err, pkgerrors.CodeValidation)
	}
	require.Equal(t, int64(0), dbtest.Count(t, h.conn, &models.PayoutRequest{}, ""))

	derived, err := h.svc.CreateRequest(ctx, h.admin, CreateRequestInput{SourceType: enums.PayoutSourceRent, SourceID: settled.ID})
	require.NoError(t, err)
	require.True(t, derived.Request.Amount.Equal(rentNet))

	approved, err := h.svc.Approve(ctx, h.admin, derived.Request.ID)
	require.NoError(t, err)
	require.True(t, approved.Payout.Amount.Equal(rentNet))
	require.True(t, approved.Payout.GrossAmount.Equal(approved.Payout.FeeAmount.Add(approved.Payout.Amount)))
}

func TestCreateRequestCancellationIsCappedAndNeedsCancelledBooking(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	advertiser, booking := h.rentSource(t)

	_, err := h.svc.CreateRequest(ctx, h.admin, CreateRequestInput{Amount: decimal.NewFromInt(100), SourceType: enums.PayoutSourceCancellation, SourceID: booking.ID})
	requireCode(t, err, pkgerrors.CodeStateConflict)

	require.NoError(t, h.conn.Model(&models.Booking{}).Where("id = ?", booking.ID).Update("status", enums.BookingStatusCancelled).Error)
	_, err = h.svc.CreateRequest(ctx, h.admin, CreateRequestInput{Amount: decimal.NewFromInt(4501), SourceType: enums.PayoutSourceCancellation, SourceID: booking.ID})
	requireCode(t, err, pkgerrors.CodeValidation)
	_, err = h.svc.CreateRequest(ctx, h.admin, CreateRequestInput{SourceType: enums.PayoutSourceCancellation, SourceID: booking.ID})
	requireCode(t, err, pkgerrors.CodeValidation)

	res, err := h.svc.CreateRequest(ctx, h.admin, CreateRequestInput{Amount: decimal.NewFromInt(1000), SourceType: enums.PayoutSourceCancellation, SourceID: booking.ID})
	require.NoError(t, err)
	require.Equal(t, advertiser.ID, res.Request.UserID)
	require.True(t, res.Request.Amount.Equal(decimal.NewFromInt(1000)))
}

func TestApproveRefusesSourceThatChanged(t *testing.T) {
	h := newHarness(t, nil)
	advertiser, booking := h.rentSource(t)
	request := h.fileRent(t, advertiser, booking)

	require.NoError(t, h.conn.Model(&models.Booking{}).Where("id = ?", booking.ID).Update("total_price", decimal.NewFromInt(6000)).Error)
	_, err := h.svc.Approve(context.Background(), h.admin, request.ID)
	requireCode(t, err, pkgerrors.CodeStateConflict)

	require.NoError(t, h.conn.Model(&models.Booking{}).Where("id = ?", booking.ID).Update("status", enums.BookingStatusCancelled).Error)
	_, err = h.svc.Approve(context.Background(), h.admin, request.ID)
	requireCode(t, err, pkgerrors.CodeStateConflict)
	require.Equal(t, int64(0), dbtest.Count(t, h.conn, &models.Payout{}, ""))
}

func TestCreateRequestRefusedWhenPayoutExists(t *testing.T) {
	h := newHarness(t, nil)
	advertiser, booking := h.rentSource(t)
	method := dbtest.PayoutMethod(t, h.conn, uuid.New())

	err := h.client.WithTx(context.Background(), func(tx *gorm.DB) error {
		_, created, err := h.writer.Create(context.Background(), tx, NewPayoutInput{
			PayeeID:       advertiser.ID,
			PayeeType:     enums.UserTypeAdvertiser,
			SourceType:    enums.PayoutSourceRent,
			SourceID:      booking.ID,
			Fees:          NoFees{}.Apply(booking.TotalPrice, decimal.Zero),
			Currency:      "EGP",
			PaymentMethod: payees.Snapshot(method, time.Now()),
			Actor:         auth.SystemActor(),
		})
		if err != nil {
			return err
		}
		require.True(t, created)
		return nil
	})
	require.NoError(t, err)

	_, err = h.svc.CreateRequest(context.Background(), auth.Actor{UserID: advertiser.ID, Role: enums.UserRoleAdvertiser}, CreateRequestInput{
		Amount:     rentNet,
		SourceType: enums.PayoutSourceRent,
		SourceID:   booking.ID,
	})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestApproveFreezesPaymentMethod(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	advertiser, booking := h.rentSource(t)
	request := h.fileRent(t, advertiser, booking)
	original := request.PaymentMethod.AccountNumber

	require.NoError(t, h.conn.Model(&models.PayoutMethod{}).
		Where("user_id = ?", advertiser.ID).
		Update("account_number", "EG000000000000000000000000001").Error)

	res, err := h.svc.Approve(ctx, h.admin, request.ID)
	require.NoError(t, err)
	require.Equal(t, enums.PayoutRequestStatusApproved, res.Request.Status)
	require.NotNil(t, res.Request.ApprovedBy)
	require.Equal(t, h.admin.UserID, *res.Request.ApprovedBy)
	require.NotNil(t, res.Request.ApprovedAt)

	require.Equal(t, enums.PayoutStatusPending, res.Payout.Status)
	require.Equal(t, enums.PayoutReasonRentMoveIn, res.Payout.Reason)
	require.Equal(t, original, res.Payout.PaymentMethod.AccountNumber)
	require.True(t, res.Payout.GrossAmount.Equal(decimal.NewFromInt(5000)))
	require.True(t, res.Payout.FeeAmount.Equal(decimal.NewFromInt(500)))
	require.True(t, res.Payout.Amount.Equal(rentNet))
	require.Equal(t, request.ID, *res.Payout.PayoutRequestID)

	_, err = h.svc.Approve(ctx, h.admin, request.ID)
	requireCode(t, err, pkgerrors.CodeStateConflict)
	require.Equal(t, int64(1), dbtest.Count(t, h.conn, &models.Payout{}, ""))
	require.Contains(t, h.notifier.kinds(), enums.NotificationPayoutRequestApproved)

	events := dbtest.Count(t, h.conn, &models.LedgerEvent{}, "source_id = ?", booking.ID)
	require.Equal(t, int64(3), events, "request created, payout created, request approved")
}

func TestRejectLifecycle(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	advertiser, booking := h.rentSource(t)
	request := h.fileRent(t, advertiser, booking)

	_, err := h.svc.Reject(ctx, h.admin, request.ID, "   ")
	requireCode(t, err, pkgerrors.CodeValidation)

	rejected, err := h.svc.Reject(ctx, h.admin, request.ID, "bank details do not match the contract")
	require.NoError(t, err)
	require.Equal(t, enums.PayoutRequestStatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	require.Equal(t, "bank details do not match the contract", *rejected.RejectionReason)
	require.Equal(t, h.admin.UserID, *rejected.RejectedBy)
	require.Equal(t, int64(0), dbtest.Count(t, h.conn, &models.Payout{}, ""))

	_, err = h.svc.Approve(ctx, h.admin, request.ID)
	requireCode(t, err, pkgerrors.CodeStateConflict)
	_, err = h.svc.Reject(ctx, h.admin, request.ID, "again")
	requireCode(t, err, pkgerrors.CodeStateConflict)

	last := h.notifier.last()
	require.Equal(t, enums.NotificationPayoutRequestRejected, last.Kind)
	require.Equal(t, advertiser.ID, last.RecipientID)

	refiled := h.fileRent(t, advertiser, booking)
	require.NotEqual(t, request.ID, refiled.ID)
}

func TestOnlyAdminsReview(t *testing.T) {
	h := newHarness(t, nil)
	advertiser, booking := h.rentSource(t)
	request := h.fileRent(t, advertiser, booking)
	self := auth.Actor{UserID: advertiser.ID, Role: enums.UserRoleAdvertiser}

	_, err := h.svc.Approve(context.Background(), self, request.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)
	_, err = h.svc.Reject(context.Background(), self, request.ID, "no")
	requireCode(t, err, pkgerrors.CodeForbidden)
	_, err = h.svc.MarkPaid(context.Background(), auth.SystemActor(), uuid.New())
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestMarkPaidExactlyOnce(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	advertiser, booking := h.rentSource(t)
	request := h.fileRent(t, advertiser, booking)
	approved, err := h.svc.Approve(ctx, h.admin, request.ID)
	require.NoError(t, err)

	paid, err := h.svc.MarkPaid(ctx, h.admin, approved.Payout.ID)
	require.NoError(t, err)
	require.Equal(t, enums.PayoutStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	require.Equal(t, h.admin.UserID, *paid.PaidBy)
	require.Equal(t, enums.NotificationPayoutPaid, h.notifier.last().Kind)

	_, err = h.svc.MarkPaid(ctx, h.admin, approved.Payout.ID)
	requireCode(t, err, pkgerrors.CodeStateConflict)

	_, err = h.svc.MarkPaid(ctx, h.admin, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestTenantRefundNotificationNamesProperty(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	tenant := dbtest.User(t, h.conn, enums.UserRoleClient)
	dbtest.PayoutMethod(t, h.conn, tenant.ID)
	refund := &models.RefundRequest{
		ID:           uuid.New(),
		BookingID:    uuid.New(),
		TenantID:     tenant.ID,
		PropertyName: "Zamalek Studio",
		Amount:       decimal.NewFromInt(1200),
	}
	dbtest.Insert(t, h.conn, refund)

	created, err := h.svc.CreateRequest(ctx, h.admin, CreateRequestInput{
		Amount:     decimal.NewFromInt(1200),
		SourceType: enums.PayoutSourceRefund,
		SourceID:   refund.ID,
	})
	require.NoError(t, err)
	require.Equal(t, tenant.ID, created.Request.UserID)
	require.Equal(t, enums.UserTypeClient, created.Request.UserType)

	approved, err := h.svc.Approve(ctx, h.admin, created.Request.ID)
	require.NoError(t, err)
	require.Equal(t, enums.PayoutReasonTenantRefund, approved.Payout.Reason)

	_, err = h.svc.MarkPaid(ctx, h.admin, approved.Payout.ID)
	require.NoError(t, err)
	last := h.notifier.last()
	require.Equal(t, enums.NotificationTenantRefundPaid, last.Kind)
	require.Equal(t, tenant.ID, last.RecipientID)
	require.Equal(t, "Zamalek Studio", last.Payload["property_name"])
}

func TestReferralRequestRequiresFinalizedDiscount(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	advertiser := dbtest.User(t, h.conn, enums.UserRoleAdvertiser)
	dbtest.PayoutMethod(t, h.conn, advertiser.ID)
	discount := &models.ReferralDiscount{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		AdvertiserID:  advertiser.ID,
		BookingAmount: decimal.NewFromInt(5000),
	}
	dbtest.Insert(t, h.conn, discount)
	self := auth.Actor{UserID: advertiser.ID, Role: enums.UserRoleAdvertiser}
	input := CreateRequestInput{Amount: decimal.NewFromInt(250), SourceType: enums.PayoutSourceReferral, SourceID: discount.ID}

	_, err := h.svc.CreateRequest(ctx, self, input)
	requireCode(t, err, pkgerrors.CodeStateConflict)

	require.NoError(t, h.conn.Model(&models.ReferralDiscount{}).Where("id = ?", discount.ID).Update("is_used", true).Error)
	_, err = h.svc.CreateRequest(ctx, self, input)
	requireCode(t, err, pkgerrors.CodeStateConflict)

	earned := decimal.NewFromInt(250)
	_, err = h.ledger.RecordEvent(ctx, ledger.RecordLedgerEventInput{
		Type:       enums.LedgerEventReferralDiscountFinalized,
		SourceType: enums.PayoutSourceReferral,
		SourceID:   discount.ID,
		Actor:      auth.SystemActor(),
		Amount:     &earned,
		Currency:   "EGP",
	})
	require.NoError(t, err)

	_, err = h.svc.CreateRequest(ctx, self, CreateRequestInput{Amount: decimal.NewFromInt(300), SourceType: enums.PayoutSourceReferral, SourceID: discount.ID})
	requireCode(t, err, pkgerrors.CodeValidation)

	res, err := h.svc.CreateRequest(ctx, self, input)
	require.NoError(t, err)
	require.Equal(t, enums.PayoutSourceReferral, res.Request.SourceType)
	require.True(t, res.Request.Amount.Equal(earned))
}

func TestApproveWithoutPaymentMethodIsPayeeUnresolvable(t *testing.T) {
	h := newHarness(t, nil)
	advertiser, booking := h.rentSource(t)
	request := h.fileRent(t, advertiser, booking)

	require.NoError(t, h.conn.Model(&models.PayoutRequest{}).
		Where("id = ?", request.ID).
		Update("payment_method", "{}").Error)
	require.NoError(t, h.conn.Where("user_id = ?", advertiser.ID).Delete(&models.PayoutMethod{}).Error)

	_, err := h.svc.Approve(context.Background(), h.admin, request.ID)
	requireCode(t, err, pkgerrors.CodePayeeUnresolvable)
	require.True(t, payees.IsMissingPaymentMethod(err))
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, []byte, map[string]string) (string, error) {
	return "", errors.New("pubsub unavailable")
}

func TestApproveSurvivesNotificationFailure(t *testing.T) {
	conn := dbtest.Open(t)
	dispatcher := notifications.NewDispatcher(notifications.DispatcherParams{
		Repo:      brokenNotifications{notifications.NewRepository(conn)},
		Publisher: failingPublisher{},
	})
	h := newHarnessOn(t, conn, dispatcher)
	advertiser, booking := h.rentSource(t)
	request := h.fileRent(t, advertiser, booking)

	res, err := h.svc.Approve(context.Background(), h.admin, request.ID)
	require.NoError(t, err)
	require.Equal(t, enums.PayoutRequestStatusApproved, res.Request.Status)
}

type brokenNotifications struct {
	notifications.Repository
}

func (brokenNotifications) Create(context.Context, *models.Notification) error {
	return errors.New("notifications table locked")
}

func TestListRequestsAndPayouts(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		advertiser, booking := h.rentSource(t)
		request := h.fileRent(t, advertiser, booking)
		if i == 0 {
			_, err := h.svc.Approve(ctx, h.admin, request.ID)
			require.NoError(t, err)
		}
	}

	pending := enums.PayoutRequestStatusPending
	page, err := h.svc.ListRequests(ctx, ListRequestsParams{Status: &pending, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotEmpty(t, page.NextCursor)

	next, err := h.svc.ListRequests(ctx, ListRequestsParams{Status: &pending, Limit: 1, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Items, 1)
	require.NotEqual(t, page.Items[0].ID, next.Items[0].ID)

	payouts, err := h.svc.ListPayouts(ctx, ListPayoutsParams{})
	require.NoError(t, err)
	require.Len(t, payouts.Items, 1)

	_, err = h.svc.ListPayouts(ctx, ListPayoutsParams{Cursor: "%%%"})
	requireCode(t, err, pkgerrors.CodeValidation)
}
