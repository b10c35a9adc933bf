package finance

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/haani-backend/internal/notifications"
	"github.com/angelmondragon/haani-backend/internal/payouts"
	"github.com/angelmondragon/haani-backend/pkg/auth"
	"github.com/angelmondragon/haani-backend/pkg/config"
	"github.com/angelmondragon/haani-backend/pkg/db/dbtest"
	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
	"github.com/angelmondragon/haani-backend/pkg/logger"
)

type capturePublisher struct {
	mu    sync.Mutex
	kinds []string
}

func (p *capturePublisher) Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kinds = append(p.kinds, attrs["kind"])
	return "msg-1", nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		Finance: config.FinanceConfig{
			RefundWindow:       24 * time.Hour,
			SafetyWindow:       24 * time.Hour,
			PlatformFeePercent: decimal.NewFromInt(10),
			PremiumFeePolicy:   enums.PremiumFeePolicyExcluded,
			Currency:           "EGP",
			WorkerConcurrency:  2,
		},
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	_, err := New(Params{Logger: logg})
	require.Error(t, err)
	_, err = New(Params{Config: testConfig(), Logger: logg})
	require.Error(t, err)

	cfg := testConfig()
	cfg.Finance.PlatformFeePercent = decimal.NewFromInt(120)
	_, err = New(Params{Config: cfg, Logger: logg, DB: dbtest.Client(t)})
	require.Error(t, err)
}

func TestComponentsPayRentAfterSafetyWindow(t *testing.T) {
	client := dbtest.Client(t)
	conn := client.DB()
	publisher := &capturePublisher{}

	components, err := New(Params{
		Config:     testConfig(),
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:         client,
		Publisher:  publisher,
		Registerer: prometheus.NewRegistry(),
	})
	require.NoError(t, err)

	advertiser := dbtest.User(t, conn, enums.UserRoleAdvertiser)
	dbtest.PayoutMethod(t, conn, advertiser.ID)
	property := dbtest.Property(t, conn, &advertiser.ID, "Zamalek Loft")
	movedIn := time.Now().Add(-48 * time.Hour)
	booking := dbtest.Booking(t, conn, dbtest.BookingOptions{
		Status:       enums.BookingStatusMovedIn,
		AdvertiserID: &advertiser.ID,
		PropertyID:   property.ID,
		TotalPrice:   decimal.NewFromInt(8000),
		MovedInAt:    &movedIn,
	})

	res, err := components.SafetyWindow.ProcessSafetyWindowClosures(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.PayoutsCreated)

	page, err := components.Payouts.ListPayouts(context.Background(), payouts.ListPayoutsParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	payout := page.Items[0]
	require.Equal(t, booking.ID, payout.SourceID)
	require.True(t, payout.FeeAmount.Equal(decimal.NewFromInt(800)))
	require.True(t, payout.Amount.Equal(decimal.NewFromInt(7200)))

	inbox, err := components.Inbox.List(context.Background(), notifications.ListParams{RecipientID: advertiser.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, inbox.Items, 1)
	require.Equal(t, enums.NotificationPayoutCreated, inbox.Items[0].Kind)

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	require.Len(t, publisher.kinds, 1)

	referralRes, err := components.Referrals.FinalizeReferralDiscounts(context.Background())
	require.NoError(t, err)
	require.Zero(t, referralRes.Total)
}

func newComponents(t *testing.T, cfg *config.Config) (*Components, *gorm.DB) {
	t.Helper()
	client := dbtest.Client(t)
	components, err := New(Params{
		Config: cfg,
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:     client,
	})
	require.NoError(t, err)
	return components, client.DB()
}

func movedInBooking(t *testing.T, conn *gorm.DB, advertiserID uuid.UUID, total int64, movedIn time.Time) *models.Booking {
	t.Helper()
	return dbtest.Booking(t, conn, dbtest.BookingOptions{
		Status:       enums.BookingStatusMovedIn,
		AdvertiserID: &advertiserID,
		TotalPrice:   decimal.NewFromInt(total),
		MovedInAt:    &movedIn,
	})
}

func TestComponentsHonorBatchLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Finance.BatchLimit = 1
	components, conn := newComponents(t, cfg)

	advertiser := dbtest.User(t, conn, enums.UserRoleAdvertiser)
	dbtest.PayoutMethod(t, conn, advertiser.ID)
	movedIn := time.Now().Add(-48 * time.Hour)
	movedInBooking(t, conn, advertiser.ID, 1000, movedIn)
	movedInBooking(t, conn, advertiser.ID, 2000, movedIn)

	first, err := components.SafetyWindow.ProcessSafetyWindowClosures(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.Processed)
	require.Equal(t, 1, first.PayoutsCreated)

	second, err := components.SafetyWindow.ProcessSafetyWindowClosures(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, second.PayoutsCreated)
	require.Equal(t, int64(2), dbtest.Count(t, conn, &models.Payout{}, ""))
}

func TestManualRentRequestUsesFinalizerRules(t *testing.T) {
	components, conn := newComponents(t, testConfig())
	ctx := context.Background()
	admin := auth.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}

	advertiser := dbtest.User(t, conn, enums.UserRoleAdvertiser)
	dbtest.PayoutMethod(t, conn, advertiser.ID)
	self := auth.Actor{UserID: advertiser.ID, Role: enums.UserRoleAdvertiser}

	fresh := movedInBooking(t, conn, advertiser.ID, 5000, time.Now())
	_, err := components.Payouts.CreateRequest(ctx, self, payouts.CreateRequestInput{
		Amount:     decimal.NewFromInt(4500),
		SourceType: enums.PayoutSourceRent,
		SourceID:   fresh.ID,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	settled := movedInBooking(t, conn, advertiser.ID, 5000, time.Now().Add(-48*time.Hour))
	_, err = components.Payouts.CreateRequest(ctx, self, payouts.CreateRequestInput{
		Amount:     decimal.NewFromInt(999999),
		SourceType: enums.PayoutSourceRent,
		SourceID:   settled.ID,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	created, err := components.Payouts.CreateRequest(ctx, self, payouts.CreateRequestInput{
		Amount:     decimal.NewFromInt(4500),
		SourceType: enums.PayoutSourceRent,
		SourceID:   settled.ID,
	})
	require.NoError(t, err)
	approved, err := components.Payouts.Approve(ctx, admin, created.Request.ID)
	require.NoError(t, err)
	require.True(t, approved.Payout.GrossAmount.Equal(decimal.NewFromInt(5000)))
	require.True(t, approved.Payout.FeeAmount.Equal(decimal.NewFromInt(500)))
	require.True(t, approved.Payout.Amount.Equal(decimal.NewFromInt(4500)))

	trail, err := components.Ledger.ListBySource(ctx, enums.PayoutSourceRent, settled.ID)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	require.Equal(t, enums.LedgerEventPayoutRequestCreated, trail[0].Type)
}
