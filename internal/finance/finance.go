// Package finance assembles the payout, referral and notification services
// shared by the API and the cron worker.
package finance

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/haani-backend/internal/bookings"
	"github.com/angelmondragon/haani-backend/internal/ledger"
	"github.com/angelmondragon/haani-backend/internal/notifications"
	"github.com/angelmondragon/haani-backend/internal/payees"
	"github.com/angelmondragon/haani-backend/internal/payouts"
	"github.com/angelmondragon/haani-backend/internal/referrals"
	"github.com/angelmondragon/haani-backend/internal/safetywindow"
	"github.com/angelmondragon/haani-backend/pkg/config"
	"github.com/angelmondragon/haani-backend/pkg/db"
	"github.com/angelmondragon/haani-backend/pkg/logger"
	"github.com/angelmondragon/haani-backend/pkg/metrics"
	"github.com/angelmondragon/haani-backend/pkg/workerpool"
)

// Params wires Components. Publisher and Registerer may be nil.
type Params struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         *db.Client
	Publisher  notifications.Publisher
	Registerer prometheus.Registerer
}

// Components are the finance services ready to be mounted on a router or a
// scheduler.
type Components struct {
	Payouts       payouts.Service
	Ledger        ledger.Service
	Inbox         notifications.Service
	Notifications notifications.Repository
	Referrals     *referrals.Finalizer
	SafetyWindow  *safetywindow.Finalizer
}

func New(p Params) (*Components, error) {
	if p.Config == nil {
		return nil, fmt.Errorf("config required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	conn := p.DB.DB()
	finCfg := p.Config.Finance

	var finMetrics *metrics.FinalizerMetrics
	if p.Registerer != nil {
		finMetrics = metrics.NewFinalizerMetrics(p.Registerer)
	}

	notificationRepo := notifications.NewRepository(conn)
	inbox, err := notifications.NewService(notificationRepo)
	if err != nil {
		return nil, fmt.Errorf("notifications service: %w", err)
	}
	notifier := notifications.NewDispatcher(notifications.DispatcherParams{
		Repo:      notificationRepo,
		Publisher: p.Publisher,
		Logger:    p.Logger,
	})

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn))
	if err != nil {
		return nil, fmt.Errorf("ledger service: %w", err)
	}
	guard := ledger.NewGuard(conn)

	bookingsRepo := bookings.NewRepository(conn)
	referralsRepo := referrals.NewRepository(conn)
	resolver, err := payees.NewResolver(bookingsRepo)
	if err != nil {
		return nil, fmt.Errorf("payee resolver: %w", err)
	}

	payoutsRepo := payouts.NewRepository(conn)
	writer, err := payouts.NewWriter(payoutsRepo, guard, ledgerSvc)
	if err != nil {
		return nil, fmt.Errorf("payout writer: %w", err)
	}
	fees, err := payouts.NewFeePolicy(finCfg)
	if err != nil {
		return nil, fmt.Errorf("fee policy: %w", err)
	}

	pool := workerpool.Options{Concurrency: finCfg.WorkerConcurrency, ItemTimeout: finCfg.ItemTimeout}

	payoutSvc, err := payouts.NewService(payouts.ServiceParams{
		Repo:         payoutsRepo,
		Tx:           p.DB,
		Writer:       writer,
		Guard:        guard,
		Ledger:       ledgerSvc,
		Resolver:     resolver,
		Sources:      bookingsRepo,
		Discounts:    referralsRepo,
		Notifier:     notifier,
		Metrics:      finMetrics,
		Logger:       p.Logger,
		Currency:     finCfg.Currency,
		Fees:         fees,
		SafetyWindow: finCfg.SafetyWindow,
	})
	if err != nil {
		return nil, fmt.Errorf("payouts service: %w", err)
	}

	referralFinalizer, err := referrals.NewFinalizer(referrals.FinalizerParams{
		Repo:         referralsRepo,
		Bookings:     bookingsRepo,
		Tx:           p.DB,
		Ledger:       ledgerSvc,
		Notifier:     notifier,
		Metrics:      finMetrics,
		Logger:       p.Logger,
		RefundWindow: finCfg.RefundWindow,
		Pool:         pool,
		BatchLimit:   finCfg.BatchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("referral finalizer: %w", err)
	}

	safetyFinalizer, err := safetywindow.NewFinalizer(safetywindow.FinalizerParams{
		Bookings:     bookingsRepo,
		Resolver:     resolver,
		Writer:       writer,
		Fees:         fees,
		Tx:           p.DB,
		Notifier:     notifier,
		Metrics:      finMetrics,
		Logger:       p.Logger,
		SafetyWindow: finCfg.SafetyWindow,
		Currency:     finCfg.Currency,
		Pool:         pool,
		BatchLimit:   finCfg.BatchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("safety window finalizer: %w", err)
	}

	return &Components{
		Payouts:       payoutSvc,
		Ledger:        ledgerSvc,
		Inbox:         inbox,
		Notifications: notificationRepo,
		Referrals:     referralFinalizer,
		SafetyWindow:  safetyFinalizer,
	}, nil
}
