package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/haani-backend/api/controllers"
	"github.com/angelmondragon/haani-backend/api/middleware"
	"github.com/angelmondragon/haani-backend/internal/cron"
	"github.com/angelmondragon/haani-backend/internal/ledger"
	"github.com/angelmondragon/haani-backend/internal/notifications"
	"github.com/angelmondragon/haani-backend/internal/payouts"
	"github.com/angelmondragon/haani-backend/pkg/config"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	"github.com/angelmondragon/haani-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/haani-backend/pkg/redis"
)

// SafetyWindowFinalizer is the batch and on-demand surface of
// safetywindow.Finalizer.
type SafetyWindowFinalizer interface {
	cron.SafetyWindowProcessor
	controllers.SafetyWindowChecker
}

// Params collects what the router needs. Redis, JobLock and Gatherer are
// optional.
type Params struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        controllers.Pinger
	Redis     *pkgredis.Client
	Gatherer  prometheus.Gatherer
	JobLock   cron.Lock
	Payouts   payouts.Service
	Ledger    ledger.Service
	Inbox     notifications.Service
	Referrals cron.ReferralFinalizer
	Safety    SafetyWindowFinalizer
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	readiness := map[string]controllers.Pinger{"database": p.DB}
	var idem pkgredis.IdempotencyStore
	if p.Redis != nil {
		readiness["redis"] = p.Redis
		idem = p.Redis
	}
	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if len(cfg.App.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.App.CORSOrigins))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/internal/v1/jobs", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleSystem))
		r.Post("/referral-discounts/finalize", controllers.FinalizeReferralDiscounts(p.Referrals, p.JobLock, logg))
		r.Post("/safety-windows/process", controllers.ProcessSafetyWindowClosures(p.Safety, p.JobLock, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
		r.Use(middleware.Idempotency(idem, logg))

		r.Post("/bookings/{bookingId}/safety-window/check", controllers.CheckSafetyWindow(p.Safety, logg))
		r.Get("/ledger", controllers.ListLedgerEvents(p.Ledger, logg))
		r.Route("/payout-requests", func(r chi.Router) {
			r.Get("/", controllers.ListPayoutRequests(p.Payouts, logg))
			r.Post("/{requestId}/approve", controllers.ApprovePayoutRequest(p.Payouts, logg))
			r.Post("/{requestId}/reject", controllers.RejectPayoutRequest(p.Payouts, logg))
		})
		r.Route("/payouts", func(r chi.Router) {
			r.Get("/", controllers.ListPayouts(p.Payouts, logg))
			r.Post("/{payoutId}/mark-paid", controllers.MarkPayoutPaid(p.Payouts, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idem, logg))

		r.With(middleware.RequireRole(logg, enums.UserRoleAdvertiser, enums.UserRoleClient, enums.UserRoleAdmin)).
			Post("/payout-requests", controllers.CreatePayoutRequest(p.Payouts, logg))
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(p.Inbox, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.Inbox, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(p.Inbox, logg))
		})
	})

	return r
}
