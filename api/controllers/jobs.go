package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/haani-backend/api/responses"
	"github.com/angelmondragon/haani-backend/internal/cron"
	"github.com/angelmondragon/haani-backend/internal/referrals"
	"github.com/angelmondragon/haani-backend/internal/safetywindow"
	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
	"github.com/angelmondragon/haani-backend/pkg/logger"
)

// FinalizeReferralDiscounts runs the referral finalizer once on demand. When
// lock is set, a run already holding the job lock is reported as a conflict.
func FinalizeReferralDiscounts(finalizer cron.ReferralFinalizer, lock cron.Lock, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if finalizer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "referral finalizer unavailable"))
			return
		}
		var res referrals.BatchResult
		err := withJobLock(r.Context(), lock, referrals.JobName, func(ctx context.Context) error {
			var runErr error
			res, runErr = finalizer.FinalizeReferralDiscounts(ctx)
			return runErr
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

// ProcessSafetyWindowClosures runs the rent payout finalizer once on demand.
func ProcessSafetyWindowClosures(processor cron.SafetyWindowProcessor, lock cron.Lock, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if processor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "safety window finalizer unavailable"))
			return
		}
		var res safetywindow.BatchResult
		err := withJobLock(r.Context(), lock, safetywindow.JobName, func(ctx context.Context) error {
			var runErr error
			res, runErr = processor.ProcessSafetyWindowClosures(ctx)
			return runErr
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

func withJobLock(ctx context.Context, lock cron.Lock, job string, fn func(context.Context) error) error {
	if lock == nil {
		return fn(ctx)
	}
	token, ok, err := lock.Acquire(ctx, job)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire job lock")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "job is already running").WithDetails(map[string]any{"job": job})
	}
	defer func() {
		_ = lock.Release(context.WithoutCancel(ctx), job, token)
	}()
	return fn(ctx)
}
