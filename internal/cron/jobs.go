package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/haani-backend/internal/referrals"
	"github.com/angelmondragon/haani-backend/internal/safetywindow"
)

// ReferralFinalizer is implemented by referrals.Finalizer.
type ReferralFinalizer interface {
	FinalizeReferralDiscounts(ctx context.Context) (referrals.BatchResult, error)
}

// SafetyWindowProcessor is implemented by safetywindow.Finalizer.
type SafetyWindowProcessor interface {
	ProcessSafetyWindowClosures(ctx context.Context) (safetywindow.BatchResult, error)
}

// NewReferralDiscountJob wraps the referral finalizer. A run with failed items
// reports an error so the failure counter moves.
func NewReferralDiscountJob(finalizer ReferralFinalizer) (Job, error) {
	if finalizer == nil {
		return nil, fmt.Errorf("referral finalizer required")
	}
	return &referralDiscountJob{finalizer: finalizer}, nil
}

type referralDiscountJob struct {
	finalizer ReferralFinalizer
}

func (j *referralDiscountJob) Name() string { return referrals.JobName }

func (j *referralDiscountJob) Run(ctx context.Context) error {
	res, err := j.finalizer.FinalizeReferralDiscounts(ctx)
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d of %d referral discounts failed", res.Failed, res.Total)
	}
	return nil
}

// NewSafetyWindowJob wraps the rent payout finalizer.
func NewSafetyWindowJob(processor SafetyWindowProcessor) (Job, error) {
	if processor == nil {
		return nil, fmt.Errorf("safety window processor required")
	}
	return &safetyWindowJob{processor: processor}, nil
}

type safetyWindowJob struct {
	processor SafetyWindowProcessor
}

func (j *safetyWindowJob) Name() string { return safetywindow.JobName }

func (j *safetyWindowJob) Run(ctx context.Context) error {
	res, err := j.processor.ProcessSafetyWindowClosures(ctx)
	if err != nil {
		return err
	}
	if res.Errors > 0 {
		return fmt.Errorf("%d of %d rent payouts failed", res.Errors, res.Processed)
	}
	return nil
}
