package referrals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/haani-backend/pkg/db/models"
)

// Repository persists referral discounts and referrer aggregates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindDiscount(ctx context.Context, id uuid.UUID) (*models.ReferralDiscount, error)
	ListPendingDiscounts(ctx context.Context, limit int) ([]models.ReferralDiscount, error)
	MarkDiscountUsed(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	LockReferral(ctx context.Context, advertiserID uuid.UUID) (*models.Referral, error)
	SaveReferralStats(ctx context.Context, referral *models.Referral) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a referrals repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindDiscount(ctx context.Context, id uuid.UUID) (*models.ReferralDiscount, error) {
	var discount models.ReferralDiscount
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&discount).Error; err != nil {
		return nil, err
	}
	return &discount, nil
}

// ListPendingDiscounts returns linked discounts that have not latched yet.
func (r *repository) ListPendingDiscounts(ctx context.Context, limit int) ([]models.ReferralDiscount, error) {
	query := r.db.WithContext(ctx).
		Where("booking_id IS NOT NULL").
		Where("is_used = ?", false).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.ReferralDiscount
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkDiscountUsed flips is_used false->true. Only the caller that observes
// true may credit the referrer.
func (r *repository) MarkDiscountUsed(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ReferralDiscount{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]any{
			"is_used": true,
			"used_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) LockReferral(ctx context.Context, advertiserID uuid.UUID) (*models.Referral, error) {
	var referral models.Referral
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("advertiser_id = ?", advertiserID).
		First(&referral).Error; err != nil {
		return nil, err
	}
	return &referral, nil
}

func (r *repository) SaveReferralStats(ctx context.Context, referral *models.Referral) error {
	return r.db.WithContext(ctx).
		Model(&models.Referral{}).
		Where("advertiser_id = ?", referral.AdvertiserID).
		Updates(map[string]any{
			"successful_bookings": referral.SuccessfulBookings,
			"monthly_earnings":    referral.MonthlyEarnings,
			"annual_earnings":     referral.AnnualEarnings,
			"referral_history":    referral.ReferralHistory,
			"updated_at":          referral.UpdatedAt,
		}).Error
}
