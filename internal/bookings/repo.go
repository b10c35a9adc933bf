package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
)

// Repository reads booking-domain records and writes only the finance latch
// columns on bookings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListSafetyWindowCandidates(ctx context.Context, limit int) ([]models.Booking, error)
	MarkSafetyWindowClosed(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	LatchPayoutCreated(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	FindRefundRequest(ctx context.Context, bookingID uuid.UUID) (*models.RefundRequest, error)
	FindRefundRequestByID(ctx context.Context, id uuid.UUID) (*models.RefundRequest, error)

	FindProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListAdvertisers(ctx context.Context) ([]models.User, error)
	FindPayoutMethod(ctx context.Context, userID uuid.UUID) (*models.PayoutMethod, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a bookings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListSafetyWindowCandidates returns bookings whose rent has not been released
// yet. The working set is re-derived on every run; window evaluation happens in
// Go because anchors are stored in several shapes.
func (r *repository) ListSafetyWindowCandidates(ctx context.Context, limit int) ([]models.Booking, error) {
	query := r.db.WithContext(ctx).
		Where("status IN ?", enums.RentPayoutStatuses).
		Where("payout_created = ?", false).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.Booking
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkSafetyWindowClosed sets the closed flag once; later calls leave the
// original timestamp untouched and report false.
func (r *repository) MarkSafetyWindowClosed(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND safety_window_closed = ?", id, false).
		Updates(map[string]any{
			"safety_window_closed":    true,
			"safety_window_closed_at": now,
			"updated_at":              now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// LatchPayoutCreated flips payout_created false->true. Only the caller that
// observes true may create the rent payout.
func (r *repository) LatchPayoutCreated(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND payout_created = ?", id, false).
		Updates(map[string]any{
			"payout_created":    true,
			"payout_created_at": now,
			"updated_at":        now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) FindRefundRequest(ctx context.Context, bookingID uuid.UUID) (*models.RefundRequest, error) {
	var refund models.RefundRequest
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		First(&refund).Error; err != nil {
		return nil, err
	}
	return &refund, nil
}

func (r *repository) FindRefundRequestByID(ctx context.Context, id uuid.UUID) (*models.RefundRequest, error) {
	var refund models.RefundRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&refund).Error; err != nil {
		return nil, err
	}
	return &refund, nil
}

func (r *repository) FindProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var property models.Property
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&property).Error; err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *repository) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) ListAdvertisers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("role = ?", enums.UserRoleAdvertiser).
		Order("created_at ASC, id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) FindPayoutMethod(ctx context.Context, userID uuid.UUID) (*models.PayoutMethod, error) {
	var method models.PayoutMethod
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&method).Error; err != nil {
		return nil, err
	}
	return &method, nil
}
