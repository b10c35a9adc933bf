package payouts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	"github.com/angelmondragon/haani-backend/pkg/pagination"
)

// Repository persists payout requests and payouts. Status changes are
// conditional updates so concurrent callers cannot both win a transition.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateRequest(ctx context.Context, request *models.PayoutRequest) error
	FindRequest(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error)
	ApproveRequest(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, now time.Time) (bool, error)
	RejectRequest(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, reason string, now time.Time) (bool, error)
	ListRequests(ctx context.Context, params listRequestsParams) ([]models.PayoutRequest, error)

	CreatePayout(ctx context.Context, payout *models.Payout) error
	FindPayout(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	FindPayoutBySource(ctx context.Context, sourceType enums.PayoutSourceType, sourceID uuid.UUID) (*models.Payout, error)
	MarkPaid(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, now time.Time) (bool, error)
	ListPayouts(ctx context.Context, params listPayoutsParams) ([]models.Payout, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payouts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type listRequestsParams struct {
	Status     *enums.PayoutRequestStatus
	UserID     *uuid.UUID
	SourceType *enums.PayoutSourceType
	Limit      int
	Cursor     *pagination.Cursor
}

type listPayoutsParams struct {
	Status     *enums.PayoutStatus
	PayeeID    *uuid.UUID
	SourceType *enums.PayoutSourceType
	Limit      int
	Cursor     *pagination.Cursor
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateRequest(ctx context.Context, request *models.PayoutRequest) error {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindRequest(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error) {
	var request models.PayoutRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) ApproveRequest(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PayoutRequest{}).
		Where("id = ? AND status = ?", id, enums.PayoutRequestStatusPending).
		Updates(map[string]any{
			"status":      enums.PayoutRequestStatusApproved,
			"approved_by": actorID,
			"approved_at": now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) RejectRequest(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, reason string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PayoutRequest{}).
		Where("id = ? AND status = ?", id, enums.PayoutRequestStatusPending).
		Updates(map[string]any{
			"status":           enums.PayoutRequestStatusRejected,
			"rejected_by":      actorID,
			"rejected_at":      now,
			"rejection_reason": reason,
			"updated_at":       now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListRequests(ctx context.Context, params listRequestsParams) ([]models.PayoutRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.PayoutRequest{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.SourceType != nil {
		query = query.Where("source_type = ?", *params.SourceType)
	}

	var rows []models.PayoutRequest
	if err := query.Scopes(pagination.Keyset(params.Cursor, params.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreatePayout(ctx context.Context, payout *models.Payout) error {
	if payout.ID == uuid.Nil {
		payout.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *repository) FindPayout(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&payout).Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *repository) FindPayoutBySource(ctx context.Context, sourceType enums.PayoutSourceType, sourceID uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	if err := r.db.WithContext(ctx).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		First(&payout).Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

// MarkPaid moves a payout pending->paid. False means it was not pending.
func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("id = ? AND status = ?", id, enums.PayoutStatusPending).
		Updates(map[string]any{
			"status":     enums.PayoutStatusPaid,
			"paid_by":    actorID,
			"paid_at":    now,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListPayouts(ctx context.Context, params listPayoutsParams) ([]models.Payout, error) {
	query := r.db.WithContext(ctx).Model(&models.Payout{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.PayeeID != nil {
		query = query.Where("payee_id = ?", *params.PayeeID)
	}
	if params.SourceType != nil {
		query = query.Where("source_type = ?", *params.SourceType)
	}

	var rows []models.Payout
	if err := query.Scopes(pagination.Keyset(params.Cursor, params.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
