package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
)

// Repository persists ledger events. There is deliberately no update or delete:
// rows are append-only, and Postgres enforces the same with a trigger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.LedgerEvent) error
	FindLatest(ctx context.Context, sourceType enums.PayoutSourceType, sourceID uuid.UUID, eventType enums.LedgerEventType) (*models.LedgerEvent, error)
	ListBySource(ctx context.Context, sourceType enums.PayoutSourceType, sourceID uuid.UUID) ([]models.LedgerEvent, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *models.LedgerEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// FindLatest returns the newest event of eventType for the source, or
// gorm.ErrRecordNotFound.
func (r *repository) FindLatest(ctx context.Context, sourceType enums.PayoutSourceType, sourceID uuid.UUID, eventType enums.LedgerEventType) (*models.LedgerEvent, error) {
	var event models.LedgerEvent
	if err := r.db.WithContext(ctx).
		Where("source_type = ? AND source_id = ? AND type = ?", sourceType, sourceID, eventType).
		Order("created_at DESC").
		Order("id DESC").
		Take(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// ListBySource returns the audit trail for one source, oldest first. id breaks
// ties between events written in the same transaction.
func (r *repository) ListBySource(ctx context.Context, sourceType enums.PayoutSourceType, sourceID uuid.UUID) ([]models.LedgerEvent, error) {
	var events []models.LedgerEvent
	if err := r.db.WithContext(ctx).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
