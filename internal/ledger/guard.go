package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/haani-backend/pkg/db"
	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
)

// Scope separates claims for the two record kinds a source can produce.
type Scope string

const (
	ScopePayoutRequest Scope = "payout_request"
	ScopePayout        Scope = "payout"
)

// ClaimKey identifies what is being claimed.
type ClaimKey struct {
	Scope      Scope
	SourceType enums.PayoutSourceType
	SourceID   uuid.UUID
}

func (k ClaimKey) validate() error {
	if k.Scope != ScopePayoutRequest && k.Scope != ScopePayout {
		return fmt.Errorf("invalid claim scope %q", k.Scope)
	}
	if !k.SourceType.IsValid() {
		return fmt.Errorf("invalid source type %q", k.SourceType)
	}
	if k.SourceID == uuid.Nil {
		return fmt.Errorf("source id is required")
	}
	return nil
}

// ClaimResult is the outcome of TryClaim.
type ClaimResult int

const (
	Claimed ClaimResult = iota + 1
	AlreadyClaimed
)

func (r ClaimResult) String() string {
	switch r {
	case Claimed:
		return "claimed"
	case AlreadyClaimed:
		return "already_claimed"
	}
	return "unknown"
}

// Claimer guarantees at most one record per (scope, source). Claims are plain
// rows, so the guarantee holds across processes and overlapping runs.
type Claimer interface {
	WithTx(tx *gorm.DB) Claimer
	TryClaim(ctx context.Context, key ClaimKey, claimant uuid.UUID) (ClaimResult, error)
	Release(ctx context.Context, key ClaimKey) error
	Holder(ctx context.Context, key ClaimKey) (uuid.UUID, bool, error)
}

// Guard is the database-backed Claimer.
type Guard struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGuard returns a guard bound to the provided database.
func NewGuard(conn *gorm.DB) *Guard {
	return &Guard{db: conn, now: time.Now}
}

func (g *Guard) WithTx(tx *gorm.DB) Claimer {
	if tx == nil {
		return g
	}
	return &Guard{db: tx, now: g.now}
}

// TryClaim inserts the claim row with ON CONFLICT DO NOTHING. Losing the race
// is reported as AlreadyClaimed, never as an error.
func (g *Guard) TryClaim(ctx context.Context, key ClaimKey, claimant uuid.UUID) (ClaimResult, error) {
	if err := key.validate(); err != nil {
		return 0, err
	}
	if claimant == uuid.Nil {
		return 0, fmt.Errorf("claimant id is required")
	}

	claim := models.LedgerClaim{
		Scope:      string(key.Scope),
		SourceType: key.SourceType,
		SourceID:   key.SourceID,
		ClaimedBy:  claimant,
		CreatedAt:  g.now().UTC(),
	}
	result := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&claim)
	if result.Error != nil {
		if db.IsUniqueViolation(result.Error, "") {
			return AlreadyClaimed, nil
		}
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return AlreadyClaimed, nil
	}
	return Claimed, nil
}

// Release drops a claim so the source may be claimed again.
func (g *Guard) Release(ctx context.Context, key ClaimKey) error {
	if err := key.validate(); err != nil {
		return err
	}
	return g.db.WithContext(ctx).
		Where("scope = ? AND source_type = ? AND source_id = ?", string(key.Scope), key.SourceType, key.SourceID).
		Delete(&models.LedgerClaim{}).Error
}

// Holder returns the id of the record holding the claim.
func (g *Guard) Holder(ctx context.Context, key ClaimKey) (uuid.UUID, bool, error) {
	if err := key.validate(); err != nil {
		return uuid.Nil, false, err
	}
	var claim models.LedgerClaim
	err := g.db.WithContext(ctx).
		Where("scope = ? AND source_type = ? AND source_id = ?", string(key.Scope), key.SourceType, key.SourceID).
		First(&claim).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return claim.ClaimedBy, true, nil
}
