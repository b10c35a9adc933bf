package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/haani-backend/pkg/enums"
)

// ReferralHistoryEntry is one referred tenant in a referrer's history.
type ReferralHistoryEntry struct {
	TenantID      uuid.UUID                   `json:"tenantId"`
	TenantName    string                      `json:"tenantName,omitempty"`
	Status        enums.ReferralHistoryStatus `json:"status"`
	PropertyID    *uuid.UUID                  `json:"propertyId,omitempty"`
	PropertyName  string                      `json:"propertyName,omitempty"`
	BookingAmount decimal.Decimal             `json:"bookingAmount"`
	EarnedAmount  decimal.Decimal             `json:"earnedAmount"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

// ReferralHistory is stored as a jsonb array on the referral row.
type ReferralHistory []ReferralHistoryEntry

// Upsert replaces the entry for entry.TenantID, or appends it when absent.
// It reports whether an existing entry was replaced.
func (h ReferralHistory) Upsert(entry ReferralHistoryEntry) (ReferralHistory, bool) {
	for i := range h {
		if h[i].TenantID == entry.TenantID {
			out := append(ReferralHistory(nil), h...)
			out[i] = entry
			return out, true
		}
	}
	return append(append(ReferralHistory(nil), h...), entry), false
}

// Find returns the entry for tenantID.
func (h ReferralHistory) Find(tenantID uuid.UUID) (ReferralHistoryEntry, bool) {
	for _, entry := range h {
		if entry.TenantID == tenantID {
			return entry, true
		}
	}
	return ReferralHistoryEntry{}, false
}

// Value implements driver.Valuer.
func (h ReferralHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]ReferralHistoryEntry(h))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (h *ReferralHistory) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*h = ReferralHistory{}
		return nil
	}
	var out []ReferralHistoryEntry
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("ReferralHistory: %w", err)
	}
	*h = out
	return nil
}
