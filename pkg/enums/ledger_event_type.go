package enums

import "fmt"

// LedgerEventType classifies rows in the append-only finance audit log.
type LedgerEventType string

const (
	LedgerEventPayoutRequestCreated      LedgerEventType = "payout_request_created"
	LedgerEventPayoutRequestApproved     LedgerEventType = "payout_request_approved"
	LedgerEventPayoutRequestRejected     LedgerEventType = "payout_request_rejected"
	LedgerEventPayoutCreated             LedgerEventType = "payout_created"
	LedgerEventPayoutPaid                LedgerEventType = "payout_paid"
	LedgerEventReferralDiscountFinalized LedgerEventType = "referral_discount_finalized"
)

var validLedgerEventTypes = []LedgerEventType{
	LedgerEventPayoutRequestCreated,
	LedgerEventPayoutRequestApproved,
	LedgerEventPayoutRequestRejected,
	LedgerEventPayoutCreated,
	LedgerEventPayoutPaid,
	LedgerEventReferralDiscountFinalized,
}

// IsValid reports whether the value matches the canonical ledger event enum.
func (t LedgerEventType) IsValid() bool {
	for _, candidate := range validLedgerEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLedgerEventType converts raw input into LedgerEventType.
func ParseLedgerEventType(value string) (LedgerEventType, error) {
	for _, candidate := range validLedgerEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger event type %q", value)
}
