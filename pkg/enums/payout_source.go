package enums

import "fmt"

// PayoutSourceType names the kind of record that caused a payout.
type PayoutSourceType string

const (
	PayoutSourceRent         PayoutSourceType = "rent"
	PayoutSourceReferral     PayoutSourceType = "referral"
	PayoutSourceRefund       PayoutSourceType = "refund"
	PayoutSourceCancellation PayoutSourceType = "cancellation"
)

var validPayoutSourceTypes = []PayoutSourceType{
	PayoutSourceRent,
	PayoutSourceReferral,
	PayoutSourceRefund,
	PayoutSourceCancellation,
}

// IsValid reports whether the value is known.
func (s PayoutSourceType) IsValid() bool {
	for _, candidate := range validPayoutSourceTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// Reason maps the source to the closed set of payout reasons.
func (s PayoutSourceType) Reason() PayoutReason {
	switch s {
	case PayoutSourceRent:
		return PayoutReasonRentMoveIn
	case PayoutSourceCancellation:
		return PayoutReasonCushionPreMoveCancel
	case PayoutSourceReferral:
		return PayoutReasonReferralCommission
	case PayoutSourceRefund:
		return PayoutReasonTenantRefund
	}
	return ""
}

// PayeeType is the party that receives money for this kind of source.
func (s PayoutSourceType) PayeeType() UserType {
	if s == PayoutSourceRefund {
		return UserTypeClient
	}
	return UserTypeAdvertiser
}

// ParsePayoutSourceType converts raw input into a PayoutSourceType.
func ParsePayoutSourceType(value string) (PayoutSourceType, error) {
	for _, candidate := range validPayoutSourceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout source type %q", value)
}

// PayoutReason is the human-facing label stored on a payout.
type PayoutReason string

const (
	PayoutReasonRentMoveIn           PayoutReason = "Rent – Move-in"
	PayoutReasonCushionPreMoveCancel PayoutReason = "Cushion – Pre-move Cancel"
	PayoutReasonReferralCommission   PayoutReason = "Referral Commission"
	PayoutReasonTenantRefund         PayoutReason = "Tenant Refund"
)

var validPayoutReasons = []PayoutReason{
	PayoutReasonRentMoveIn,
	PayoutReasonCushionPreMoveCancel,
	PayoutReasonReferralCommission,
	PayoutReasonTenantRefund,
}

// IsValid reports whether the value is known.
func (r PayoutReason) IsValid() bool {
	for _, candidate := range validPayoutReasons {
		if candidate == r {
			return true
		}
	}
	return false
}
