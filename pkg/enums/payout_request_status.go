package enums

import "fmt"

// PayoutRequestStatus tracks a payout proposal through admin review.
type PayoutRequestStatus string

const (
	PayoutRequestStatusPending  PayoutRequestStatus = "pending"
	PayoutRequestStatusApproved PayoutRequestStatus = "approved"
	PayoutRequestStatusRejected PayoutRequestStatus = "rejected"
)

var validPayoutRequestStatuses = []PayoutRequestStatus{
	PayoutRequestStatusPending,
	PayoutRequestStatusApproved,
	PayoutRequestStatusRejected,
}

// IsValid reports whether the value is known.
func (s PayoutRequestStatus) IsValid() bool {
	for _, candidate := range validPayoutRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsActive reports whether the request still blocks a new request for the same source.
func (s PayoutRequestStatus) IsActive() bool {
	return s == PayoutRequestStatusPending || s == PayoutRequestStatusApproved
}

// ParsePayoutRequestStatus converts raw input into a PayoutRequestStatus.
func ParsePayoutRequestStatus(value string) (PayoutRequestStatus, error) {
	for _, candidate := range validPayoutRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout request status %q", value)
}
