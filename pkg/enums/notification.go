package enums

import "fmt"

// NotificationKind selects the template used for a payee notification.
type NotificationKind string

const (
	NotificationPayoutCreated         NotificationKind = "payout_created"
	NotificationPayoutMethodMissing   NotificationKind = "payout_method_missing"
	NotificationPayoutRequestApproved NotificationKind = "payout_request_approved"
	NotificationPayoutRequestRejected NotificationKind = "payout_request_rejected"
	NotificationPayoutPaid            NotificationKind = "payout_paid"
	NotificationTenantRefundPaid      NotificationKind = "tenant_refund_paid"
	NotificationReferralBonusEarned   NotificationKind = "referral_bonus_earned"
)

var validNotificationKinds = []NotificationKind{
	NotificationPayoutCreated,
	NotificationPayoutMethodMissing,
	NotificationPayoutRequestApproved,
	NotificationPayoutRequestRejected,
	NotificationPayoutPaid,
	NotificationTenantRefundPaid,
	NotificationReferralBonusEarned,
}

// IsValid checks whether the given kind matches the canonical enum.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw strings into NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
