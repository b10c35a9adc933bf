package notifications

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/haani-backend/pkg/enums"
)

func render(kind enums.NotificationKind, payload map[string]any) (string, string) {
	amount := strings.TrimSpace(field(payload, "amount", "") + " " + field(payload, "currency", ""))
	switch kind {
	case enums.NotificationPayoutCreated:
		return "Payout scheduled",
			fmt.Sprintf("A payout of %s (%s) is being prepared.", amount, field(payload, "reason", "payout"))
	case enums.NotificationPayoutMethodMissing:
		return "Add a payout method",
			"We could not release your payout because no payout method is on file. Add one to receive your money."
	case enums.NotificationPayoutRequestApproved:
		return "Payout request approved",
			fmt.Sprintf("Your payout request for %s was approved.", amount)
	case enums.NotificationPayoutRequestRejected:
		return "Payout request rejected",
			fmt.Sprintf("Your payout request for %s was rejected: %s", amount, field(payload, "reason", "no reason given"))
	case enums.NotificationPayoutPaid:
		return "Payout sent",
			fmt.Sprintf("%s has been sent to your payout method.", amount)
	case enums.NotificationTenantRefundPaid:
		return "Refund sent",
			fmt.Sprintf("Your refund of %s for %s has been sent.", amount, field(payload, "property_name", "your booking"))
	case enums.NotificationReferralBonusEarned:
		return "Referral bonus earned",
			fmt.Sprintf("You earned %s because %s moved in.", amount, field(payload, "tenant_name", "your referral"))
	}
	return "Update", "There is an update on your account."
}

func field(payload map[string]any, key, fallback string) string {
	if payload == nil {
		return fallback
	}
	v, ok := payload[key]
	if !ok || v == nil {
		return fallback
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return fallback
	}
	return s
}
