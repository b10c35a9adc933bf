package enums

// PremiumFeePolicy decides how the optional "Haani Max" premium fee interacts
// with the rent payout amount.
type PremiumFeePolicy string

const (
	// PremiumFeePolicyExcluded keeps the premium out of payout math entirely.
	PremiumFeePolicyExcluded PremiumFeePolicy = "excluded"
	// PremiumFeePolicyDeductBeforeFee removes the premium first and charges the
	// platform percentage on what remains.
	PremiumFeePolicyDeductBeforeFee PremiumFeePolicy = "deduct_before_fee"
	// PremiumFeePolicyDeductAfterFee charges the platform percentage on the full
	// price and removes the premium afterwards.
	PremiumFeePolicyDeductAfterFee PremiumFeePolicy = "deduct_after_fee"
)

// IsValid reports whether the value is known.
func (p PremiumFeePolicy) IsValid() bool {
	switch p {
	case PremiumFeePolicyExcluded, PremiumFeePolicyDeductBeforeFee, PremiumFeePolicyDeductAfterFee:
		return true
	}
	return false
}
