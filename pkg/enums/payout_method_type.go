package enums

import "fmt"

// PayoutMethodType lists the disbursement rails a payee can register.
type PayoutMethodType string

const (
	PayoutMethodBankAccount  PayoutMethodType = "bank_account"
	PayoutMethodMobileWallet PayoutMethodType = "mobile_wallet"
	PayoutMethodInstaPay     PayoutMethodType = "instapay"
)

var validPayoutMethodTypes = []PayoutMethodType{
	PayoutMethodBankAccount,
	PayoutMethodMobileWallet,
	PayoutMethodInstaPay,
}

// String implements fmt.Stringer.
func (p PayoutMethodType) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p PayoutMethodType) IsValid() bool {
	for _, candidate := range validPayoutMethodTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePayoutMethodType converts raw input into a PayoutMethodType.
func ParsePayoutMethodType(value string) (PayoutMethodType, error) {
	for _, candidate := range validPayoutMethodTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout method type %q", value)
}
