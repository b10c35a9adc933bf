package payouts

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/haani-backend/pkg/config"
	"github.com/angelmondragon/haani-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// FeeBreakdown is the money split applied to a payout.
type FeeBreakdown struct {
	Gross       decimal.Decimal
	PlatformFee decimal.Decimal
	PremiumFee  decimal.Decimal
	Net         decimal.Decimal
}

// Fees is everything withheld from the gross amount.
func (b FeeBreakdown) Fees() decimal.Decimal {
	return b.PlatformFee.Add(b.PremiumFee)
}

// FeePolicy turns a booking price into the amount released to the payee.
type FeePolicy interface {
	Apply(gross, premium decimal.Decimal) FeeBreakdown
}

// PercentFeePolicy charges Percent (0-100) of the base as the platform fee.
// Premium decides whether the optional premium add-on is withheld too.
type PercentFeePolicy struct {
	Percent decimal.Decimal
	Premium enums.PremiumFeePolicy
}

// NewFeePolicy builds the policy configured for the deployment.
func NewFeePolicy(cfg config.FinanceConfig) (PercentFeePolicy, error) {
	policy := PercentFeePolicy{Percent: cfg.PlatformFeePercent, Premium: cfg.PremiumFeePolicy}
	if policy.Premium == "" {
		policy.Premium = enums.PremiumFeePolicyExcluded
	}
	if !policy.Premium.IsValid() {
		return PercentFeePolicy{}, fmt.Errorf("invalid premium fee policy %q", policy.Premium)
	}
	if policy.Percent.IsNegative() || policy.Percent.GreaterThan(hundred) {
		return PercentFeePolicy{}, fmt.Errorf("platform fee percent must be between 0 and 100")
	}
	return policy, nil
}

// Apply computes the breakdown. Fees round to two decimals and are capped so
// Gross always equals PlatformFee + PremiumFee + Net with Net never negative.
func (p PercentFeePolicy) Apply(gross, premium decimal.Decimal) FeeBreakdown {
	gross = nonNegative(gross.Round(2))
	premium = nonNegative(premium.Round(2))

	out := FeeBreakdown{Gross: gross, PlatformFee: decimal.Zero, PremiumFee: decimal.Zero}
	switch p.Premium {
	case enums.PremiumFeePolicyDeductBeforeFee:
		out.PremiumFee = decimal.Min(premium, gross)
		out.PlatformFee = p.fee(gross.Sub(out.PremiumFee))
	case enums.PremiumFeePolicyDeductAfterFee:
		out.PlatformFee = p.fee(gross)
		out.PremiumFee = decimal.Min(premium, gross.Sub(out.PlatformFee))
	default:
		out.PlatformFee = p.fee(gross)
	}
	out.Net = gross.Sub(out.Fees())
	return out
}

func (p PercentFeePolicy) fee(base decimal.Decimal) decimal.Decimal {
	if p.Percent.IsZero() || !base.IsPositive() {
		return decimal.Zero
	}
	return base.Mul(p.Percent).Div(hundred).Round(2)
}

// NoFees releases the gross amount untouched.
type NoFees struct{}

// Apply implements FeePolicy.
func (NoFees) Apply(gross, _ decimal.Decimal) FeeBreakdown {
	gross = nonNegative(gross.Round(2))
	return FeeBreakdown{Gross: gross, PlatformFee: decimal.Zero, PremiumFee: decimal.Zero, Net: gross}
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
