package referrals

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseBonusRate converts a stored percentage such as "5%" into a fraction
// (0.05). Only whole percents between 0 and 100 are supported.
func ParseBonusRate(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	value = strings.TrimSpace(strings.TrimSuffix(value, "%"))
	if value == "" {
		return decimal.Zero, fmt.Errorf("bonus rate %q is empty", raw)
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return decimal.Zero, fmt.Errorf("bonus rate %q is not a whole percent", raw)
		}
	}
	percent, err := strconv.Atoi(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bonus rate %q: %w", raw, err)
	}
	if percent > 100 {
		return decimal.Zero, fmt.Errorf("bonus rate %q exceeds 100%%", raw)
	}
	return decimal.New(int64(percent), -2), nil
}
