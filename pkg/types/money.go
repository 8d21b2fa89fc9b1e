package types

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits used when money leaves the API.
const MoneyScale = 2

// maxMoneyExclusive matches the numeric(12,2) price columns.
var maxMoneyExclusive = decimal.New(1, 10)

// FormatMoney renders an amount with a fixed two-digit scale, e.g. "30.00".
// Prices are stored at MoneyScale, so rounding here never changes a total.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixedBank(MoneyScale)
}

// ValidPrice reports whether amount is a storable unit price: non-negative,
// below 10^10 and with no more than MoneyScale fractional digits.
func ValidPrice(amount decimal.Decimal) bool {
	if amount.IsNegative() || amount.GreaterThanOrEqual(maxMoneyExclusive) {
		return false
	}
	return amount.Equal(amount.Truncate(MoneyScale))
}
