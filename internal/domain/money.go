package domain

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits accepted on the API.
const MoneyScale = 2

// FormatMoney renders an amount with two fractional digits without ever
// rounding: "100" → "100.00", "1.000" → "1.00", "0.005" stays "0.005".
func FormatMoney(d decimal.Decimal) string {
	if !d.Equal(d.Truncate(MoneyScale)) {
		return d.String()
	}
	return d.StringFixed(MoneyScale)
}
