package common

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency NAV values are quoted in.
const DefaultCurrency = money.USD

// FormatMoney formats a decimal amount in the given currency, e.g. "$1,234.56".
// Amounts are rounded to the currency's minor unit.
func FormatMoney(v decimal.Decimal, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = DefaultCurrency
	}
	fraction := 2
	if c := money.GetCurrency(code); c != nil {
		fraction = c.Fraction
	} else {
		code = DefaultCurrency
	}
	minor := v.Shift(int32(fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}

// FormatNAV formats a NAV value in the default currency.
func FormatNAV(v decimal.Decimal) string {
	return FormatMoney(v, DefaultCurrency)
}

// FormatPct formats a percentage with two decimals, e.g. "12.50%".
func FormatPct(v decimal.Decimal) string {
	return v.StringFixed(2) + "%"
}

// FormatSignedPct formats a percentage with +/- prefix
func FormatSignedPct(v decimal.Decimal) string {
	if v.Sign() >= 0 {
		return "+" + FormatPct(v)
	}
	return FormatPct(v)
}

var (
	billion = decimal.NewFromInt(1_000_000_000)
	million = decimal.NewFromInt(1_000_000)
)

// FormatCompact formats large amounts (assets under management) with an M/B suffix.
func FormatCompact(v decimal.Decimal) string {
	if v.Abs().GreaterThanOrEqual(billion) {
		return "$" + v.Div(billion).StringFixed(2) + "B"
	}
	return "$" + v.Div(million).StringFixed(2) + "M"
}
