package common

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		value    string
		currency string
		want     string
	}{
		{"1234.56", "USD", "$1,234.56"},
		{"0", "USD", "$0.00"},
		{"-500", "USD", "-$500.00"},
		{"1000000.994", "USD", "$1,000,000.99"},
		{"12.345", "", "$12.35"},
	}

	for _, tt := range tests {
		got := FormatMoney(decimal.RequireFromString(tt.value), tt.currency)
		if got != tt.want {
			t.Errorf("FormatMoney(%s, %q) = %q, want %q", tt.value, tt.currency, got, tt.want)
		}
	}
}

func TestFormatNAV_UsesDefaultCurrency(t *testing.T) {
	if got := FormatNAV(decimal.RequireFromString("42.5")); got != "$42.50" {
		t.Errorf("FormatNAV = %q, want $42.50", got)
	}
}

func TestFormatSignedPct(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"1.5", "+1.50%"},
		{"0", "+0.00%"},
		{"-2.345", "-2.35%"},
	}

	for _, tt := range tests {
		got := FormatSignedPct(decimal.RequireFromString(tt.value))
		if got != tt.want {
			t.Errorf("FormatSignedPct(%s) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"2500000000", "$2.50B"},
		{"125000000", "$125.00M"},
		{"500000", "$0.50M"},
	}

	for _, tt := range tests {
		got := FormatCompact(decimal.RequireFromString(tt.value))
		if got != tt.want {
			t.Errorf("FormatCompact(%s) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
