package ledger

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeValue converts a pt-BR formatted amount ("1.234,56", "(200,50)") to a number.
// Parenthesized values are negative. Malformed input yields 0; it never fails.
func NormalizeValue(text string) float64 {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0
	}

	negative := false
	if len(s) >= 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	// "." groups thousands, "," marks the decimals.
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	v := d.InexactFloat64()
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	if v == 0 {
		return 0 // no "-0" for "(0,00)"
	}
	if negative {
		return -v
	}
	return v
}
