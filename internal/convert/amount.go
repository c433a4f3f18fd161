package convert

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount normalizes money text to a decimal. It tolerates thousands
// separators, a leading currency symbol, surrounding whitespace, and
// accounting-style parenthesized negatives ("(12.34)" == "-12.34").
// Empty or sign-only input is an error so callers can skip the record.
func ParseAmount(s string) (decimal.Decimal, error) {
	txt := strings.TrimSpace(s)

	negate := false
	if strings.HasPrefix(txt, "(") && strings.HasSuffix(txt, ")") {
		negate = true
		txt = strings.TrimSpace(txt[1 : len(txt)-1])
	}

	txt = strings.ReplaceAll(txt, ",", "")
	for _, sym := range []string{"$", "€", "£"} {
		txt = strings.ReplaceAll(txt, sym, "")
	}
	txt = strings.TrimSpace(txt)

	if txt == "" || txt == "+" || txt == "-" {
		return decimal.Decimal{}, fmt.Errorf("empty amount %q", s)
	}

	d, err := decimal.NewFromString(txt)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if negate {
		d = d.Neg()
	}
	return d, nil
}
