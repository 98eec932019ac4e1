package types

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is a decimal that decodes leniently. JSON numbers and numeric strings are
// accepted; anything else (booleans, objects, garbage strings) reads as zero and never
// fails decoding. It always encodes as a bare JSON number.
type Number struct {
	decimal.Decimal
}

// NewNumber builds a Number from a float
func NewNumber(v float64) Number {
	return Number{Decimal: decimal.NewFromFloat(v)}
}

// NumberFromDecimal wraps a decimal
func NumberFromDecimal(d decimal.Decimal) Number {
	return Number{Decimal: d}
}

// NumberPtr is a convenience for optional fields
func NumberPtr(d decimal.Decimal) *Number {
	n := NumberFromDecimal(d)
	return &n
}

// OrZero returns the wrapped decimal, or zero for a nil receiver
func (n *Number) OrZero() decimal.Decimal {
	if n == nil {
		return decimal.Zero
	}
	return n.Decimal
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	n.Decimal = ParseDecimal(string(b))
	return nil
}

// ParseDecimal parses a loosely typed numeric value, quoted or not. Unparseable input is zero.
func ParseDecimal(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return decimal.Zero
		}
		s = strings.TrimSpace(unquoted)
	}
	if s == "" || s == "null" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Round2 rounds to cents, half away from zero
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
