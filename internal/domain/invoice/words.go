package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ones = []string{
		"", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
		"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
		"seventeen", "eighteen", "nineteen",
	}
	tens = []string{
		"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
	}
	scales = []struct {
		value decimal.Decimal
		name  string
	}{
		{decimal.New(1, 12), "trillion"},
		{decimal.New(1, 9), "billion"},
		{decimal.New(1, 6), "million"},
		{decimal.New(1, 3), "thousand"},
	}
)

// AmountInWords renders an amount as lowercase English words with the cents appended as
// fils, e.g. 105.5 -> "one hundred five and five fils". The fraction is rounded to cents,
// trailing zeros are dropped and the remaining digits are read as a whole number.
func AmountInWords(amount decimal.Decimal) string {
	amount = amount.Round(2)
	if amount.IsZero() {
		return "zero"
	}

	var parts []string
	if amount.IsNegative() {
		parts = append(parts, "minus")
		amount = amount.Neg()
	}

	integer := amount.Truncate(0)
	if !integer.IsZero() {
		parts = append(parts, integerWords(integer))
	}

	if fraction := fractionDigits(amount); fraction > 0 {
		if integer.IsZero() {
			parts = append(parts, integerWords(decimal.NewFromInt(int64(fraction)))+" fils")
		} else {
			parts = append(parts, "and", integerWords(decimal.NewFromInt(int64(fraction))), "fils")
		}
	}
	return strings.Join(parts, " ")
}

// fractionDigits reads the digits after the decimal point as a number: .5 -> 5, .05 -> 5, .25 -> 25
func fractionDigits(amount decimal.Decimal) uint64 {
	s := amount.StringFixed(2)
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0
	}
	digits := strings.TrimRight(s[dot+1:], "0")
	var n uint64
	for _, c := range digits {
		n = n*10 + uint64(c-'0')
	}
	return n
}

// integerWords spells a non-negative whole amount of any size; amounts past the largest
// scale nest it, e.g. "one thousand trillion"
func integerWords(n decimal.Decimal) string {
	if n.IsZero() {
		return "zero"
	}
	var words []string
	for _, scale := range scales {
		if n.GreaterThanOrEqual(scale.value) {
			q, r := n.QuoRem(scale.value, 0)
			words = append(words, integerWords(q), scale.name)
			n = r
		}
	}
	if n.IsPositive() {
		words = append(words, belowThousand(uint64(n.IntPart())))
	}
	return strings.Join(words, " ")
}

func belowThousand(n uint64) string {
	var words []string
	if n >= 100 {
		words = append(words, ones[n/100], "hundred")
		n %= 100
	}
	switch {
	case n >= 20:
		words = append(words, tens[n/10])
		if n%10 > 0 {
			words = append(words, ones[n%10])
		}
	case n > 0:
		words = append(words, ones[n])
	}
	return strings.Join(words, " ")
}
