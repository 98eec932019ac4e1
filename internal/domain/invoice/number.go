package invoice

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const numberPrefix = "INV"

// FormatNumber renders INV-YYYYMM-NNNN from the invoice's creation date. Sequences above
// 9999 widen the numeric part.
func FormatNumber(createdAt time.Time, sequence int) string {
	return fmt.Sprintf("%s-%04d%02d-%04d", numberPrefix, createdAt.Year(), int(createdAt.Month()), sequence)
}

// ParseSequence extracts the trailing digits of an invoice number. ok is false when the
// number has no numeric suffix.
func ParseSequence(number string) (int, bool) {
	idx := strings.LastIndexByte(number, '-')
	suffix := number[idx+1:]
	end := len(suffix)
	start := end
	for start > 0 && suffix[start-1] >= '0' && suffix[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	seq, err := strconv.Atoi(suffix[start:end])
	if err != nil {
		return 0, false
	}
	return seq, true
}
