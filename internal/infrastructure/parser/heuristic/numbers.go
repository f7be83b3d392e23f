package heuristic

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// numberPattern matches 1.234,56 | 1234,56 | 1234.56 | 14,00 | 122.
const numberPattern = `\d+(?:[.,]\d{3})*(?:[.,]\d{2})?`

var reNumber = regexp.MustCompile(numberPattern)

// ParseAmount normalises an Italian or plain decimal string.
// With exactly one comma, dots are thousands separators and the comma is the
// decimal point; otherwise the string is parsed as is.
func ParseAmount(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if s == "" {
		return 0, false
	}
	if strings.Count(s, ",") == 1 {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func firstAmount(s string) (float64, bool) {
	m := reNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	return ParseAmount(m)
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	out, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return out
}

func ptr[T any](v T) *T {
	return &v
}
