package heuristic

import (
	"regexp"
	"strings"
)

var reVATPercent = regexp.MustCompile(`(\d{1,2}(?:,\d+)?)\s*%`)

// FindAmountOnLine returns the first number on the first line containing
// label (case-insensitive) that carries a number at all. With forbidPercent,
// lines containing "%" are skipped.
func FindAmountOnLine(label, text string, forbidPercent bool) *float64 {
	label = strings.ToLower(label)
	for _, ln := range strings.Split(text, "\n") {
		lower := strings.ToLower(ln)
		if !strings.Contains(lower, label) {
			continue
		}
		if forbidPercent && strings.Contains(lower, "%") {
			continue
		}
		if v, ok := firstAmount(ln); ok {
			return ptr(v)
		}
	}
	return nil
}

// firstAmountOnLines tries each label in order and keeps the first hit.
func firstAmountOnLines(text string, forbidPercent bool, labels ...string) *float64 {
	for _, label := range labels {
		if v := FindAmountOnLine(label, text, forbidPercent); v != nil {
			return v
		}
	}
	return nil
}

// FindVATPercent reads "IVA 22%" style lines and returns the rate as a
// fraction (0.22).
func FindVATPercent(text string) *float64 {
	for _, ln := range strings.Split(text, "\n") {
		lower := strings.ToLower(ln)
		if !strings.Contains(lower, "iva") || !strings.Contains(lower, "%") {
			continue
		}
		m := reVATPercent.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		pct, ok := ParseAmount(m[1])
		if !ok {
			return nil
		}
		return ptr(pct / 100)
	}
	return nil
}

// DetectCurrency only recognises euro.
func DetectCurrency(text string) *string {
	if strings.Contains(text, "€") || strings.Contains(strings.ToLower(text), " eur") {
		return ptr("EUR")
	}
	return nil
}
