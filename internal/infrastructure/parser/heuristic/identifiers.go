package heuristic

import (
	"regexp"
	"strings"
)

var (
	reVATLabel   = regexp.MustCompile(`(?i)\b(?:p\.?\s*iva|partita\s*iva)\b[: \t]*([A-Z0-9./ \t-]{8,})`)
	reAny11Digit = regexp.MustCompile(`\b\d{11}\b`)
	reTaxLabel   = regexp.MustCompile(`(?i)\bcod(?:ice|\.)?\s*fisc(?:ale|\.)?[:\s]*([A-Z0-9]{11,20})`)
	reTaxCode    = regexp.MustCompile(`^[A-Z]{6}\d{2}[A-Z]\d{2}[A-Z]\d{3}[A-Z]$`)
	reNonDigits  = regexp.MustCompile(`\D+`)
	reISODate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	reInvoiceToken  = regexp.MustCompile(`(?i)\b((?:inv|invoice|fatt|fa)[-_][A-Z0-9][A-Z0-9/_\-]*)\b`)
	reInvoiceLabels = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bfattura\s*(?:numero|nr\.?|no\.?|n[°º.]?)?\s*[:#]?\s*([A-Z0-9/_\-.]+)`),
		regexp.MustCompile(`(?i)\b(?:invoice|inv)\s*(?:no\.?|n[°º.]?|#)?\s*[:#]?\s*([A-Z0-9/_\-.]+)`),
		regexp.MustCompile(`(?i)\b(?:documento|doc)\s*(?:numero|nr\.?|no\.?|n[°º.]?)?\s*[:#]?\s*([A-Z0-9/_\-.]+)`),
	}
)

const (
	vatIDDigits         = 11
	minInvoiceNumberLen = 3
)

// FindTaxIDs returns the supplier VAT number and Italian fiscal code.
// The VAT number prefers a labelled value and falls back to any free-standing
// 11-digit run; the fiscal code is only taken from a labelled value.
func FindTaxIDs(text string) (vatID, taxCode *string) {
	if m := reVATLabel.FindStringSubmatch(text); m != nil {
		if digits := reNonDigits.ReplaceAllString(m[1], ""); len(digits) == vatIDDigits {
			vatID = ptr(digits)
		}
	}
	if vatID == nil {
		if m := reAny11Digit.FindString(text); m != "" {
			vatID = ptr(m)
		}
	}

	if m := reTaxLabel.FindStringSubmatch(text); m != nil {
		cand := strings.ToUpper(strings.ReplaceAll(m[1], " ", ""))
		if reTaxCode.MatchString(cand) {
			taxCode = ptr(cand)
		}
	}
	return vatID, taxCode
}

// FindInvoiceNumber prefers compact tokens like INV-2025-001 and then falls
// back to values following "fattura n.", "invoice #" or "documento n.".
func FindInvoiceNumber(text string) *string {
	if m := reInvoiceToken.FindStringSubmatch(text); m != nil {
		num := strings.TrimSpace(m[1])
		if !reISODate.MatchString(num) {
			return ptr(num)
		}
	}

	for _, re := range reInvoiceLabels {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		num := strings.Trim(strings.TrimSpace(m[1]), ":#")
		if !reISODate.MatchString(num) && len(num) >= minInvoiceNumberLen {
			return ptr(num)
		}
	}
	return nil
}
