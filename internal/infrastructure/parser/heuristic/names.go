package heuristic

import (
	"regexp"
	"strings"
	"unicode"
)

// Go's \b is ASCII-only; these bracket a term so that accented letters still
// count as part of a word.
const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{N}_])`
)

var (
	reSupplierBlacklist = regexp.MustCompile(`(?i)` + wordStart + `(` +
		`fattura|preventivo|invoice|` +
		`numero\s*fattura|n[°ºo]\s*fattura|data\s*fattura|` +
		`descrizione|quantit[àa]?|q\.?t[àa]|prezzo|subtotale|imponibile|totale|iva|i\.?v\.?a\.?|` +
		`partita\s*iva|p\.?\s*iva|cod(?:\.|ice)?\s*fisc|c\.?\s*f\.|codice\s*fiscale|` +
		`iban|bic|swift|pec|e-?mail|email|telefono|tel\.|cell\.|fax|` +
		`indirizzo|via|viale|piazza|corso|largo|cap|citt[aà']|prov\.?` +
		`)` + wordEnd)
	reAddress       = regexp.MustCompile(`(?i)\b(via|viale|piazza|corso|largo)\b.*\d`)
	reOnlyNumerics  = regexp.MustCompile(`^[^\p{L}\d]*\d[^\p{L}]*$`)
	reLegalForm     = regexp.MustCompile(`(?i)` + wordStart + `(srl|s\.r\.l\.?|spa|s\.p\.a\.?|sas|s\.a\.s\.?|snc|s\.n\.c\.?|ss|coop|cooperativa)` + wordEnd)
	reCleanPrefix   = regexp.MustCompile(`^[\s:\-\[\(\{«]+`)
	reCleanSuffix   = regexp.MustCompile(`[\]\)\}»\s:;\-]+$`)
	reAccountHolder = regexp.MustCompile(`(?i)\b(intestatario|intestato\s*a|beneficiario|titolare(?:\s+conto)?)\b[:\s-]*(.+)`)
)

// supplierScanLines bounds how far into the document the supplier is searched.
const supplierScanLines = 25

func cleanName(s string) string {
	s = strings.TrimSpace(reCleanPrefix.ReplaceAllString(s, ""))
	return strings.TrimSpace(reCleanSuffix.ReplaceAllString(s, ""))
}

func nonBlankLines(text string, limit int) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		out = append(out, ln)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// GuessSupplier picks the issuer name from the document header.
func GuessSupplier(text string) *string {
	var candidates []string
	for _, ln := range nonBlankLines(text, supplierScanLines) {
		name := cleanName(ln)
		if name == "" ||
			reSupplierBlacklist.MatchString(name) ||
			reAddress.MatchString(name) ||
			reOnlyNumerics.MatchString(name) {
			continue
		}
		candidates = append(candidates, name)
	}
	if len(candidates) == 0 {
		return nil
	}

	for _, c := range candidates {
		if reLegalForm.MatchString(c) {
			return ptr(c)
		}
	}
	for _, c := range candidates {
		letters, digits := 0, 0
		for _, r := range c {
			switch {
			case unicode.IsLetter(r):
				letters++
			case unicode.IsDigit(r):
				digits++
			}
		}
		if letters >= 6 && digits <= 2 {
			return ptr(c)
		}
	}
	return ptr(candidates[0])
}

// FindAccountHolder returns the name after an "intestatario"-style label.
func FindAccountHolder(text string) *string {
	for _, ln := range strings.Split(text, "\n") {
		m := reAccountHolder.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		if name := cleanName(m[2]); len([]rune(name)) >= 3 {
			return ptr(name)
		}
	}
	return nil
}
