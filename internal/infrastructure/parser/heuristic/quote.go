package heuristic

import (
	"regexp"
	"strings"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

var (
	reCustomer = []*regexp.Regexp{
		regexp.MustCompile(`(?i)cliente\s*:\s*(.+)`),
		regexp.MustCompile(`(?i)spett\.le\s*(.+)`),
		regexp.MustCompile(`(?i)\bto\s*:\s*(.+)`),
	}
	reQuoteTotal = regexp.MustCompile(`\btotale\b[^\d]*(` + numberPattern + `)`)
	reQuantity   = regexp.MustCompile(wordStart + `(x|qty|q\.tà|qta|quantità)` + wordEnd)
)

// ParseQuote extracts customer, validity, total and quantity lines.
func ParseQuote(text string) *domain.QuoteFields {
	f := &domain.QuoteFields{
		Customer:   findCustomer(text),
		ValidUntil: FindDate(text),
		Items:      findItems(text),
	}
	if m := reQuoteTotal.FindStringSubmatch(strings.ToLower(text)); m != nil {
		if v, ok := ParseAmount(m[1]); ok {
			f.TotalAmount = ptr(v)
		}
	}
	f.Confidence = presence(2, f.Customer != nil, f.TotalAmount != nil)
	return f
}

func findCustomer(text string) *string {
	for _, re := range reCustomer {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if name := cleanName(m[1]); name != "" {
			return ptr(name)
		}
	}
	return nil
}

func findItems(text string) *string {
	var items []string
	for _, ln := range strings.Split(text, "\n") {
		if reQuantity.MatchString(strings.ToLower(ln)) {
			items = append(items, strings.TrimSpace(ln))
		}
	}
	if len(items) == 0 {
		return nil
	}
	return ptr(strings.Join(items, "\n"))
}
