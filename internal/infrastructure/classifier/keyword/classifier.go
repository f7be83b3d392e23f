// Package keyword labels documents by counting category keywords in their text.
package keyword

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// FallbackConfidence is reported for "other" when no keyword matched at all.
const FallbackConfidence = 0.3

// Category is one label and its keyword set.
type Category struct {
	Label    domain.DocumentType `yaml:"label"`
	Keywords []string            `yaml:"keywords"`
}

// DefaultCategories is the built-in table. Earlier entries win ties.
var DefaultCategories = []Category{
	{Label: domain.DocTypeInvoice, Keywords: []string{"fattura", "invoice", "iva", "partita iva", "imponibile"}},
	{Label: domain.DocTypeQuote, Keywords: []string{"preventivo", "offerta", "quotazione", "validità offerta"}},
	{Label: domain.DocTypeRegisteredMail, Keywords: []string{"posta elettronica certificata", "pec", "ricevuta di accettazione"}},
}

// TieBreakOrder lists labels in the order used to resolve equal scores.
var TieBreakOrder = []domain.DocumentType{
	domain.DocTypeInvoice,
	domain.DocTypeQuote,
	domain.DocTypeRegisteredMail,
}

type Classifier struct {
	categories []Category
}

func New(categories []Category) (*Classifier, error) {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	normalized := make([]Category, 0, len(categories))
	seen := make(map[domain.DocumentType]struct{}, len(categories))
	for _, c := range categories {
		if c.Label == "" || c.Label == domain.DocTypeOther {
			return nil, fmt.Errorf("category label %q is not allowed", c.Label)
		}
		if _, ok := seen[c.Label]; ok {
			return nil, fmt.Errorf("duplicate category %q", c.Label)
		}
		seen[c.Label] = struct{}{}

		keywords := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("category %q has no keywords", c.Label)
		}
		normalized = append(normalized, Category{Label: c.Label, Keywords: keywords})
	}
	return &Classifier{categories: normalized}, nil
}

// LoadCategories reads a YAML list of {label, keywords}. File order is tie-break order.
func LoadCategories(path string) ([]Category, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}
	var categories []Category
	if err := yaml.Unmarshal(raw, &categories); err != nil {
		return nil, fmt.Errorf("decode categories file: %w", err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("categories file %s is empty", path)
	}
	return categories, nil
}

func (c *Classifier) Classify(_ context.Context, text string) (domain.Classification, error) {
	lower := strings.ToLower(text)

	best := domain.Classification{Label: domain.DocTypeOther}
	for _, cat := range c.categories {
		score := keywordScore(lower, cat.Keywords)
		if score > best.Confidence {
			best = domain.Classification{Label: cat.Label, Confidence: score}
		}
	}

	if best.Confidence == 0 {
		return domain.Classification{Label: domain.DocTypeOther, Confidence: FallbackConfidence}, nil
	}
	best.Confidence, _ = decimal.NewFromFloat(best.Confidence).Round(2).Float64()
	return best, nil
}

func keywordScore(lower string, keywords []string) float64 {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	score := float64(hits) / float64(len(keywords))
	return min(max(score, 0), 1)
}
