package keyword

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

func classify(t *testing.T, c *Classifier, text string) domain.Classification {
	t.Helper()
	got, err := c.Classify(context.Background(), text)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	return got
}

func newDefault(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestClassifyWithoutKeywordsReturnsOther(t *testing.T) {
	c := newDefault(t)
	for _, text := range []string{"", "lorem ipsum dolor", "ordine di acquisto 42"} {
		got := classify(t, c, text)
		if got.Label != domain.DocTypeOther || got.Confidence != FallbackConfidence {
			t.Fatalf("Classify(%q) = %+v, want other/0.3", text, got)
		}
	}
}

func TestClassifyFullMatchIsOne(t *testing.T) {
	c := newDefault(t)
	cases := map[domain.DocumentType]string{
		domain.DocTypeQuote:          "PREVENTIVO n. 4 - offerta valida, quotazione e validità offerta 30 gg",
		domain.DocTypeRegisteredMail: "Posta Elettronica Certificata: ricevuta di accettazione PEC",
	}
	for want, text := range cases {
		got := classify(t, c, text)
		if got.Label != want || got.Confidence != 1.0 {
			t.Fatalf("Classify(%q) = %+v, want %s/1.0", text, got, want)
		}
	}
}

func TestClassifyPartialScoreIsRounded(t *testing.T) {
	c := newDefault(t)
	// 1 of 3 registered mail keywords.
	got := classify(t, c, "inviata via PEC")
	if got.Label != domain.DocTypeRegisteredMail || got.Confidence != 0.33 {
		t.Fatalf("unexpected classification: %+v", got)
	}
}

func TestClassifyTieGoesToFirstDeclared(t *testing.T) {
	c, err := New([]Category{
		{Label: domain.DocTypeQuote, Keywords: []string{"alpha"}},
		{Label: domain.DocTypeInvoice, Keywords: []string{"beta"}},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := classify(t, c, "alpha beta"); got.Label != domain.DocTypeQuote {
		t.Fatalf("tie resolved to %s, want quote", got.Label)
	}

	// invoice 1/5 = 0.2 vs quote 1/4 = 0.25: quote wins on score.
	d := newDefault(t)
	if got := classify(t, d, "fattura e preventivo"); got.Label != domain.DocTypeQuote {
		t.Fatalf("got %s, want quote", got.Label)
	}
	// invoice 2/5 = 0.4 vs quote 1/4: invoice wins.
	if got := classify(t, d, "fattura con imponibile, preventivo"); got.Label != domain.DocTypeInvoice {
		t.Fatalf("got %s, want invoice", got.Label)
	}
}

func TestTieBreakOrderMatchesDefaultTable(t *testing.T) {
	if len(TieBreakOrder) != len(DefaultCategories) {
		t.Fatalf("tie-break order has %d labels, table has %d", len(TieBreakOrder), len(DefaultCategories))
	}
	for i, label := range TieBreakOrder {
		if DefaultCategories[i].Label != label {
			t.Fatalf("position %d: table=%s order=%s", i, DefaultCategories[i].Label, label)
		}
	}
}

func TestClassifyEqualScoresUseTieBreakOrder(t *testing.T) {
	for i := 0; i+1 < len(TieBreakOrder); i++ {
		first, second := TieBreakOrder[i], TieBreakOrder[i+1]
		c, err := New([]Category{
			{Label: first, Keywords: []string{"uno", "due"}},
			{Label: second, Keywords: []string{"tre", "quattro"}},
		})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if got := classify(t, c, "uno tre"); got.Label != first || got.Confidence != 0.5 {
			t.Fatalf("pair %s/%s: got %+v", first, second, got)
		}
	}
}

func TestNewRejectsInvalidTables(t *testing.T) {
	cases := [][]Category{
		{{Label: domain.DocTypeOther, Keywords: []string{"x"}}},
		{{Label: domain.DocTypeInvoice, Keywords: []string{" "}}},
		{{Label: domain.DocTypeInvoice, Keywords: []string{"a"}}, {Label: domain.DocTypeInvoice, Keywords: []string{"b"}}},
	}
	for i, cats := range cases {
		if _, err := New(cats); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestLoadCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	content := `
- label: quote
  keywords: [preventivo, offerta]
- label: invoice
  keywords: [fattura]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cats, err := LoadCategories(path)
	if err != nil {
		t.Fatalf("LoadCategories() error = %v", err)
	}
	if len(cats) != 2 || cats[0].Label != domain.DocTypeQuote || cats[1].Keywords[0] != "fattura" {
		t.Fatalf("unexpected categories: %+v", cats)
	}

	c, err := New(cats)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := classify(t, c, "Fattura"); got.Label != domain.DocTypeInvoice || got.Confidence != 1.0 {
		t.Fatalf("unexpected classification: %+v", got)
	}
}

func TestLoadCategoriesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadCategories(path); err == nil {
		t.Fatal("expected error for empty file")
	}
}
