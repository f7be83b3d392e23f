// Package export renders invoice and quote records as Italian-formatted CSV
// and XLSX tables.
package export

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

type columnKind int

const (
	kindText columnKind = iota
	kindDate
	kindNumber
)

type column struct {
	header string
	width  float64
	kind   columnKind
}

// table is the format-neutral shape shared by the CSV and XLSX writers.
// Cells hold string, *domain.Date, *float64 or float64.
type table struct {
	sheet   string
	columns []column
	rows    [][]any
}

var invoiceColumns = []column{
	{"Fornitore", 28, kindText},
	{"P.IVA", 14, kindText},
	{"Cod. Fiscale", 16, kindText},
	{"Intestatario", 20, kindText},
	{"Numero", 16, kindText},
	{"Data", 12, kindDate},
	{"Imponibile", 14, kindNumber},
	{"IVA", 12, kindNumber},
	{"Totale", 14, kindNumber},
	{"Valuta", 10, kindText},
	{"Confidenza", 12, kindNumber},
}

var quoteColumns = []column{
	{"Cliente", 30, kindText},
	{"Validità", 12, kindDate},
	{"Totale", 14, kindNumber},
	{"Voci", 50, kindText},
	{"Confidenza", 12, kindNumber},
}

func invoiceTable(records []domain.InvoiceRecord) table {
	t := table{sheet: "Fatture", columns: invoiceColumns}
	for _, r := range records {
		t.rows = append(t.rows, []any{
			str(r.Supplier), str(r.SupplierVATID), str(r.SupplierTaxCode), str(r.AccountHolder),
			str(r.Number), r.Date, r.NetAmount, r.VATAmount, r.TotalAmount, str(r.Currency), r.Confidence,
		})
	}
	return t
}

func quoteTable(records []domain.QuoteRecord) table {
	t := table{sheet: "Preventivi", columns: quoteColumns}
	for _, r := range records {
		t.rows = append(t.rows, []any{
			str(r.Customer), r.ValidUntil, r.TotalAmount, str(r.Items), r.Confidence,
		})
	}
	return t
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FormatDateIT renders dd/mm/yyyy; nil renders empty.
func FormatDateIT(d *domain.Date) string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.Format("02/01/2006")
}

// FormatNumberIT renders two decimals with "." grouping and "," decimals: 1.234,56.
func FormatNumberIT(v float64) string {
	fixed := decimal.NewFromFloat(v).StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "," + frac
}
