package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// CSV writes semicolon-separated files as Italian spreadsheets expect them.
type CSV struct{}

func NewCSV() *CSV { return &CSV{} }

func (CSV) ContentType() string { return "text/csv; charset=utf-8" }
func (CSV) Extension() string   { return "csv" }

func (c CSV) Invoices(records []domain.InvoiceRecord) ([]byte, error) {
	return c.write(invoiceTable(records))
}

func (c CSV) Quotes(records []domain.QuoteRecord) ([]byte, error) {
	return c.write(quoteTable(records))
}

func (CSV) write(t table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	headers := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = col.header
	}
	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range t.rows {
		out := make([]string, len(row))
		for i, cell := range row {
			out[i] = csvCell(cell)
		}
		if err := w.Write(out); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func csvCell(cell any) string {
	switch v := cell.(type) {
	case string:
		// Multi-line quote items stay on one row.
		return strings.ReplaceAll(v, "\n", " | ")
	case *domain.Date:
		return FormatDateIT(v)
	case *float64:
		if v == nil {
			return ""
		}
		return FormatNumberIT(*v)
	case float64:
		return FormatNumberIT(v)
	default:
		return fmt.Sprint(v)
	}
}
