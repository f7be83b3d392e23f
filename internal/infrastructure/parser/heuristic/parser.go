// Package heuristic extracts invoice and quote fields from flat OCR or PDF
// text using line and regex heuristics tuned for Italian documents.
package heuristic

import "github.com/kirillkom/document-intake/internal/core/domain"

// Parser dispatches to the invoice or quote extractor by label.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// ExtractStructuredFields returns nil for labels without structured fields.
func (p *Parser) ExtractStructuredFields(text string, label domain.DocumentType) domain.StructuredFields {
	switch label {
	case domain.DocTypeInvoice:
		return ParseInvoice(text)
	case domain.DocTypeQuote:
		return ParseQuote(text)
	default:
		return nil
	}
}
