package domain

import "time"

// Date is a calendar date without time of day. It marshals as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(raw []byte) error {
	s := string(raw)
	if s == "null" {
		return nil
	}
	t, err := time.Parse(`"`+dateLayout+`"`, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// StructuredFields is the per-type field record produced for invoices and quotes.
type StructuredFields interface {
	DocumentType() DocumentType
	Score() float64
}

type InvoiceFields struct {
	Supplier        *string  `json:"supplier"`
	SupplierVATID   *string  `json:"supplier_vat_id"`
	SupplierTaxCode *string  `json:"supplier_tax_code"`
	AccountHolder   *string  `json:"account_holder"`
	Number          *string  `json:"number"`
	Date            *Date    `json:"date"`
	NetAmount       *float64 `json:"net_amount"`
	VATAmount       *float64 `json:"vat_amount"`
	TotalAmount     *float64 `json:"total_amount"`
	Currency        *string  `json:"currency"`
	Confidence      float64  `json:"confidence"`
}

func (f *InvoiceFields) DocumentType() DocumentType { return DocTypeInvoice }
func (f *InvoiceFields) Score() float64             { return f.Confidence }

type QuoteFields struct {
	Customer    *string  `json:"customer"`
	ValidUntil  *Date    `json:"valid_until"`
	TotalAmount *float64 `json:"total_amount"`
	Items       *string  `json:"items"`
	Confidence  float64  `json:"confidence"`
}

func (f *QuoteFields) DocumentType() DocumentType { return DocTypeQuote }
func (f *QuoteFields) Score() float64             { return f.Confidence }

type InvoiceRecord struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	CreatedAt  time.Time `json:"created_at"`
	InvoiceFields
}

type QuoteRecord struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	CreatedAt  time.Time `json:"created_at"`
	QuoteFields
}

// ReprocessSummary counts the outcome of a batch reprocessing run.
type ReprocessSummary struct {
	Processed      int `json:"processed"`
	Invoices       int `json:"invoices,omitempty"`
	Quotes         int `json:"quotes,omitempty"`
	SkippedMissing int `json:"skipped_missing"`
	SkippedError   int `json:"skipped_error"`
}

// ExportFile is a rendered export ready to be served as a download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
