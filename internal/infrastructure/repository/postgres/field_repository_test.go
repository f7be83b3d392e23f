package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

func newFieldRepoWithMock(t *testing.T) (*FieldRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	repo := NewFieldRepository(db)
	repo.newID = func() string { return "rec-1" }
	repo.now = func() time.Time { return time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC) }
	return repo, mock, func() { _ = db.Close() }
}

func TestSaveInvoiceIsIdempotentPerDocument(t *testing.T) {
	repo, mock, done := newFieldRepoWithMock(t)
	defer done()

	number := "INV-2025-007"
	total := 122.0
	date := domain.NewDate(2025, time.October, 14)
	fields := &domain.InvoiceFields{Number: &number, TotalAmount: &total, Date: &date, Confidence: 0.5}

	mock.ExpectExec("INSERT INTO invoices").
		WithArgs("rec-1", "doc-1", nil, nil, nil, nil, &number, date.Time, nil, nil, &total, nil, 0.5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("ON CONFLICT \\(document_id\\) DO NOTHING").
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.SaveInvoice(context.Background(), "doc-1", fields)
	if err != nil || !created {
		t.Fatalf("first SaveInvoice() = %v, %v", created, err)
	}
	created, err = repo.SaveInvoice(context.Background(), "doc-1", fields)
	if err != nil || created {
		t.Fatalf("second SaveInvoice() = %v, %v", created, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveQuote(t *testing.T) {
	repo, mock, done := newFieldRepoWithMock(t)
	defer done()

	customer := "Mario Rossi"
	mock.ExpectExec("INSERT INTO quotes").
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.SaveQuote(context.Background(), "doc-2", &domain.QuoteFields{Customer: &customer, Confidence: 0.5})
	if err != nil || !created {
		t.Fatalf("SaveQuote() = %v, %v", created, err)
	}
}

func TestListInvoicesMapsNulls(t *testing.T) {
	repo, mock, done := newFieldRepoWithMock(t)
	defer done()

	created := time.Date(2025, 10, 14, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM invoices").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "document_id", "supplier", "supplier_vat_id", "supplier_tax_code", "account_holder", "number",
			"invoice_date", "net_amount", "vat_amount", "total_amount", "currency", "confidence", "created_at",
		}).AddRow("rec-1", "doc-1", "ACME S.r.l.", nil, nil, nil, "INV-1",
			time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC), "100.00", nil, 122.0, "EUR", 0.75, created))

	recs, err := repo.ListInvoices(context.Background())
	if err != nil {
		t.Fatalf("ListInvoices() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]
	if *rec.Supplier != "ACME S.r.l." || rec.SupplierVATID != nil || *rec.NetAmount != 100 || rec.VATAmount != nil {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Date.String() != "2025-10-14" || *rec.TotalAmount != 122 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestListQuotes(t *testing.T) {
	repo, mock, done := newFieldRepoWithMock(t)
	defer done()

	mock.ExpectQuery("FROM quotes").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "document_id", "customer", "valid_until", "total_amount", "items", "confidence", "created_at",
		}).AddRow("q-1", "doc-2", "Mario Rossi", nil, 1500.0, "Pannelli x 4", 1.0, time.Now()))

	recs, err := repo.ListQuotes(context.Background())
	if err != nil {
		t.Fatalf("ListQuotes() error = %v", err)
	}
	if len(recs) != 1 || *recs[0].Customer != "Mario Rossi" || recs[0].ValidUntil != nil || *recs[0].Items != "Pannelli x 4" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}
