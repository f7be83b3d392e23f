package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// FieldRepository stores at most one invoice or quote record per document.
type FieldRepository struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

func NewFieldRepository(db *sql.DB) *FieldRepository {
	return &FieldRepository{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// SaveInvoice reports false when the document already has an invoice record.
func (r *FieldRepository) SaveInvoice(ctx context.Context, documentID string, f *domain.InvoiceFields) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO invoices (
	id, document_id, supplier, supplier_vat_id, supplier_tax_code, account_holder, number,
	invoice_date, net_amount, vat_amount, total_amount, currency, confidence, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (document_id) DO NOTHING
`,
		r.newID(), documentID, f.Supplier, f.SupplierVATID, f.SupplierTaxCode, f.AccountHolder, f.Number,
		dateArg(f.Date), f.NetAmount, f.VATAmount, f.TotalAmount, f.Currency, f.Confidence, r.now(),
	)
	if err != nil {
		return false, fmt.Errorf("insert invoice: %w", err)
	}
	return inserted(res, "insert invoice")
}

// SaveQuote reports false when the document already has a quote record.
func (r *FieldRepository) SaveQuote(ctx context.Context, documentID string, f *domain.QuoteFields) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO quotes (id, document_id, customer, valid_until, total_amount, items, confidence, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (document_id) DO NOTHING
`,
		r.newID(), documentID, f.Customer, dateArg(f.ValidUntil), f.TotalAmount, f.Items, f.Confidence, r.now(),
	)
	if err != nil {
		return false, fmt.Errorf("insert quote: %w", err)
	}
	return inserted(res, "insert quote")
}

func (r *FieldRepository) ListInvoices(ctx context.Context) ([]domain.InvoiceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, supplier, supplier_vat_id, supplier_tax_code, account_holder, number,
	invoice_date, net_amount, vat_amount, total_amount, currency, confidence, created_at
FROM invoices
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	out := make([]domain.InvoiceRecord, 0)
	for rows.Next() {
		var (
			rec                      domain.InvoiceRecord
			supplier, vatID, taxCode sql.NullString
			holder, number, currency sql.NullString
			date                     sql.NullTime
			net, vat, total          sql.NullFloat64
		)
		if err := rows.Scan(
			&rec.ID, &rec.DocumentID, &supplier, &vatID, &taxCode, &holder, &number,
			&date, &net, &vat, &total, &currency, &rec.Confidence, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		rec.Supplier = nullableString(supplier)
		rec.SupplierVATID = nullableString(vatID)
		rec.SupplierTaxCode = nullableString(taxCode)
		rec.AccountHolder = nullableString(holder)
		rec.Number = nullableString(number)
		rec.Date = nullableDate(date)
		rec.NetAmount = nullableFloat(net)
		rec.VATAmount = nullableFloat(vat)
		rec.TotalAmount = nullableFloat(total)
		rec.Currency = nullableString(currency)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}
	return out, nil
}

func (r *FieldRepository) ListQuotes(ctx context.Context) ([]domain.QuoteRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, customer, valid_until, total_amount, items, confidence, created_at
FROM quotes
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	out := make([]domain.QuoteRecord, 0)
	for rows.Next() {
		var (
			rec             domain.QuoteRecord
			customer, items sql.NullString
			validUntil      sql.NullTime
			total           sql.NullFloat64
		)
		if err := rows.Scan(
			&rec.ID, &rec.DocumentID, &customer, &validUntil, &total, &items, &rec.Confidence, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		rec.Customer = nullableString(customer)
		rec.ValidUntil = nullableDate(validUntil)
		rec.TotalAmount = nullableFloat(total)
		rec.Items = nullableString(items)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return out, nil
}

func inserted(res sql.Result, operation string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s rows affected: %w", operation, err)
	}
	return n > 0, nil
}

func dateArg(d *domain.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func nullableDate(v sql.NullTime) *domain.Date {
	if !v.Valid {
		return nil
	}
	d := domain.NewDate(v.Time.Year(), v.Time.Month(), v.Time.Day())
	return &d
}
