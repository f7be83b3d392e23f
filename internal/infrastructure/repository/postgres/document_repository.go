package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/core/ports"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, filename, mime_type, storage_path, text_storage_path, doc_type, confidence, used_ocr, status, error_message, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		doc.ID, doc.Filename, doc.MimeType, doc.StoragePath, emptyAsNull(doc.TextStoragePath),
		emptyAsNull(string(doc.DocType)), doc.Confidence, doc.UsedOCR, string(doc.Status),
		emptyAsNull(doc.Error), doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]domain.Document, error) {
	return r.query(ctx, "list documents", `
SELECT `+documentColumns+`
FROM documents
ORDER BY created_at DESC
`)
}

// ListUnclassified returns documents never labelled, oldest first.
func (r *DocumentRepository) ListUnclassified(ctx context.Context) ([]domain.Document, error) {
	return r.query(ctx, "list unclassified documents", `
SELECT `+documentColumns+`
FROM documents
WHERE doc_type IS NULL OR confidence IS NULL
ORDER BY created_at ASC
`)
}

// ListPendingStructured returns invoices and quotes that have no field record yet.
func (r *DocumentRepository) ListPendingStructured(ctx context.Context) ([]domain.Document, error) {
	return r.query(ctx, "list pending structured documents", `
SELECT `+documentColumns+`
FROM documents d
WHERE (d.doc_type = 'invoice' AND NOT EXISTS (SELECT 1 FROM invoices i WHERE i.document_id = d.id))
   OR (d.doc_type = 'quote' AND NOT EXISTS (SELECT 1 FROM quotes q WHERE q.document_id = d.id))
ORDER BY d.created_at ASC
`)
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), emptyAsNull(errMessage), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return expectOneRow(res, "update document status")
}

func (r *DocumentRepository) SaveClassification(ctx context.Context, id string, cls domain.Classification, extracted ports.ExtractionInfo) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET doc_type = $2, confidence = $3, used_ocr = $4, text_storage_path = COALESCE($5, text_storage_path), updated_at = $6
WHERE id = $1
`, id, string(cls.Label), cls.Confidence, extracted.UsedOCR, emptyAsNull(extracted.TextStoragePath), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save classification: %w", err)
	}
	return expectOneRow(res, "save classification")
}

// Relabel stores a reviewer's label with full confidence.
func (r *DocumentRepository) Relabel(ctx context.Context, id string, label domain.DocumentType) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET doc_type = $2, confidence = 1.0, updated_at = $3
WHERE id = $1
`, id, string(label), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("relabel document: %w", err)
	}
	return expectOneRow(res, "relabel document")
}

func (r *DocumentRepository) query(ctx context.Context, operation, query string, args ...any) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func scanDocument(row rowScanner) (domain.Document, error) {
	var (
		doc        domain.Document
		textPath   sql.NullString
		docType    sql.NullString
		confidence sql.NullFloat64
		status     string
		errMessage sql.NullString
	)
	err := row.Scan(
		&doc.ID, &doc.Filename, &doc.MimeType, &doc.StoragePath, &textPath, &docType, &confidence,
		&doc.UsedOCR, &status, &errMessage, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return doc, err
		}
		return doc, fmt.Errorf("scan document: %w", err)
	}
	doc.TextStoragePath = textPath.String
	doc.DocType = domain.DocumentType(docType.String)
	doc.Confidence = nullableFloat(confidence)
	doc.Status = domain.DocumentStatus(status)
	doc.Error = errMessage.String
	return doc, nil
}

func emptyAsNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func errNotFound(operation string) error {
	return domain.WrapError(domain.ErrDocumentNotFound, operation, errors.New("no rows affected"))
}
