package ports

import (
	"context"
	"io"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentReviewer applies a manual label to a document.
type DocumentReviewer interface {
	Relabel(ctx context.Context, documentID, label string) error
}

// Reprocessor runs batch catch-up jobs over stored documents.
type Reprocessor interface {
	ReprocessMissing(ctx context.Context) (domain.ReprocessSummary, error)
	ReprocessStructured(ctx context.Context) (domain.ReprocessSummary, error)
}

// RecordReader lists structured records.
type RecordReader interface {
	ListInvoices(ctx context.Context) ([]domain.InvoiceRecord, error)
	ListQuotes(ctx context.Context) ([]domain.QuoteRecord, error)
}

// RecordExporter renders structured records in a requested format.
type RecordExporter interface {
	ExportInvoices(ctx context.Context, format string) (*domain.ExportFile, error)
	ExportQuotes(ctx context.Context, format string) (*domain.ExportFile, error)
}
