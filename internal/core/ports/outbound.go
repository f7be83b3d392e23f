package ports

import (
	"context"
	"image"
	"io"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	ListUnclassified(ctx context.Context) ([]domain.Document, error)
	ListPendingStructured(ctx context.Context) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveClassification(ctx context.Context, id string, cls domain.Classification, extracted ExtractionInfo) error
	Relabel(ctx context.Context, id string, label domain.DocumentType) error
}

// ExtractionInfo carries the text-extraction facts stored next to a classification.
type ExtractionInfo struct {
	UsedOCR         bool
	TextStoragePath string
}

// FieldRepository persists structured invoice and quote records.
type FieldRepository interface {
	SaveInvoice(ctx context.Context, documentID string, fields *domain.InvoiceFields) (bool, error)
	SaveQuote(ctx context.Context, documentID string, fields *domain.QuoteFields) (bool, error)
	ListInvoices(ctx context.Context) ([]domain.InvoiceRecord, error)
	ListQuotes(ctx context.Context) ([]domain.QuoteRecord, error)
}

// ObjectStorage stores source documents and their extracted text.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor turns a stored document into flat text.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (domain.ExtractedText, error)
	ExtractText(ctx context.Context, data []byte, ext string) domain.ExtractedText
}

// DocumentClassifier labels extracted text.
type DocumentClassifier interface {
	Classify(ctx context.Context, text string) (domain.Classification, error)
}

// StructuredExtractor builds the field record for labels that carry one.
// It returns nil for labels without structured fields.
type StructuredExtractor interface {
	ExtractStructuredFields(text string, label domain.DocumentType) domain.StructuredFields
}

// OCREngine recognises text in a decoded image.
type OCREngine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// PDFTextReader returns the native text layer of every page.
type PDFTextReader interface {
	PageTexts(ctx context.Context, data []byte) ([]string, error)
}

// PDFRenderer rasterises every page at the given resolution.
type PDFRenderer interface {
	RenderPages(ctx context.Context, data []byte, dpi int) ([]image.Image, error)
}

// TableExporter renders invoice and quote records as downloadable files.
type TableExporter interface {
	Invoices(records []domain.InvoiceRecord) ([]byte, error)
	Quotes(records []domain.QuoteRecord) ([]byte, error)
	ContentType() string
	Extension() string
}

// PipelineMetrics records pipeline outcomes. Implementations must be safe for
// concurrent use.
type PipelineMetrics interface {
	DocumentClassified(label domain.DocumentType, usedOCR bool)
	RecordCreated(label domain.DocumentType)
}
