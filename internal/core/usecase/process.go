package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/core/ports"
)

// Pipeline bundles the adapters that turn a stored document into a
// classification and, for invoices and quotes, a field record.
type Pipeline struct {
	Repo       ports.DocumentRepository
	Fields     ports.FieldRepository
	Storage    ports.ObjectStorage
	Extractor  ports.TextExtractor
	Classifier ports.DocumentClassifier
	Parser     ports.StructuredExtractor
	Metrics    ports.PipelineMetrics
	Logger     *slog.Logger
}

func (p Pipeline) withDefaults() Pipeline {
	if p.Metrics == nil {
		p.Metrics = nopMetrics{}
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return p
}

type nopMetrics struct{}

func (nopMetrics) DocumentClassified(domain.DocumentType, bool) {}
func (nopMetrics) RecordCreated(domain.DocumentType)            {}

type ProcessDocumentUseCase struct {
	p Pipeline
}

func NewProcessDocumentUseCase(p Pipeline) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{p: p.withDefaults()}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	cls, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}

	uc.p.Logger.Info("document_processed",
		"document_id", documentID,
		"label", cls.Label,
		"confidence", cls.Confidence,
	)
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (domain.Classification, error) {
	doc, err := uc.p.Repo.GetByID(ctx, documentID)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("fetch document by id: %w", err)
	}
	return uc.p.analyze(ctx, doc)
}

// analyze extracts, stores and classifies the text of doc, then saves the
// field record when the label carries one.
func (p Pipeline) analyze(ctx context.Context, doc *domain.Document) (domain.Classification, error) {
	extracted, err := p.Extractor.Extract(ctx, doc)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("extract text: %w", err)
	}

	textKey := textKeyFor(doc.StoragePath)
	if err := p.Storage.Save(ctx, textKey, strings.NewReader(extracted.Text)); err != nil {
		return domain.Classification{}, fmt.Errorf("save extracted text: %w", err)
	}

	cls, err := p.Classifier.Classify(ctx, extracted.Text)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("classify document: %w", err)
	}

	info := ports.ExtractionInfo{UsedOCR: extracted.UsedOCR, TextStoragePath: textKey}
	if err := p.Repo.SaveClassification(ctx, doc.ID, cls, info); err != nil {
		return domain.Classification{}, fmt.Errorf("save classification: %w", err)
	}
	p.Metrics.DocumentClassified(cls.Label, extracted.UsedOCR)

	if cls.Label.HasStructuredFields() {
		if _, err := p.saveFields(ctx, doc.ID, p.Parser.ExtractStructuredFields(extracted.Text, cls.Label)); err != nil {
			return domain.Classification{}, err
		}
	}
	return cls, nil
}

// saveFields stores a field record; existing records for the document are kept.
func (p Pipeline) saveFields(ctx context.Context, documentID string, fields domain.StructuredFields) (bool, error) {
	var (
		created bool
		err     error
	)
	switch f := fields.(type) {
	case *domain.InvoiceFields:
		created, err = p.Fields.SaveInvoice(ctx, documentID, f)
	case *domain.QuoteFields:
		created, err = p.Fields.SaveQuote(ctx, documentID, f)
	default:
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("save %s fields: %w", fields.DocumentType(), err)
	}
	if created {
		p.Metrics.RecordCreated(fields.DocumentType())
	}
	return created, nil
}

// storedText prefers the saved extraction and re-extracts the raw file otherwise.
func (p Pipeline) storedText(ctx context.Context, doc *domain.Document) (string, bool, error) {
	if doc.TextStoragePath != "" {
		ok, err := p.Storage.Exists(ctx, doc.TextStoragePath)
		if err != nil {
			return "", false, fmt.Errorf("check stored text: %w", err)
		}
		if ok {
			text, err := p.readAll(ctx, doc.TextStoragePath)
			return text, true, err
		}
	}

	ok, err := p.Storage.Exists(ctx, doc.StoragePath)
	if err != nil {
		return "", false, fmt.Errorf("check source document: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	extracted, err := p.Extractor.Extract(ctx, doc)
	if err != nil {
		return "", true, fmt.Errorf("extract text: %w", err)
	}
	return extracted.Text, true, nil
}

func (p Pipeline) readAll(ctx context.Context, key string) (string, error) {
	rc, err := p.Storage.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", key, err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return string(raw), nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.p.Repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	uc.p.Logger.Warn("document_failed", "document_id", documentID, "error", processErr)
	return uc.markStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}
