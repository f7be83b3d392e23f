package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/core/ports"
)

type statusCall struct {
	status domain.DocumentStatus
	errMsg string
}

type docRepoFake struct {
	mu          sync.Mutex
	docs        map[string]*domain.Document
	createErr   error
	getErr      error
	saveErr     error
	listErr     error
	statusCalls []statusCall
	info        map[string]ports.ExtractionInfo
}

func newDocRepoFake(docs ...domain.Document) *docRepoFake {
	f := &docRepoFake{docs: map[string]*domain.Document{}, info: map[string]ports.ExtractionInfo{}}
	for i := range docs {
		d := docs[i]
		f.docs[d.ID] = &d
	}
	return f
}

func (f *docRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyDoc := *doc
	f.docs[doc.ID] = &copyDoc
	return nil
}

func (f *docRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	d, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New(id))
	}
	copyDoc := *d
	return &copyDoc, nil
}

func (f *docRepoFake) List(context.Context) ([]domain.Document, error) {
	return f.filter(func(*domain.Document) bool { return true })
}

func (f *docRepoFake) ListUnclassified(context.Context) ([]domain.Document, error) {
	return f.filter(func(d *domain.Document) bool { return d.DocType == "" || d.Confidence == nil })
}

func (f *docRepoFake) ListPendingStructured(context.Context) ([]domain.Document, error) {
	return f.filter(func(d *domain.Document) bool { return d.DocType.HasStructuredFields() })
}

func (f *docRepoFake) filter(keep func(*domain.Document) bool) ([]domain.Document, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Document
	for _, d := range f.docs {
		if keep(d) {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *docRepoFake) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	if d, ok := f.docs[id]; ok {
		d.Status = status
		d.Error = errMessage
	}
	return nil
}

func (f *docRepoFake) SaveClassification(_ context.Context, id string, cls domain.Classification, info ports.ExtractionInfo) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	d, ok := f.docs[id]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	conf := cls.Confidence
	d.DocType = cls.Label
	d.Confidence = &conf
	d.UsedOCR = info.UsedOCR
	d.TextStoragePath = info.TextStoragePath
	f.info[id] = info
	return nil
}

func (f *docRepoFake) Relabel(_ context.Context, id string, label domain.DocumentType) error {
	d, ok := f.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "relabel", errors.New(id))
	}
	one := 1.0
	d.DocType = label
	d.Confidence = &one
	return nil
}

type fieldRepoFake struct {
	invoices map[string]*domain.InvoiceFields
	quotes   map[string]*domain.QuoteFields
	err      error
}

func newFieldRepoFake() *fieldRepoFake {
	return &fieldRepoFake{invoices: map[string]*domain.InvoiceFields{}, quotes: map[string]*domain.QuoteFields{}}
}

func (f *fieldRepoFake) SaveInvoice(_ context.Context, documentID string, fields *domain.InvoiceFields) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.invoices[documentID]; ok {
		return false, nil
	}
	f.invoices[documentID] = fields
	return true, nil
}

func (f *fieldRepoFake) SaveQuote(_ context.Context, documentID string, fields *domain.QuoteFields) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.quotes[documentID]; ok {
		return false, nil
	}
	f.quotes[documentID] = fields
	return true, nil
}

func (f *fieldRepoFake) ListInvoices(context.Context) ([]domain.InvoiceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.InvoiceRecord
	for id, fields := range f.invoices {
		out = append(out, domain.InvoiceRecord{ID: "inv-" + id, DocumentID: id, InvoiceFields: *fields})
	}
	return out, nil
}

func (f *fieldRepoFake) ListQuotes(context.Context) ([]domain.QuoteRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.QuoteRecord
	for id, fields := range f.quotes {
		out = append(out, domain.QuoteRecord{ID: "quo-" + id, DocumentID: id, QuoteFields: *fields})
	}
	return out, nil
}

type storageFake struct {
	objects map[string][]byte
	saveErr error
}

func newStorageFake() *storageFake {
	return &storageFake{objects: map[string][]byte{}}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objects[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.objects[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "open", errors.New(key))
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *storageFake) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

type queueFake struct {
	documentID string
	err        error
}

func (f *queueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.documentID = documentID
	return nil
}

func (f *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

type extractorFake struct {
	out   domain.ExtractedText
	err   error
	calls int
}

func (f *extractorFake) Extract(context.Context, *domain.Document) (domain.ExtractedText, error) {
	f.calls++
	return f.out, f.err
}

func (f *extractorFake) ExtractText(context.Context, []byte, string) domain.ExtractedText {
	return f.out
}

type classifierFake struct {
	cls domain.Classification
	err error
}

func (f *classifierFake) Classify(context.Context, string) (domain.Classification, error) {
	return f.cls, f.err
}

type parserFake struct {
	texts []string
}

func (f *parserFake) ExtractStructuredFields(text string, label domain.DocumentType) domain.StructuredFields {
	f.texts = append(f.texts, text)
	switch label {
	case domain.DocTypeInvoice:
		return &domain.InvoiceFields{Confidence: 0.5}
	case domain.DocTypeQuote:
		return &domain.QuoteFields{Confidence: 0.5}
	default:
		return nil
	}
}

type metricsFake struct {
	classified []domain.DocumentType
	created    []domain.DocumentType
}

func (f *metricsFake) DocumentClassified(label domain.DocumentType, _ bool) {
	f.classified = append(f.classified, label)
}

func (f *metricsFake) RecordCreated(label domain.DocumentType) {
	f.created = append(f.created, label)
}

type exporterFake struct {
	ext string
}

func (f exporterFake) Invoices(records []domain.InvoiceRecord) ([]byte, error) {
	return []byte(f.ext), nil
}

func (f exporterFake) Quotes(records []domain.QuoteRecord) ([]byte, error) {
	return []byte(f.ext), nil
}

func (f exporterFake) ContentType() string { return "application/" + f.ext }
func (f exporterFake) Extension() string   { return f.ext }
