package domain

import (
	"strings"
	"time"
)

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// DocumentType is the label assigned by classification.
type DocumentType string

const (
	DocTypeInvoice        DocumentType = "invoice"
	DocTypeQuote          DocumentType = "quote"
	DocTypeRegisteredMail DocumentType = "registered_mail"
	DocTypeOther          DocumentType = "other"
)

var docTypeAliases = map[string]DocumentType{
	"invoice":         DocTypeInvoice,
	"fattura":         DocTypeInvoice,
	"quote":           DocTypeQuote,
	"preventivo":      DocTypeQuote,
	"registered_mail": DocTypeRegisteredMail,
	"pec":             DocTypeRegisteredMail,
	"other":           DocTypeOther,
	"altro":           DocTypeOther,
}

// ParseDocumentType accepts canonical labels and their Italian aliases.
func ParseDocumentType(raw string) (DocumentType, bool) {
	t, ok := docTypeAliases[strings.ToLower(strings.TrimSpace(raw))]
	return t, ok
}

// HasStructuredFields reports whether the label carries an extractable field record.
func (t DocumentType) HasStructuredFields() bool {
	return t == DocTypeInvoice || t == DocTypeQuote
}

type Document struct {
	ID              string         `json:"id"`
	Filename        string         `json:"filename"`
	MimeType        string         `json:"mime_type"`
	StoragePath     string         `json:"storage_path"`
	TextStoragePath string         `json:"text_storage_path,omitempty"`
	DocType         DocumentType   `json:"doc_type,omitempty"`
	Confidence      *float64       `json:"confidence,omitempty"`
	UsedOCR         bool           `json:"used_ocr"`
	Status          DocumentStatus `json:"status"`
	Error           string         `json:"error,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ExtractedText is the flat text of one document and whether OCR produced it.
type ExtractedText struct {
	Text    string `json:"text"`
	UsedOCR bool   `json:"used_ocr"`
}

type Classification struct {
	Label      DocumentType `json:"label"`
	Confidence float64      `json:"confidence"`
}
