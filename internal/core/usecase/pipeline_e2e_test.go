package usecase

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/infrastructure/classifier/keyword"
	"github.com/kirillkom/document-intake/internal/infrastructure/extractor/ocrfallback"
	"github.com/kirillkom/document-intake/internal/infrastructure/parser/heuristic"
)

const scannedInvoice = `ACME Forniture S.r.l.
Via Roma 1, 20100 Milano
Fattura n. INV-2025-007
Data: 14/10/2025
Imponibile € 100,00
IVA € 22,00
Totale € 122,00
Partita IVA 01234567890`

type ocrStub struct {
	text  string
	calls int
}

func (o *ocrStub) Recognize(context.Context, image.Image) (string, error) {
	o.calls++
	return o.text, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestScannedInvoiceEndToEnd(t *testing.T) {
	storage := newStorageFake()
	storage.objects["raw/doc-1_fattura.png"] = pngBytes(t)
	repo := newDocRepoFake(domain.Document{ID: "doc-1", Filename: "fattura.png", StoragePath: "raw/doc-1_fattura.png"})
	fields := newFieldRepoFake()
	ocr := &ocrStub{text: scannedInvoice}

	classifier, err := keyword.New(nil)
	if err != nil {
		t.Fatalf("keyword.New() error = %v", err)
	}
	uc := NewProcessDocumentUseCase(Pipeline{
		Repo:       repo,
		Fields:     fields,
		Storage:    storage,
		Extractor:  ocrfallback.New(storage, ocr, nil, nil, ocrfallback.Config{}, nil),
		Classifier: classifier,
		Parser:     heuristic.New(),
	})

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if ocr.calls != 1 {
		t.Fatalf("expected one OCR call, got %d", ocr.calls)
	}

	doc := repo.docs["doc-1"]
	if doc.DocType != domain.DocTypeInvoice || !doc.UsedOCR || doc.Status != domain.StatusReady {
		t.Fatalf("unexpected document %+v", doc)
	}

	inv := fields.invoices["doc-1"]
	if inv == nil {
		t.Fatal("expected invoice record")
	}
	if inv.Number == nil || *inv.Number != "INV-2025-007" {
		t.Fatalf("number = %v", inv.Number)
	}
	if inv.TotalAmount == nil || *inv.TotalAmount != 122 {
		t.Fatalf("total = %v", inv.TotalAmount)
	}
	if inv.VATAmount == nil || *inv.VATAmount != 22 {
		t.Fatalf("vat = %v", inv.VATAmount)
	}
	if inv.NetAmount == nil || *inv.NetAmount != 100 {
		t.Fatalf("net = %v", inv.NetAmount)
	}
	if inv.Currency == nil || *inv.Currency != "EUR" {
		t.Fatalf("currency = %v", inv.Currency)
	}
	if inv.Supplier == nil || *inv.Supplier != "ACME Forniture S.r.l." {
		t.Fatalf("supplier = %v", inv.Supplier)
	}
	if inv.SupplierVATID == nil || *inv.SupplierVATID != "01234567890" {
		t.Fatalf("vat id = %v", inv.SupplierVATID)
	}
	if inv.Confidence != 1.0 {
		t.Fatalf("confidence = %v", inv.Confidence)
	}
}
