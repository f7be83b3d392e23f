package azure

import (
	"context"
	"errors"
	"image"
	"io"
	"testing"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"
)

type fakeRecognizer struct {
	result   computervision.OcrResult
	err      error
	language computervision.OcrLanguages
	size     int
}

func (f *fakeRecognizer) RecognizePrintedTextInStream(_ context.Context, _ bool, img io.ReadCloser, language computervision.OcrLanguages) (computervision.OcrResult, error) {
	defer img.Close()
	raw, _ := io.ReadAll(img)
	f.size = len(raw)
	f.language = language
	return f.result, f.err
}

func words(texts ...string) *[]computervision.OcrWord {
	out := make([]computervision.OcrWord, 0, len(texts))
	for _, t := range texts {
		t := t
		out = append(out, computervision.OcrWord{Text: &t})
	}
	return &out
}

func TestRecognizeFlattensRegions(t *testing.T) {
	fake := &fakeRecognizer{result: computervision.OcrResult{
		Regions: &[]computervision.OcrRegion{
			{Lines: &[]computervision.OcrLine{
				{Words: words("Fattura", "n.", "INV-2025-007")},
				{Words: words("Totale", "€", "122,00")},
			}},
			{Lines: &[]computervision.OcrLine{
				{Words: words("IVA", "22%")},
				{Words: nil},
			}},
		},
	}}
	e := newWithClient(fake, "", nil)

	text, err := e.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 4, 4)))
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	want := "Fattura n. INV-2025-007\nTotale € 122,00\nIVA 22%"
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}
	if fake.language != computervision.OcrLanguagesUnk {
		t.Fatalf("default language = %s, want auto-detect", fake.language)
	}
	if fake.size == 0 {
		t.Fatal("expected a non-empty PNG payload")
	}
}

func TestRecognizeUsesConfiguredLanguage(t *testing.T) {
	fake := &fakeRecognizer{}
	e := newWithClient(fake, " IT ", nil)
	if _, err := e.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if fake.language != computervision.OcrLanguagesIt {
		t.Fatalf("language = %s, want it", fake.language)
	}
}

func TestRecognizeReturnsClientError(t *testing.T) {
	fake := &fakeRecognizer{err: errors.New("unavailable")}
	e := newWithClient(fake, "en", nil)
	if _, err := e.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 2, 2))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New("", "key", "", nil); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}

func TestClassifyAzureError(t *testing.T) {
	throttled := autorest.DetailedError{StatusCode: 429}
	if !classifyAzureError(throttled).Retryable {
		t.Fatal("429 should be retryable")
	}
	bad := autorest.DetailedError{StatusCode: 400}
	if c := classifyAzureError(bad); c.Retryable || c.RecordFailure {
		t.Fatalf("400 classification = %+v", c)
	}
	if classifyAzureError(context.Canceled).Retryable {
		t.Fatal("cancellation should not be retried")
	}
}
