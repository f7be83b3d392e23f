// Package azure recognises printed text with the Azure Computer Vision OCR API.
package azure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"
	"github.com/disintegration/imaging"

	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/infrastructure/resilience"
)

type printedTextRecognizer interface {
	RecognizePrintedTextInStream(ctx context.Context, detectOrientation bool, img io.ReadCloser, language computervision.OcrLanguages) (computervision.OcrResult, error)
}

type Engine struct {
	client   printedTextRecognizer
	language computervision.OcrLanguages
	executor *resilience.Executor
}

// New builds an engine for the given endpoint. language is an Azure OCR
// language code; empty means auto-detect, which reads mixed Italian and
// English documents.
func New(endpoint, apiKey, language string, executor *resilience.Executor) (*Engine, error) {
	if strings.TrimSpace(endpoint) == "" || strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("azure vision endpoint and key are required")
	}
	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(apiKey)
	return newWithClient(client, language, executor), nil
}

func newWithClient(client printedTextRecognizer, language string, executor *resilience.Executor) *Engine {
	lang := computervision.OcrLanguages(strings.ToLower(strings.TrimSpace(language)))
	if lang == "" {
		lang = computervision.OcrLanguagesUnk
	}
	return &Engine{client: client, language: lang, executor: executor}
}

func (e *Engine) Recognize(ctx context.Context, img image.Image) (string, error) {
	if img == nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "azure recognize", errors.New("nil image"))
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	payload := buf.Bytes()

	result, err := resilience.Call(ctx, e.executor, "ocr.azure", func(ctx context.Context) (computervision.OcrResult, error) {
		res, err := e.client.RecognizePrintedTextInStream(ctx, true, io.NopCloser(bytes.NewReader(payload)), e.language)
		if err != nil {
			return res, fmt.Errorf("azure ocr: %w", err)
		}
		return res, nil
	}, classifyAzureError)
	if err != nil {
		if resilience.IsCircuitOpen(err) {
			return "", domain.WrapError(domain.ErrTemporary, "azure recognize", err)
		}
		return "", err
	}
	return flatten(result), nil
}

// flatten joins words into lines and lines into newline-separated text,
// region by region.
func flatten(result computervision.OcrResult) string {
	if result.Regions == nil {
		return ""
	}
	var lines []string
	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			if line.Words == nil {
				continue
			}
			words := make([]string, 0, len(*line.Words))
			for _, w := range *line.Words {
				if w.Text != nil {
					words = append(words, *w.Text)
				}
			}
			if len(words) > 0 {
				lines = append(lines, strings.Join(words, " "))
			}
		}
	}
	return strings.Join(lines, "\n")
}

func classifyAzureError(err error) resilience.ErrorClassification {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{}
	}
	var detailed autorest.DetailedError
	if errors.As(err, &detailed) {
		code, _ := detailed.StatusCode.(int)
		if code == 429 || code >= 500 {
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
}
