// Package ocrfallback turns images and PDFs into flat text, falling back to
// OCR when a PDF has no usable text layer.
package ocrfallback

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/core/ports"
)

const (
	DefaultMinNativeTextChars = 100
	DefaultRenderDPI          = 300
)

type Config struct {
	// MinNativeTextChars is the trimmed character count below which a PDF is OCRed.
	MinNativeTextChars int
	RenderDPI          int
}

type Extractor struct {
	storage  ports.ObjectStorage
	ocr      ports.OCREngine
	textPDF  ports.PDFTextReader
	renderer ports.PDFRenderer
	cfg      Config
	logger   *slog.Logger
}

func New(
	storage ports.ObjectStorage,
	ocr ports.OCREngine,
	textPDF ports.PDFTextReader,
	renderer ports.PDFRenderer,
	cfg Config,
	logger *slog.Logger,
) *Extractor {
	if cfg.MinNativeTextChars <= 0 {
		cfg.MinNativeTextChars = DefaultMinNativeTextChars
	}
	if cfg.RenderDPI <= 0 {
		cfg.RenderDPI = DefaultRenderDPI
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		storage:  storage,
		ocr:      ocr,
		textPDF:  textPDF,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Extract reads the stored source of doc. Only storage failures are errors.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (domain.ExtractedText, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return domain.ExtractedText{}, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return domain.ExtractedText{}, fmt.Errorf("read source document: %w", err)
	}
	return e.ExtractText(ctx, raw, filepath.Ext(doc.Filename)), nil
}

// ExtractText never fails: unreadable input yields empty text.
func (e *Extractor) ExtractText(ctx context.Context, data []byte, ext string) domain.ExtractedText {
	ext = domain.NormalizeExt(ext)
	switch {
	case ext == "pdf":
		return e.fromPDF(ctx, data)
	case domain.IsImageExt(ext):
		return e.fromImage(ctx, data, ext)
	default:
		e.logger.Debug("extract_unsupported_extension", "ext", ext)
		return domain.ExtractedText{}
	}
}

func (e *Extractor) fromImage(ctx context.Context, data []byte, ext string) domain.ExtractedText {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		e.logger.Warn("image_decode_failed", "ext", ext, "error", err)
		return domain.ExtractedText{}
	}
	text, err := e.ocr.Recognize(ctx, img)
	if err != nil {
		e.logger.Warn("ocr_failed", "ext", ext, "error", err)
		return domain.ExtractedText{}
	}
	return domain.ExtractedText{Text: text, UsedOCR: true}
}

func (e *Extractor) fromPDF(ctx context.Context, data []byte) domain.ExtractedText {
	var native string
	pages, err := e.textPDF.PageTexts(ctx, data)
	if err != nil {
		e.logger.Warn("pdf_text_layer_failed", "error", err)
	} else {
		native = strings.Join(pages, "\n")
	}
	nativeChars := utf8.RuneCountInString(strings.TrimSpace(native))
	if nativeChars >= e.cfg.MinNativeTextChars {
		return domain.ExtractedText{Text: native}
	}

	e.logger.Info("pdf_ocr_fallback", "native_chars", nativeChars, "dpi", e.cfg.RenderDPI)
	images, err := e.renderer.RenderPages(ctx, data, e.cfg.RenderDPI)
	if err != nil {
		e.logger.Warn("pdf_render_failed", "error", err)
		return domain.ExtractedText{UsedOCR: true}
	}

	texts := make([]string, 0, len(images))
	for i, img := range images {
		text, err := e.ocr.Recognize(ctx, img)
		if err != nil {
			e.logger.Warn("ocr_failed", "page", i+1, "error", err)
			text = ""
		}
		texts = append(texts, text)
	}
	return domain.ExtractedText{Text: strings.Join(texts, "\n"), UsedOCR: true}
}
