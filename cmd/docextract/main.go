// Command docextract runs text extraction, classification and field
// extraction on one local file and prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/kirillkom/document-intake/internal/bootstrap"
	"github.com/kirillkom/document-intake/internal/config"
	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/observability/logging"
)

type result struct {
	File           string                  `json:"file"`
	TextLen        int                     `json:"text_len"`
	UsedOCR        bool                    `json:"used_ocr"`
	Classification domain.Classification   `json:"classification"`
	Fields         domain.StructuredFields `json:"fields"`
	Text           string                  `json:"text,omitempty"`
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, ff.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg := config.Load()

	fs := ff.NewFlagSet("docextract")
	var (
		file       = fs.StringLong("file", "", "document to analyse (pdf, png, jpg, tiff, webp)")
		engine     = fs.StringLong("engine", cfg.OCREngine, "OCR engine: tesseract or azure")
		lang       = fs.StringLong("lang", cfg.OCRLanguages, "tesseract languages, e.g. ita+eng")
		dpi        = fs.IntLong("dpi", cfg.PDFRenderDPI, "PDF render resolution for OCR")
		minChars   = fs.IntLong("min-chars", cfg.PDFMinNativeChars, "native PDF text below this length triggers OCR")
		categories = fs.StringLong("categories", cfg.ClassifierCategoriesFile, "YAML classifier table")
		printText  = fs.BoolLong("print-text", "include the extracted text in the output")
		logLevel   = fs.StringLong("log-level", "warn", "log level")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("DOCEXTRACT")); err != nil {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		return err
	}
	if *file == "" {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		return errors.New("--file is required")
	}

	cfg.OCREngine = *engine
	cfg.OCRLanguages = *lang
	cfg.PDFRenderDPI = *dpi
	cfg.PDFMinNativeChars = *minChars
	cfg.ClassifierCategoriesFile = *categories
	logger := logging.NewJSONLoggerTo(stderr, "docextract", *logLevel)

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read %s: %w", *file, err)
	}

	extraction, err := bootstrap.NewExtraction(cfg, nil, logger)
	if err != nil {
		return err
	}

	extracted := extraction.Extractor.ExtractText(ctx, data, filepath.Ext(*file))
	cls, err := extraction.Classifier.Classify(ctx, extracted.Text)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	out := result{
		File:           filepath.Base(*file),
		TextLen:        len(extracted.Text),
		UsedOCR:        extracted.UsedOCR,
		Classification: cls,
		Fields:         extraction.Parser.ExtractStructuredFields(extracted.Text, cls.Label),
	}
	if *printText {
		out.Text = extracted.Text
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
