package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirillkom/document-intake/internal/config"
	"github.com/kirillkom/document-intake/internal/core/ports"
	"github.com/kirillkom/document-intake/internal/infrastructure/classifier/keyword"
	"github.com/kirillkom/document-intake/internal/infrastructure/extractor/ocrfallback"
	"github.com/kirillkom/document-intake/internal/infrastructure/ocr/azure"
	"github.com/kirillkom/document-intake/internal/infrastructure/ocr/tesseract"
	"github.com/kirillkom/document-intake/internal/infrastructure/parser/heuristic"
	"github.com/kirillkom/document-intake/internal/infrastructure/pdf"
	"github.com/kirillkom/document-intake/internal/infrastructure/resilience"
)

// Extraction is the storage-free half of the pipeline, shared by the
// services and the docextract CLI.
type Extraction struct {
	Extractor  *ocrfallback.Extractor
	Classifier *keyword.Classifier
	Parser     *heuristic.Parser
}

func NewExtraction(cfg config.Config, storage ports.ObjectStorage, logger *slog.Logger) (*Extraction, error) {
	engine, err := NewOCREngine(cfg, logger)
	if err != nil {
		return nil, err
	}
	classifier, err := NewClassifier(cfg)
	if err != nil {
		return nil, err
	}

	extractor := ocrfallback.New(
		storage,
		engine,
		pdf.NewTextLayerReader(),
		pdf.NewRenderer(cfg.PDFMaxRenderPages),
		ocrfallback.Config{
			MinNativeTextChars: cfg.PDFMinNativeChars,
			RenderDPI:          cfg.PDFRenderDPI,
		},
		logger,
	)
	return &Extraction{
		Extractor:  extractor,
		Classifier: classifier,
		Parser:     heuristic.New(),
	}, nil
}

// NewOCREngine picks the engine named by OCR_ENGINE.
func NewOCREngine(cfg config.Config, logger *slog.Logger) (ports.OCREngine, error) {
	executor := resilience.NewExecutor(cfg.OCRResilience).WithLogger(logger)

	switch cfg.OCREngine {
	case "", "tesseract":
		return tesseract.New(tesseract.Config{
			Binary:      cfg.TesseractBin,
			Languages:   cfg.OCRLanguages,
			TessdataDir: cfg.TessdataDir,
			PSM:         cfg.TesseractPSM,
			Preprocess:  cfg.OCRPreprocess,
		}, tesseract.WithExecutor(executor)), nil
	case "azure":
		if cfg.AzureVisionEndpoint == "" || cfg.AzureVisionKey == "" {
			return nil, errors.New("azure ocr requires AZURE_VISION_ENDPOINT and AZURE_VISION_KEY")
		}
		engine, err := azure.New(cfg.AzureVisionEndpoint, cfg.AzureVisionKey, cfg.AzureVisionLanguage, executor)
		if err != nil {
			return nil, fmt.Errorf("init azure ocr: %w", err)
		}
		return engine, nil
	default:
		return nil, fmt.Errorf("unknown OCR_ENGINE %q", cfg.OCREngine)
	}
}

func NewClassifier(cfg config.Config) (*keyword.Classifier, error) {
	var categories []keyword.Category
	if cfg.ClassifierCategoriesFile != "" {
		loaded, err := keyword.LoadCategories(cfg.ClassifierCategoriesFile)
		if err != nil {
			return nil, fmt.Errorf("load classifier categories: %w", err)
		}
		categories = loaded
	}
	classifier, err := keyword.New(categories)
	if err != nil {
		return nil, fmt.Errorf("init classifier: %w", err)
	}
	return classifier, nil
}
