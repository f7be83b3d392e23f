package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/document-intake/internal/config"
	"github.com/kirillkom/document-intake/internal/core/ports"
	"github.com/kirillkom/document-intake/internal/core/usecase"
	"github.com/kirillkom/document-intake/internal/infrastructure/export"
	"github.com/kirillkom/document-intake/internal/infrastructure/queue/nats"
	"github.com/kirillkom/document-intake/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/document-intake/internal/infrastructure/resilience"
	"github.com/kirillkom/document-intake/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue       ports.MessageQueue
	Documents   ports.DocumentReader
	IngestUC    ports.DocumentIngestor
	ProcessUC   ports.DocumentProcessor
	ReviewUC    ports.DocumentReviewer
	ReprocessUC ports.Reprocessor
	RecordsUC   *usecase.RecordsUseCase

	closeFn func()
}

// New wires every adapter. pipelineMetrics may be nil.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, pipelineMetrics ports.PipelineMetrics) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	fields := postgres.NewFieldRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		QueueGroup:         cfg.NATSQueueGroup,
		MaxConcurrent:      cfg.WorkerConcurrency,
		ResilienceExecutor: resilience.NewExecutor(cfg.QueueResilience).WithLogger(logger),
		Logger:             logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	extraction, err := NewExtraction(cfg, storage, logger)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, err
	}

	pipeline := usecase.Pipeline{
		Repo:       repo,
		Fields:     fields,
		Storage:    storage,
		Extractor:  extraction.Extractor,
		Classifier: extraction.Classifier,
		Parser:     extraction.Parser,
		Metrics:    pipelineMetrics,
		Logger:     logger,
	}

	return &App{
		Config: cfg,
		Logger: logger,
		Queue:  queue,

		Documents:   usecase.NewDocumentQueryUseCase(repo),
		IngestUC:    usecase.NewIngestDocumentUseCase(repo, storage, queue),
		ProcessUC:   usecase.NewProcessDocumentUseCase(pipeline),
		ReviewUC:    usecase.NewReviewUseCase(repo),
		ReprocessUC: usecase.NewReprocessUseCase(pipeline),
		RecordsUC:   usecase.NewRecordsUseCase(fields, export.NewCSV(), export.NewXLSX(logger)),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
