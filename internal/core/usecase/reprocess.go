package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// ReprocessUseCase runs catch-up passes over stored documents. A failing
// document is counted and skipped; only listing failures and cancellation
// abort a run.
type ReprocessUseCase struct {
	p Pipeline
}

func NewReprocessUseCase(p Pipeline) *ReprocessUseCase {
	return &ReprocessUseCase{p: p.withDefaults()}
}

// ReprocessMissing re-extracts and re-classifies documents without a label.
func (uc *ReprocessUseCase) ReprocessMissing(ctx context.Context) (domain.ReprocessSummary, error) {
	var summary domain.ReprocessSummary

	docs, err := uc.p.Repo.ListUnclassified(ctx)
	if err != nil {
		return summary, fmt.Errorf("list unclassified documents: %w", err)
	}

	for i := range docs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		doc := &docs[i]

		ok, err := uc.p.Storage.Exists(ctx, doc.StoragePath)
		if err != nil || !ok {
			if err != nil {
				uc.p.Logger.Warn("reprocess_source_check_failed", "document_id", doc.ID, "error", err)
				summary.SkippedError++
			} else {
				summary.SkippedMissing++
			}
			continue
		}

		if _, err := uc.p.analyze(ctx, doc); err != nil {
			uc.p.Logger.Warn("reprocess_document_failed", "document_id", doc.ID, "error", err)
			summary.SkippedError++
			continue
		}
		if err := uc.p.Repo.UpdateStatus(ctx, doc.ID, domain.StatusReady, ""); err != nil {
			uc.p.Logger.Warn("reprocess_status_failed", "document_id", doc.ID, "error", err)
		}
		summary.Processed++
	}

	uc.p.Logger.Info("reprocess_missing_done",
		"processed", summary.Processed,
		"skipped_missing", summary.SkippedMissing,
		"skipped_error", summary.SkippedError,
	)
	return summary, nil
}

// ReprocessStructured builds field records for invoices and quotes that lack
// one. Documents without a source or with blank text count as missing.
func (uc *ReprocessUseCase) ReprocessStructured(ctx context.Context) (domain.ReprocessSummary, error) {
	var summary domain.ReprocessSummary

	docs, err := uc.p.Repo.ListPendingStructured(ctx)
	if err != nil {
		return summary, fmt.Errorf("list documents pending fields: %w", err)
	}

	for i := range docs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		doc := &docs[i]
		if !doc.DocType.HasStructuredFields() {
			continue
		}

		text, found, err := uc.p.storedText(ctx, doc)
		switch {
		case err != nil:
			uc.p.Logger.Warn("structured_text_failed", "document_id", doc.ID, "error", err)
			summary.SkippedError++
			continue
		case !found, strings.TrimSpace(text) == "":
			summary.SkippedMissing++
			continue
		}

		fields := uc.p.Parser.ExtractStructuredFields(text, doc.DocType)
		created, err := uc.p.saveFields(ctx, doc.ID, fields)
		if err != nil {
			uc.p.Logger.Warn("structured_save_failed", "document_id", doc.ID, "error", err)
			summary.SkippedError++
			continue
		}
		if !created {
			continue
		}
		summary.Processed++
		switch doc.DocType {
		case domain.DocTypeInvoice:
			summary.Invoices++
		case domain.DocTypeQuote:
			summary.Quotes++
		}
	}

	uc.p.Logger.Info("reprocess_structured_done",
		"invoices", summary.Invoices,
		"quotes", summary.Quotes,
		"skipped_missing", summary.SkippedMissing,
		"skipped_error", summary.SkippedError,
	)
	return summary, nil
}
