package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/core/ports"
)

type ReviewUseCase struct {
	repo ports.DocumentRepository
}

func NewReviewUseCase(repo ports.DocumentRepository) *ReviewUseCase {
	return &ReviewUseCase{repo: repo}
}

// Relabel stores a manual label with full confidence. Field records are left
// to the structured reprocess pass.
func (uc *ReviewUseCase) Relabel(ctx context.Context, documentID, label string) error {
	docType, ok := domain.ParseDocumentType(label)
	if !ok {
		return domain.WrapError(domain.ErrInvalidInput, "relabel", fmt.Errorf("unknown label %q", label))
	}
	if err := uc.repo.Relabel(ctx, documentID, docType); err != nil {
		return fmt.Errorf("relabel document: %w", err)
	}
	return nil
}
