package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/core/ports"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// RecordsUseCase lists field records and renders them for download.
type RecordsUseCase struct {
	fields    ports.FieldRepository
	exporters map[string]ports.TableExporter
}

func NewRecordsUseCase(fields ports.FieldRepository, csv, xlsx ports.TableExporter) *RecordsUseCase {
	return &RecordsUseCase{
		fields: fields,
		exporters: map[string]ports.TableExporter{
			FormatCSV:  csv,
			FormatXLSX: xlsx,
		},
	}
}

func (uc *RecordsUseCase) ListInvoices(ctx context.Context) ([]domain.InvoiceRecord, error) {
	records, err := uc.fields.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return records, nil
}

func (uc *RecordsUseCase) ListQuotes(ctx context.Context) ([]domain.QuoteRecord, error) {
	records, err := uc.fields.ListQuotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return records, nil
}

func (uc *RecordsUseCase) ExportInvoices(ctx context.Context, format string) (*domain.ExportFile, error) {
	exporter, err := uc.exporter(format)
	if err != nil {
		return nil, err
	}
	records, err := uc.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}
	body, err := exporter.Invoices(records)
	if err != nil {
		return nil, fmt.Errorf("render invoices: %w", err)
	}
	return &domain.ExportFile{
		Filename:    "fatture." + exporter.Extension(),
		ContentType: exporter.ContentType(),
		Body:        body,
	}, nil
}

func (uc *RecordsUseCase) ExportQuotes(ctx context.Context, format string) (*domain.ExportFile, error) {
	exporter, err := uc.exporter(format)
	if err != nil {
		return nil, err
	}
	records, err := uc.ListQuotes(ctx)
	if err != nil {
		return nil, err
	}
	body, err := exporter.Quotes(records)
	if err != nil {
		return nil, fmt.Errorf("render quotes: %w", err)
	}
	return &domain.ExportFile{
		Filename:    "preventivi." + exporter.Extension(),
		ContentType: exporter.ContentType(),
		Body:        body,
	}, nil
}

// ParseExportFormat maps request values to a known format; empty means the
// Italian CSV.
func ParseExportFormat(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "csv", "csv_it", "csv-it":
		return FormatCSV, true
	case "xlsx", "excel":
		return FormatXLSX, true
	default:
		return "", false
	}
}

func (uc *RecordsUseCase) exporter(raw string) (ports.TableExporter, error) {
	format, ok := ParseExportFormat(raw)
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "export", fmt.Errorf("unsupported format %q", raw))
	}
	exporter := uc.exporters[format]
	if exporter == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "export", fmt.Errorf("format %q not configured", format))
	}
	return exporter, nil
}
