package export

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// Built-in "#,##0.00"; Excel shows it as 1.234,56 under an Italian locale.
	numFmtThousands2 = 4
	dateFormatIT     = "dd/mm/yyyy"
)

// XLSX writes one-sheet workbooks with typed date and number cells.
type XLSX struct {
	logger *slog.Logger
}

func NewXLSX(logger *slog.Logger) *XLSX {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSX{logger: logger}
}

func (*XLSX) ContentType() string { return xlsxContentType }
func (*XLSX) Extension() string   { return "xlsx" }

func (x *XLSX) Invoices(records []domain.InvoiceRecord) ([]byte, error) {
	return x.write(invoiceTable(records))
}

func (x *XLSX) Quotes(records []domain.QuoteRecord) ([]byte, error) {
	return x.write(quoteTable(records))
}

func (x *XLSX) write(t table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", t.sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	dateFmt := dateFormatIT
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return nil, fmt.Errorf("date style: %w", err)
	}
	numberStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtThousands2})
	if err != nil {
		return nil, fmt.Errorf("number style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, col := range t.columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(t.sheet, cell, col.header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(t.sheet, name, name, col.width); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(t.columns), 1)
	_ = f.SetCellStyle(t.sheet, "A1", last, headerStyle)

	for r, row := range t.rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			v, ok := xlsxValue(value)
			if !ok {
				continue
			}
			if err := f.SetCellValue(t.sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write cell %s: %w", cell, err)
			}
			switch t.columns[c].kind {
			case kindDate:
				_ = f.SetCellStyle(t.sheet, cell, cell, dateStyle)
			case kindNumber:
				_ = f.SetCellStyle(t.sheet, cell, cell, numberStyle)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	x.logger.Info("export_xlsx_ok", "sheet", t.sheet, "rows", len(t.rows), "bytes", buf.Len())
	return buf.Bytes(), nil
}

// xlsxValue unwraps optional cells; absent values leave the cell blank.
func xlsxValue(cell any) (any, bool) {
	switch v := cell.(type) {
	case string:
		return v, v != ""
	case *domain.Date:
		if v == nil || v.IsZero() {
			return nil, false
		}
		return v.Time, true
	case *float64:
		if v == nil {
			return nil, false
		}
		return *v, true
	default:
		return v, true
	}
}
