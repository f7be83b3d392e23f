// Package pdf reads the native text layer of PDFs and rasterises their pages.
package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// TextLayerReader extracts embedded page text without rendering.
type TextLayerReader struct{}

func NewTextLayerReader() *TextLayerReader {
	return &TextLayerReader{}
}

func (r *TextLayerReader) PageTexts(ctx context.Context, data []byte) (pages []string, err error) {
	// The parser panics on some malformed xref tables.
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("read pdf text layer: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d text: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
