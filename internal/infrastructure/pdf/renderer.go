package pdf

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// Renderer rasterises pages with MuPDF.
type Renderer struct {
	// MaxPages bounds how many pages are rendered; 0 renders all.
	MaxPages int
}

func NewRenderer(maxPages int) *Renderer {
	return &Renderer{MaxPages: maxPages}
}

func (r *Renderer) RenderPages(ctx context.Context, data []byte, dpi int) ([]image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if r.MaxPages > 0 && n > r.MaxPages {
		n = r.MaxPages
	}
	images := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}
		images = append(images, img)
	}
	return images, nil
}
