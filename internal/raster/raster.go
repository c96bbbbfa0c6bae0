// Package raster converts PDF documents into preview images.
package raster

import "context"

// Rasterizer renders the first page of a PDF into a PNG image.
type Rasterizer interface {
	// FirstPagePNG renders page 1 of the given PDF bytes and returns PNG bytes.
	FirstPagePNG(ctx context.Context, pdf []byte) ([]byte, error)
}
