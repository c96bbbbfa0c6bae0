package raster

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// PopplerRasterizer shells out to pdftoppm from the poppler-utils suite.
type PopplerRasterizer struct {
	// BinaryPath is the pdftoppm executable. Defaults to "pdftoppm" on PATH.
	BinaryPath string
	// DPI controls the render resolution. Defaults to 150.
	DPI int
}

var _ Rasterizer = (*PopplerRasterizer)(nil)

// NewPopplerRasterizer builds a rasterizer around the given pdftoppm binary.
func NewPopplerRasterizer(binaryPath string) *PopplerRasterizer {
	return &PopplerRasterizer{BinaryPath: binaryPath}
}

// FirstPagePNG renders page 1 of the PDF to PNG via pdftoppm.
func (r *PopplerRasterizer) FirstPagePNG(ctx context.Context, pdf []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("empty pdf input")
	}

	bin := r.BinaryPath
	if bin == "" {
		bin = "pdftoppm"
	}
	dpi := r.DPI
	if dpi <= 0 {
		dpi = 150
	}

	tmpDir, err := os.MkdirTemp("", "raster-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	inPath := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(inPath, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	outPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, bin,
		"-png",
		"-f", "1", "-l", "1",
		"-r", fmt.Sprintf("%d", dpi),
		"-singlefile",
		inPath, outPrefix,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, stderr.String())
	}

	out, err := os.ReadFile(outPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("read rendered page: %w", err)
	}
	return out, nil
}
