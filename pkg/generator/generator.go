// Package generator writes rendered images to files and streams.
//
// All output follows one pipeline: resolve an *img.Image first (a render
// result, or a solid colour card), then encode it in the format implied by
// the file extension.
package generator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/types"
)

// Config holds parameters for output generation.
type Config struct {
	Image   *img.Image // Rendered image; overrides Width/Height/Color
	Width   int        // Solid card width (default: 1280)
	Height  int        // Solid card height (default: 720)
	Color   string     // Hex "#rrggbb[aa]", a preset name, or "random"
	Quality int        // JPEG quality 1-100; 0 keeps the encoder default
}

// Generate creates an output file. The format is inferred from the file
// extension: .png, .jpg/.jpeg, .gif, .tif/.tiff or .bmp. The file is written
// next to its destination and renamed into place, so a failed encode never
// leaves a truncated image behind.
func Generate(output string, cfg Config) error {
	m, err := resolveImage(cfg)
	if err != nil {
		return err
	}
	format, err := img.FormatFor(output)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(output), ".filmborders-*"+filepath.Ext(output))
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer os.Remove(tmp.Name())

	if err := img.Encode(tmp, m, format, cfg.Quality); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return fmt.Errorf("rename into %s: %w", output, err)
	}
	return nil
}

// GenerateToWriter writes the image to w. The format is named by ext
// (".png", "jpg", ...). This is useful for in-memory generation (HTTP, WASM).
func GenerateToWriter(w io.Writer, ext string, cfg Config) error {
	m, err := resolveImage(cfg)
	if err != nil {
		return err
	}
	format, err := img.FormatFor(ext)
	if err != nil {
		return err
	}
	return img.Encode(w, m, format, cfg.Quality)
}

// resolveImage returns the image from config, creating a solid-colour card
// if none is provided.
func resolveImage(cfg Config) (*img.Image, error) {
	if cfg.Image != nil {
		if cfg.Image.IsEmpty() {
			return nil, fmt.Errorf("generate: empty image %v", cfg.Image.Size())
		}
		return cfg.Image, nil
	}

	w := cfg.Width
	if w <= 0 {
		w = 1280
	}
	h := cfg.Height
	if h <= 0 {
		h = 720
	}

	c, err := ParseColor(cfg.Color)
	if err != nil {
		return nil, err
	}
	return NewSolidImage(types.Sz(w, h), c), nil
}
