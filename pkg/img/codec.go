// codec.go — decoding and encoding at the host boundary.
package img

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Format is an output encoding.
type Format = imaging.Format

// Supported output formats.
const (
	PNG  = imaging.PNG
	JPEG = imaging.JPEG
	GIF  = imaging.GIF
	TIFF = imaging.TIFF
	BMP  = imaging.BMP
)

// Open decodes an image file, applying its EXIF orientation.
func Open(path string) (*Image, error) {
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", filepath.Base(path), err)
	}
	return FromImage(src), nil
}

// Decode reads PNG, JPEG, GIF, BMP, TIFF or WebP data.
func Decode(r io.Reader) (*Image, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return FromImage(src), nil
}

// FormatFor maps a file name or bare extension ("png", ".jpg") to a Format.
func FormatFor(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = "." + strings.TrimPrefix(name, ".")
	}
	f, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return 0, fmt.Errorf("output format %q: %w", name, err)
	}
	return f, nil
}

// Encode writes m in format f. quality applies to JPEG only; 0 keeps the
// library default.
func Encode(w io.Writer, m *Image, f Format, quality int) error {
	var opts []imaging.EncodeOption
	if quality > 0 {
		opts = append(opts, imaging.JPEGQuality(quality))
	}
	if err := imaging.Encode(w, m.NRGBA(), f, opts...); err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}
