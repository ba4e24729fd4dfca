// Package img holds the engine's pixel buffer: an owned, straight-alpha RGBA8
// image with crop, quarter-turn rotation, resampling and compositing
// operations. Every operation returns a new buffer and leaves its receiver
// untouched, so an *Image can be shared read-only between goroutines.
package img

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/xob0t/FilmBorders/pkg/types"
)

// ErrBufferSize is returned when a raw buffer does not match its dimensions.
var ErrBufferSize = errors.New("img: buffer length does not match dimensions")

// Image is a width×height RGBA8 buffer, row-major, four bytes per pixel,
// colour channels not premultiplied.
type Image struct {
	width, height int
	data          []uint8
}

// New returns a transparent image. Negative dimensions yield an empty image.
func New(size types.Size) *Image {
	w, h := max(size.Width, 0), max(size.Height, 0)
	return &Image{width: w, height: h, data: make([]uint8, w*h*4)}
}

// FromRGBA8 wraps a raw buffer. The buffer is copied.
func FromRGBA8(width, height int, data []uint8) (*Image, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative size %dx%d", ErrBufferSize, width, height)
	}
	if len(data) != width*height*4 {
		return nil, fmt.Errorf("%w: %dx%d needs %d bytes, got %d",
			ErrBufferSize, width, height, width*height*4, len(data))
	}
	buf := make([]uint8, len(data))
	copy(buf, data)
	return &Image{width: width, height: height, data: buf}, nil
}

// FromImage converts any image.Image, normalising its origin to (0, 0).
func FromImage(src image.Image) *Image {
	if n, ok := src.(*image.NRGBA); ok {
		return fromNRGBA(n, true)
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return fromNRGBA(dst, false)
}

// fromNRGBA adopts n's pixels when they are tightly packed and the caller
// owns them; otherwise it copies row by row.
func fromNRGBA(n *image.NRGBA, shared bool) *Image {
	b := n.Bounds()
	w, h := b.Dx(), b.Dy()
	if !shared && b.Min == (image.Point{}) && n.Stride == w*4 && len(n.Pix) == w*h*4 {
		return &Image{width: w, height: h, data: n.Pix}
	}
	out := &Image{width: w, height: h, data: make([]uint8, w*h*4)}
	for y := 0; y < h; y++ {
		i := n.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out.data[y*w*4:(y+1)*w*4], n.Pix[i:i+w*4])
	}
	return out
}

// Fill returns a canvas of the given size painted with c.
func Fill(size types.Size, c types.Color) *Image {
	out := New(size)
	if c == (types.Color{}) {
		return out
	}
	draw.Draw(out.NRGBA(), out.bounds(), image.NewUniform(c.NRGBA()), image.Point{}, draw.Src)
	return out
}

// ── Accessors ──

func (m *Image) Width() int  { return m.width }
func (m *Image) Height() int { return m.height }

// Size returns the image dimensions.
func (m *Image) Size() types.Size { return types.Sz(m.width, m.height) }

// IsEmpty reports whether the image has no pixels.
func (m *Image) IsEmpty() bool { return m == nil || m.width == 0 || m.height == 0 }

// Data returns the underlying buffer. Callers must not modify it.
func (m *Image) Data() []uint8 { return m.data }

// Pix returns the pixel at (x, y); out-of-bounds reads return Clear.
func (m *Image) Pix(x, y int) types.Color {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return types.Clear()
	}
	i := (y*m.width + x) * 4
	return types.RGBA(m.data[i], m.data[i+1], m.data[i+2], m.data[i+3])
}

// SetPix writes one pixel in place and ignores out-of-bounds writes.
// It is meant for building images, not for images already handed out.
func (m *Image) SetPix(x, y int, c types.Color) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	i := (y*m.width + x) * 4
	m.data[i], m.data[i+1], m.data[i+2], m.data[i+3] = c.R, c.G, c.B, c.A
}

// NRGBA returns an *image.NRGBA that aliases the buffer.
func (m *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{Pix: m.data, Stride: m.width * 4, Rect: m.bounds()}
}

// ColorModel, Bounds and At let an *Image be passed wherever an image.Image
// is expected.
func (m *Image) ColorModel() color.Model { return color.NRGBAModel }
func (m *Image) Bounds() image.Rectangle { return m.bounds() }
func (m *Image) At(x, y int) color.Color { return m.Pix(x, y).NRGBA() }

func (m *Image) bounds() image.Rectangle { return image.Rect(0, 0, m.width, m.height) }

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	out := &Image{width: m.width, height: m.height, data: make([]uint8, len(m.data))}
	copy(out.data, m.data)
	return out
}

// Equal reports whether both images have the same size and identical bytes.
func (m *Image) Equal(o *Image) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.width != o.width || m.height != o.height {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

func (m *Image) String() string {
	return fmt.Sprintf("img.Image(%dx%d)", m.width, m.height)
}
