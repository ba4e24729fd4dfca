// ops.go — geometric transforms and compositing.
package img

import (
	"github.com/disintegration/imaging"

	"github.com/xob0t/FilmBorders/pkg/types"
)

// Filter selects the resampling kernel used by Resize.
type Filter uint8

const (
	// Bilinear is the default filter for photographic content.
	Bilinear Filter = iota
	// Nearest keeps hard pixel edges.
	Nearest
)

func (f Filter) resample() imaging.ResampleFilter {
	if f == Nearest {
		return imaging.NearestNeighbor
	}
	return imaging.Linear
}

func (f Filter) String() string {
	if f == Nearest {
		return "nearest"
	}
	return "bilinear"
}

// Axis selects the direction of a FadeOut ramp.
type Axis uint8

const (
	// Horizontal ramps along x; every column is a constant alpha.
	Horizontal Axis = iota
	// Vertical ramps along y; every row is a constant alpha.
	Vertical
)

// Crop returns the pixels of m inside r. r is intersected with the image
// bounds first, so an out-of-range rectangle yields a smaller (possibly
// empty) image rather than an error.
func (m *Image) Crop(r types.Rect) *Image {
	r = r.Intersect(types.RectFromSize(m.Size()))
	if r.IsEmpty() {
		return New(types.Size{})
	}
	if r == types.RectFromSize(m.Size()) {
		return m.Clone()
	}
	return fromNRGBA(imaging.Crop(m.NRGBA(), r.Image()), false)
}

// CropSides resolves s against the current size and crops that much from
// each edge. Negative sides would pad; they are clamped to the image bounds.
func (m *Image) CropSides(s types.Sides) *Image {
	if s.IsZero() {
		return m.Clone()
	}
	in := s.Resolve(m.Size())
	return m.Crop(types.RectFromSize(m.Size()).Inset(in))
}

// Rotate turns the image clockwise by r. Quarter turns only permute pixels,
// so four Rotate90 calls reproduce the original bytes.
func (m *Image) Rotate(r types.Rotation) *Image {
	if m.IsEmpty() {
		return New(m.Size().Rotate(r))
	}
	switch r.Quarters() {
	case 1:
		return fromNRGBA(imaging.Rotate270(m.NRGBA()), false)
	case 2:
		return fromNRGBA(imaging.Rotate180(m.NRGBA()), false)
	case 3:
		return fromNRGBA(imaging.Rotate90(m.NRGBA()), false)
	}
	return m.Clone()
}

// Resize resamples m to exactly size. Aspect ratio is not preserved; callers
// compute the target themselves.
func (m *Image) Resize(size types.Size, f Filter) *Image {
	if size.IsEmpty() {
		return New(types.Size{})
	}
	if size == m.Size() {
		return m.Clone()
	}
	if m.IsEmpty() {
		return New(size)
	}
	return fromNRGBA(imaging.Resize(m.NRGBA(), size.Width, size.Height, f.resample()), false)
}

// Scale resizes by factor with the bilinear filter. Each dimension is
// rounded to the nearest integer and kept at one pixel or more.
func (m *Image) Scale(factor float64) *Image {
	if m.IsEmpty() {
		return m.Clone()
	}
	return m.Resize(m.Size().ScaleBy(factor), Bilinear)
}

// Paste composites src over m with its top-left corner at p, using
// straight-alpha "over". Parts of src outside m are clipped.
func (m *Image) Paste(src *Image, p types.Point) *Image {
	if src.IsEmpty() || m.IsEmpty() {
		return m.Clone()
	}
	return fromNRGBA(imaging.Overlay(m.NRGBA(), src.NRGBA(), p.Image(), 1), false)
}

// FillRect blends a solid rectangle of colour c over m. The rectangle is
// clipped to the image.
func (m *Image) FillRect(r types.Rect, c types.Color) *Image {
	r = r.Intersect(types.RectFromSize(m.Size()))
	if r.IsEmpty() || c.A == 0 {
		return m.Clone()
	}
	return m.Paste(Fill(r.Size(), c), r.TopLeft())
}

// FadeOut lowers alpha along a linear ramp between the start and end
// positions on axis: fully kept at start, fully transparent at end. Existing
// alpha is never raised. Positions outside the image are clipped.
func (m *Image) FadeOut(start, end int, axis Axis) *Image {
	out := m.Clone()
	limit := m.width
	if axis == Vertical {
		limit = m.height
	}
	lo, hi := min(start, end), max(start, end)
	span := float64(hi - lo)
	for i := max(lo, 0); i <= hi && i < limit; i++ {
		var frac float64
		if span > 0 {
			frac = float64(i-lo) / span
		}
		if start < end {
			frac = 1 - frac
		}
		alpha := uint8(255 * frac)
		out.rampLine(i, axis, alpha)
	}
	return out
}

func (m *Image) rampLine(i int, axis Axis, alpha uint8) {
	if axis == Horizontal {
		for y := 0; y < m.height; y++ {
			a := &m.data[(y*m.width+i)*4+3]
			*a = min(*a, alpha)
		}
		return
	}
	row := m.data[i*m.width*4 : (i+1)*m.width*4]
	for x := 3; x < len(row); x += 4 {
		row[x] = min(row[x], alpha)
	}
}
