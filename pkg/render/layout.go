// layout.go — canvas sizing and the frame/interior/photo rectangles.
package render

import (
	"math"

	"github.com/xob0t/FilmBorders/pkg/options"
	"github.com/xob0t/FilmBorders/pkg/types"
)

// ResolveOutputSize picks the canvas size for a source of size src (after
// crop and rotation) and a border of size bdr (after rotation; empty when
// there is no border).
//
// Precedence: an output_size with both axes wins; otherwise the aspect ratio
// comes from the image or the border according to mode, and a single set
// axis derives the other, while no set axis matches the reference size.
// output_size_bounds is applied last and only ever shrinks, uniformly.
func ResolveOutputSize(src, bdr types.Size, o options.Options) (types.Size, error) {
	if src.IsEmpty() {
		return types.Size{}, &GeometryError{What: "empty source image", Size: src}
	}
	req := o.OutputSize.Normalize()

	var target types.Size
	if exact, ok := req.Size(); ok {
		target = exact
	} else {
		ref := src
		if o.Mode == types.FitBorder && !bdr.IsEmpty() {
			ref = bdr
		}
		aspect := ref.AspectRatio()
		switch {
		case req.HasWidth():
			target = types.Sz(req.Width, types.RoundDim(float64(req.Width)/aspect))
		case req.HasHeight():
			target = types.Sz(types.RoundDim(float64(req.Height)*aspect), req.Height)
		default:
			target = ref
		}
	}

	target = shrinkToFit(target, o.OutputSizeBounds.Normalize())
	target = shrinkToFit(target, types.Bounded(types.MaxDimension, types.MaxDimension))
	target = shrinkToArea(target, types.MaxPixels)
	if target.IsEmpty() {
		return types.Size{}, &GeometryError{What: "empty output size", Size: target}
	}
	return target, nil
}

// shrinkToFit uniformly downscales s until every set axis of b holds it.
func shrinkToFit(s types.Size, b types.BoundedSize) types.Size {
	if b.Fits(s) {
		return s
	}
	f := math.Inf(1)
	if b.HasWidth() {
		f = math.Min(f, float64(b.Width)/float64(s.Width))
	}
	if b.HasHeight() {
		f = math.Min(f, float64(b.Height)/float64(s.Height))
	}
	out := s.ScaleBy(f)
	if b.HasWidth() {
		out.Width = min(out.Width, b.Width)
	}
	if b.HasHeight() {
		out.Height = min(out.Height, b.Height)
	}
	return out
}

// shrinkToArea uniformly downscales s until it holds at most n pixels.
func shrinkToArea(s types.Size, n int) types.Size {
	if s.IsEmpty() || s.Width*s.Height <= n {
		return s
	}
	f := math.Sqrt(float64(n) / (float64(s.Width) * float64(s.Height)))
	return types.Sz(
		max(int(float64(s.Width)*f), 1),
		max(int(float64(s.Height)*f), 1),
	)
}

// Layout is the placement of every layer on the canvas.
type Layout struct {
	Canvas types.Size
	// Frame is the canvas less the margin; it is filled with frame_color.
	Frame types.Rect
	// Interior is the frame less frame_width; the photo is centred in it.
	Interior types.Rect
}

// ComputeLayout resolves margin and frame width against canvas.
//
// The margin is a fraction of each canvas axis, clamped to [0, 0.5]. Frame
// widths are resolved against the canvas and clamped to the frame.
func ComputeLayout(canvas types.Size, o options.Options) (Layout, error) {
	if canvas.IsEmpty() {
		return Layout{}, &GeometryError{What: "empty canvas", Size: canvas}
	}
	m := o.Margin
	if !(m > 0) {
		m = 0
	}
	mx := min(roundHalf(m*float64(canvas.Width)), canvas.Width/2)
	my := min(roundHalf(m*float64(canvas.Height)), canvas.Height/2)
	frame := types.RectFromSize(canvas).Inset(types.Insets{Top: my, Right: mx, Bottom: my, Left: mx})

	fw := o.FrameWidth.Resolve(canvas).Clamp(frame.Size())
	interior := frame.Inset(fw)
	if interior.IsEmpty() {
		return Layout{}, &GeometryError{What: "margin and frame leave no interior", Size: interior.Size()}
	}
	return Layout{Canvas: canvas, Frame: frame, Interior: interior}, nil
}

// PhotoPlacement sizes a photo of size src for the interior: fitted inside
// it, then multiplied by scale. Visible is the part that lands on the canvas
// (the centre of the scaled photo when it overflows the interior), Region is
// the matching rectangle of the source, and At is where Visible is pasted.
type PhotoPlacement struct {
	Scaled  types.Size
	Visible types.Size
	Region  types.Rect
	At      types.Point
}

// PlacePhoto computes the placement of a src-sized photo in l. The scaled
// size saturates: a zero, negative or NaN scale yields a 1px photo and an
// infinite one fills the interior.
func PlacePhoto(src types.Size, l Layout, scale float64) (PhotoPlacement, error) {
	in := l.Interior.Size()
	fit := src.Contain(in)
	if fit.IsEmpty() {
		return PhotoPlacement{}, &GeometryError{What: "photo does not fit the interior", Size: in}
	}
	scaled := fit.ScaleBy(scale)
	vis := types.Sz(min(scaled.Width, in.Width), min(scaled.Height, in.Height))

	// the source region that maps onto the visible part, centred
	rw := min(max(roundHalf(float64(src.Width)*float64(vis.Width)/float64(scaled.Width)), 1), src.Width)
	rh := min(max(roundHalf(float64(src.Height)*float64(vis.Height)/float64(scaled.Height)), 1), src.Height)
	region := types.CenterRect(types.RectFromSize(src), types.Sz(rw, rh))

	return PhotoPlacement{
		Scaled:  scaled,
		Visible: vis,
		Region:  region,
		At:      types.CenterRect(l.Interior, vis).TopLeft(),
	}, nil
}

func roundHalf(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return int(math.Min(math.Round(v), types.MaxDimension))
}
