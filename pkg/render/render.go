// Package render composites a photo, a coloured frame and a border overlay
// into a single image.
//
// Layers, bottom to top:
//  1. background fill (background_color, transparent by default)
//  2. frame rectangle (frame_color) covering the canvas less the margin
//  3. the photo, fitted and centred in the frame's interior
//  4. the border, stretched over the whole canvas
//
// Render is a pure function of its inputs and is safe to call from many
// goroutines at once.
package render

import (
	"time"

	"github.com/xob0t/FilmBorders/internal/logging"
	"github.com/xob0t/FilmBorders/pkg/border"
	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/options"
	"github.com/xob0t/FilmBorders/pkg/types"
)

// Renderer holds the tunables that are not part of Options.
type Renderer struct {
	filter img.Filter
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFilter selects the resampling filter. The default is img.Bilinear.
func WithFilter(f img.Filter) Option {
	return func(r *Renderer) { r.filter = f }
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{filter: img.Bilinear}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRenderer = New()

// Render composites source with border b according to o using the default
// renderer.
func Render(source *img.Image, b border.Source, o options.Options) (*img.Image, error) {
	return defaultRenderer.Render(source, b, o)
}

// Render composites source with border b according to o. Neither input is
// modified; the result is a freshly allocated image.
func (r *Renderer) Render(source *img.Image, b border.Source, o options.Options) (*img.Image, error) {
	log := logging.Logger()
	start := time.Now()
	mark := func(s Stage, t0 time.Time) {
		log.Debug("render stage", "stage", string(s), "elapsed", time.Since(t0))
	}

	if source.IsEmpty() {
		var size types.Size
		if source != nil {
			size = source.Size()
		}
		return nil, stageErr(StageCrop, &GeometryError{What: "empty source image", Size: size})
	}

	// 1. crop
	t0 := time.Now()
	photo := source
	if crop := o.CropSides(); !crop.IsZero() {
		photo = source.CropSides(crop)
		if photo.IsEmpty() {
			return nil, stageErr(StageCrop, &GeometryError{What: "crop removes the whole image", Size: source.Size()})
		}
	}
	mark(StageCrop, t0)

	// 2. rotate image
	t0 = time.Now()
	photo = photo.Rotate(o.ImageRotation)
	mark(StageRotate, t0)

	// 3. resolve and rotate the border
	t0 = time.Now()
	overlay, err := b.Resolve()
	if err != nil {
		return nil, stageErr(StageBorder, err)
	}
	var borderSize types.Size
	if !overlay.IsEmpty() {
		overlay = overlay.Rotate(o.BorderRotation)
		borderSize = overlay.Size()
	}
	mark(StageBorder, t0)

	// 4. canvas size and layout
	t0 = time.Now()
	canvas, err := ResolveOutputSize(photo.Size(), borderSize, o)
	if err != nil {
		return nil, stageErr(StageSize, err)
	}
	layout, err := ComputeLayout(canvas, o)
	if err != nil {
		return nil, stageErr(StageLayout, err)
	}
	mark(StageSize, t0)

	// 5. scale content
	t0 = time.Now()
	place, err := PlacePhoto(photo.Size(), layout, o.ScaleFactor)
	if err != nil {
		return nil, stageErr(StageScale, err)
	}
	photo = photo.Crop(place.Region).Resize(place.Visible, r.filter)
	mark(StageScale, t0)

	// 6. compose
	t0 = time.Now()
	out := img.Fill(canvas, o.Background())
	out = out.FillRect(layout.Frame, o.FrameColor)
	out = out.Paste(photo, place.At)
	mark(StageCompose, t0)

	// 7. overlay border
	if !overlay.IsEmpty() {
		t0 = time.Now()
		out = out.Paste(overlay.Resize(canvas, r.filter), types.Origin())
		mark(StageOverlay, t0)
	}

	// 8. preview is a caller-side hint; nothing to do here.
	log.Debug("render done",
		"canvas", canvas.String(),
		"border", b.String(),
		"preview", o.Preview,
		"elapsed", time.Since(start))
	return out, nil
}
