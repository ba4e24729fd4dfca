// Package options defines the render configuration and its JSON wire format.
//
// An Options value carries no identity beyond its fields: two values that
// compare Equal produce byte-identical renders for the same inputs.
package options

import (
	"github.com/xob0t/FilmBorders/pkg/types"
)

// Options is the full configuration of one render.
type Options struct {
	// OutputSize requests an explicit canvas size. Either axis may be unset.
	OutputSize types.BoundedSize `json:"output_size"`
	// OutputSizeBounds caps the resolved canvas. It only ever downscales.
	OutputSizeBounds types.BoundedSize `json:"output_size_bounds"`
	// ScaleFactor multiplies the photo after it is fitted into the interior.
	ScaleFactor float64 `json:"scale_factor"`
	// Margin is the background gap around the frame, as a fraction of the
	// canvas on each axis.
	Margin float64       `json:"margin"`
	Mode   types.FitMode `json:"mode"`
	// Crop is applied to the raw source. Nil and all-zero are equivalent.
	Crop           *types.Sides   `json:"crop,omitempty"`
	FrameWidth     types.Sides    `json:"frame_width"`
	ImageRotation  types.Rotation `json:"image_rotation"`
	BorderRotation types.Rotation `json:"border_rotation"`
	FrameColor     types.Color    `json:"frame_color"`
	// BackgroundColor fills the canvas; nil means transparent.
	BackgroundColor *types.Color `json:"background_color,omitempty"`
	// Preview marks a low-resolution request. The engine does not act on it.
	Preview bool `json:"preview"`
}

// Default returns the options used when nothing is configured: scale 1,
// no margin, image-driven sizing, black frame.
func Default() Options {
	return Options{
		ScaleFactor: 1,
		Mode:        types.FitImage,
		FrameColor:  types.Black(),
	}
}

// Background returns the canvas fill, transparent when unset.
func (o Options) Background() types.Color {
	if o.BackgroundColor == nil {
		return types.Clear()
	}
	return *o.BackgroundColor
}

// CropSides returns the crop, the zero Sides when unset.
func (o Options) CropSides() types.Sides {
	if o.Crop == nil {
		return types.Sides{}
	}
	return *o.Crop
}

// Equal reports whether a and b describe the same render. A nil crop equals
// an all-zero crop.
func (o Options) Equal(b Options) bool {
	if !cropEqual(o.Crop, b.Crop) {
		return false
	}
	if (o.BackgroundColor == nil) != (b.BackgroundColor == nil) {
		return false
	}
	if o.BackgroundColor != nil && *o.BackgroundColor != *b.BackgroundColor {
		return false
	}
	o.Crop, b.Crop = nil, nil
	o.BackgroundColor, b.BackgroundColor = nil, nil
	return o == b
}

func cropEqual(a, b *types.Sides) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil:
		return b.IsZero()
	case b == nil:
		return a.IsZero()
	}
	if a.IsZero() && b.IsZero() {
		return true
	}
	return *a == *b
}

// Field describes one key of the wire format.
type Field struct {
	Key      string
	Required bool
	Doc      string
}

// Fields lists the wire keys in serialisation order.
func Fields() []Field {
	return []Field{
		{"output_size", true, `{"width"?: int, "height"?: int}; both set forces the canvas size`},
		{"output_size_bounds", true, `{"width"?: int, "height"?: int}; soft ceiling, downscale only`},
		{"scale_factor", true, "float > 0; photo scale inside the frame"},
		{"margin", true, "float; fraction of the canvas left as background on each side"},
		{"mode", true, `"Image" | "Border"; aspect source when output_size is partial`},
		{"crop", false, `sides {"top","right","bottom","left","unit"?: "percent"|"pixels"}`},
		{"frame_width", true, "sides, resolved against the canvas"},
		{"image_rotation", false, `"Rotate0" | "Rotate90" | "Rotate180" | "Rotate270" (or degrees)`},
		{"border_rotation", false, "same as image_rotation"},
		{"frame_color", true, `"#rrggbb" | "#rrggbbaa" | {"rgba":[r,g,b,a]}`},
		{"background_color", false, "colour; omitted means transparent"},
		{"preview", true, "bool; caller-side resolution hint"},
	}
}
