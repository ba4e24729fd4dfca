// Package types provides the value types shared by the compositing engine:
// sizes, sides, rectangles, points, colours and the small enums that
// parameterise a render.
package types

import (
	"fmt"
	"math"
)

// MaxDimension is the largest width or height the engine will allocate.
// Resolved sizes beyond it saturate instead of failing.
const MaxDimension = 1 << 15

// MaxPixels caps the area of a resolved canvas: 64 Mpx, 256 MiB as RGBA8.
const MaxPixels = 1 << 26

// Size is a width/height pair in pixels. A zero dimension means unset.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Sz is shorthand for Size{Width: w, Height: h}.
func Sz(w, h int) Size {
	return Size{Width: w, Height: h}
}

// IsEmpty reports whether either dimension is zero or negative.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Area returns the pixel count, 0 for empty sizes.
func (s Size) Area() int {
	if s.IsEmpty() {
		return 0
	}
	return s.Width * s.Height
}

// AspectRatio returns width/height, or 0 when the height is unset.
func (s Size) AspectRatio() float64 {
	if s.Height <= 0 {
		return 0
	}
	return float64(s.Width) / float64(s.Height)
}

// Rotate returns the size after a quarter-turn rotation.
func (s Size) Rotate(r Rotation) Size {
	if r.SwapsAxes() {
		return Size{Width: s.Height, Height: s.Width}
	}
	return s
}

// ScaleBy multiplies both dimensions by f, rounding to the nearest integer
// and never going below one pixel.
func (s Size) ScaleBy(f float64) Size {
	return Size{
		Width:  RoundDim(float64(s.Width) * f),
		Height: RoundDim(float64(s.Height) * f),
	}
}

// Contain returns the largest size with the aspect ratio of s that fits
// inside bounds.
func (s Size) Contain(bounds Size) Size {
	if s.IsEmpty() || bounds.IsEmpty() {
		return Size{}
	}
	f := math.Min(float64(bounds.Width)/float64(s.Width), float64(bounds.Height)/float64(s.Height))
	out := s.ScaleBy(f)
	out.Width = min(out.Width, bounds.Width)
	out.Height = min(out.Height, bounds.Height)
	return out
}

// Cover returns the smallest size with the aspect ratio of s that covers bounds.
func (s Size) Cover(bounds Size) Size {
	if s.IsEmpty() || bounds.IsEmpty() {
		return Size{}
	}
	f := math.Max(float64(bounds.Width)/float64(s.Width), float64(bounds.Height)/float64(s.Height))
	out := s.ScaleBy(f)
	out.Width = max(out.Width, bounds.Width)
	out.Height = max(out.Height, bounds.Height)
	return out
}

// Clamp saturates both dimensions into [lo, hi].
func (s Size) Clamp(lo, hi Size) Size {
	return Size{
		Width:  min(max(s.Width, lo.Width), hi.Width),
		Height: min(max(s.Height, lo.Height), hi.Height),
	}
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// RoundDim rounds a floating point dimension to the nearest integer in
// [1, MaxDimension]. NaN maps to 1.
func RoundDim(v float64) int {
	if !(v >= 1) {
		return 1
	}
	if v >= MaxDimension {
		return MaxDimension
	}
	return int(math.Round(v))
}

// roundSat rounds v to the nearest integer, saturating at ±MaxDimension.
// NaN maps to 0.
func roundSat(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= MaxDimension:
		return MaxDimension
	case v <= -MaxDimension:
		return -MaxDimension
	}
	return int(math.Round(v))
}
