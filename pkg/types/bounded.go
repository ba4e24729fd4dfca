package types

import "fmt"

// BoundedSize is a size whose axes are individually optional. A zero (or
// negative) axis means "no constraint on this axis".
type BoundedSize struct {
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

// Bounded returns a BoundedSize; pass 0 to leave an axis unconstrained.
func Bounded(w, h int) BoundedSize {
	return BoundedSize{Width: w, Height: h}.Normalize()
}

// Normalize maps negative axes to unset.
func (b BoundedSize) Normalize() BoundedSize {
	return BoundedSize{Width: max(b.Width, 0), Height: max(b.Height, 0)}
}

// HasWidth reports whether the width axis is constrained.
func (b BoundedSize) HasWidth() bool { return b.Width > 0 }

// HasHeight reports whether the height axis is constrained.
func (b BoundedSize) HasHeight() bool { return b.Height > 0 }

// IsExact reports whether both axes are set.
func (b BoundedSize) IsExact() bool { return b.HasWidth() && b.HasHeight() }

// IsUnbounded reports whether neither axis is set.
func (b BoundedSize) IsUnbounded() bool { return !b.HasWidth() && !b.HasHeight() }

// Size returns the exact size when both axes are set.
func (b BoundedSize) Size() (Size, bool) {
	if !b.IsExact() {
		return Size{}, false
	}
	return Size{Width: b.Width, Height: b.Height}, true
}

// ClampMin returns, per axis, the smaller of the set values. An axis unset
// in b stays unset.
func (b BoundedSize) ClampMin(o BoundedSize) BoundedSize {
	out := b.Normalize()
	if out.HasWidth() && o.HasWidth() {
		out.Width = min(out.Width, o.Width)
	}
	if out.HasHeight() && o.HasHeight() {
		out.Height = min(out.Height, o.Height)
	}
	return out
}

// Fits reports whether s lies within every set axis.
func (b BoundedSize) Fits(s Size) bool {
	if b.HasWidth() && s.Width > b.Width {
		return false
	}
	if b.HasHeight() && s.Height > b.Height {
		return false
	}
	return true
}

func (b BoundedSize) String() string {
	axis := func(v int) string {
		if v > 0 {
			return fmt.Sprint(v)
		}
		return "*"
	}
	return axis(b.Width) + "x" + axis(b.Height)
}
