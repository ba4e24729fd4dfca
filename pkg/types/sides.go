// sides.go — Sides with an explicit unit tag, and their resolved pixel form.
package types

import (
	"fmt"
)

// Unit selects how the values of a Sides are interpreted.
type Unit uint8

const (
	// Percent values are percentages of the dimension they apply to:
	// top/bottom of the height, left/right of the width.
	Percent Unit = iota
	// Pixels values are absolute pixel counts. Negative values are allowed.
	Pixels
)

func (u Unit) String() string {
	switch u {
	case Percent:
		return "percent"
	case Pixels:
		return "pixels"
	default:
		return fmt.Sprintf("Unit(%d)", uint8(u))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) {
	switch u {
	case Percent, Pixels:
		return []byte(u.String()), nil
	}
	return nil, &EnumError{Type: "unit", Value: u.String()}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(text []byte) error {
	v, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// ParseUnit parses "percent"/"%" or "pixels"/"px", ignoring case.
func ParseUnit(s string) (Unit, error) {
	switch fold(s) {
	case "percent", "%", "pct":
		return Percent, nil
	case "pixels", "pixel", "px":
		return Pixels, nil
	}
	return 0, &EnumError{Type: "unit", Value: s}
}

// Sides holds one value per edge. Values are not clamped: out-of-range
// percentages and negative pixel counts are carried as given and saturate
// when resolved against a concrete size.
type Sides struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Unit   Unit    `json:"unit,omitempty"`
}

// Uniform returns percentage sides with v on every edge.
func Uniform(v float64) Sides {
	return Sides{Top: v, Right: v, Bottom: v, Left: v, Unit: Percent}
}

// UniformPixels returns pixel sides with v on every edge.
func UniformPixels(v int) Sides {
	f := float64(v)
	return Sides{Top: f, Right: f, Bottom: f, Left: f, Unit: Pixels}
}

// IsZero reports whether every edge is zero, whatever the unit.
func (s Sides) IsZero() bool {
	return s.Top == 0 && s.Right == 0 && s.Bottom == 0 && s.Left == 0
}

// Resolve converts s to absolute pixels relative to size.
func (s Sides) Resolve(size Size) Insets {
	if s.Unit == Pixels {
		return Insets{
			Top:    roundSat(s.Top),
			Right:  roundSat(s.Right),
			Bottom: roundSat(s.Bottom),
			Left:   roundSat(s.Left),
		}
	}
	w, h := float64(size.Width), float64(size.Height)
	return Insets{
		Top:    roundSat(s.Top / 100 * h),
		Right:  roundSat(s.Right / 100 * w),
		Bottom: roundSat(s.Bottom / 100 * h),
		Left:   roundSat(s.Left / 100 * w),
	}
}

func (s Sides) String() string {
	suffix := "%"
	if s.Unit == Pixels {
		suffix = "px"
	}
	return fmt.Sprintf("{top:%g%s right:%g%s bottom:%g%s left:%g%s}",
		s.Top, suffix, s.Right, suffix, s.Bottom, suffix, s.Left, suffix)
}

// Insets are sides resolved to whole pixels.
type Insets struct {
	Top, Right, Bottom, Left int
}

// Width returns left + right.
func (in Insets) Width() int { return in.Left + in.Right }

// Height returns top + bottom.
func (in Insets) Height() int { return in.Top + in.Bottom }

// Add sums two insets edge by edge.
func (in Insets) Add(o Insets) Insets {
	return Insets{
		Top:    in.Top + o.Top,
		Right:  in.Right + o.Right,
		Bottom: in.Bottom + o.Bottom,
		Left:   in.Left + o.Left,
	}
}

// Clamp saturates every edge into [0, dimension] of size.
func (in Insets) Clamp(size Size) Insets {
	c := func(v, hi int) int { return min(max(v, 0), max(hi, 0)) }
	return Insets{
		Top:    c(in.Top, size.Height),
		Right:  c(in.Right, size.Width),
		Bottom: c(in.Bottom, size.Height),
		Left:   c(in.Left, size.Width),
	}
}
