package types

import (
	"fmt"
	"image"
)

// Point is an absolute pixel coordinate. Negative values are valid while
// composing, e.g. when a larger layer is centred over a smaller canvas.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Origin returns the zero point.
func Origin() Point { return Point{} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Image converts p to an image.Point.
func (p Point) Image() image.Point { return image.Pt(p.X, p.Y) }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Rect is an axis-aligned rectangle. Left and top are inclusive, right and
// bottom exclusive.
type Rect struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Bottom int `json:"bottom"`
	Right  int `json:"right"`
}

// RectFromSize returns the rectangle of size s anchored at the origin.
func RectFromSize(s Size) Rect {
	return Rect{Right: s.Width, Bottom: s.Height}.Canon()
}

// RectAt returns the rectangle of size s with its top-left corner at p.
func RectAt(p Point, s Size) Rect {
	return Rect{Top: p.Y, Left: p.X, Bottom: p.Y + s.Height, Right: p.X + s.Width}.Canon()
}

// RectFromPoints returns the rectangle spanned by two corners in any order.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		Top:    min(a.Y, b.Y),
		Left:   min(a.X, b.X),
		Bottom: max(a.Y, b.Y),
		Right:  max(a.X, b.X),
	}
}

// RectFromImage converts an image.Rectangle.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{Top: r.Min.Y, Left: r.Min.X, Bottom: r.Max.Y, Right: r.Max.X}.Canon()
}

// CenterRect returns a rectangle of size s centred inside container.
// The result may extend past container when s is larger.
func CenterRect(container Rect, s Size) Rect {
	left := container.Left + (container.Width()-s.Width)/2
	top := container.Top + (container.Height()-s.Height)/2
	return RectAt(Point{X: left, Y: top}, s)
}

// Canon collapses degenerate rectangles to empty ones at their top-left corner.
func (r Rect) Canon() Rect {
	if r.Right < r.Left {
		r.Right = r.Left
	}
	if r.Bottom < r.Top {
		r.Bottom = r.Top
	}
	return r
}

// Width returns the horizontal extent, 0 for degenerate rectangles.
func (r Rect) Width() int { return max(r.Right-r.Left, 0) }

// Height returns the vertical extent, 0 for degenerate rectangles.
func (r Rect) Height() int { return max(r.Bottom-r.Top, 0) }

// Size returns the extent of r.
func (r Rect) Size() Size { return Size{Width: r.Width(), Height: r.Height()} }

// IsEmpty reports whether r covers no pixels.
func (r Rect) IsEmpty() bool { return r.Width() == 0 || r.Height() == 0 }

// TopLeft returns the inclusive top-left corner.
func (r Rect) TopLeft() Point { return Point{X: r.Left, Y: r.Top} }

// BottomRight returns the exclusive bottom-right corner.
func (r Rect) BottomRight() Point { return Point{X: r.Right, Y: r.Bottom} }

// Center returns the centre point, rounded towards the top-left.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width()/2, Y: r.Top + r.Height()/2}
}

// Intersect returns the overlap of r and o, empty if they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		Top:    max(r.Top, o.Top),
		Left:   max(r.Left, o.Left),
		Bottom: min(r.Bottom, o.Bottom),
		Right:  min(r.Right, o.Right),
	}.Canon()
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return Rect{
		Top:    min(r.Top, o.Top),
		Left:   min(r.Left, o.Left),
		Bottom: max(r.Bottom, o.Bottom),
		Right:  max(r.Right, o.Right),
	}
}

// Inset shrinks r by in on every edge. Negative insets grow it.
func (r Rect) Inset(in Insets) Rect {
	return Rect{
		Top:    r.Top + in.Top,
		Left:   r.Left + in.Left,
		Bottom: r.Bottom - in.Bottom,
		Right:  r.Right - in.Right,
	}.Canon()
}

// Translate moves r by p.
func (r Rect) Translate(p Point) Rect {
	return Rect{Top: r.Top + p.Y, Left: r.Left + p.X, Bottom: r.Bottom + p.Y, Right: r.Right + p.X}
}

// Contains reports whether (x, y) lies within r grown by padding on every side.
func (r Rect) Contains(x, y, padding int) bool {
	return r.Left-padding <= x && x < r.Right+padding &&
		r.Top-padding <= y && y < r.Bottom+padding
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d %dx%d]", r.Left, r.Top, r.Width(), r.Height())
}
