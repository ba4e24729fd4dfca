// markings.go — rasterising film stock: base, windows, sprocket holes and
// edge printing. Text uses the embedded Go Regular font.
package border

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/types"
)

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	return f, nil
})

// stock is a film base being drawn on.
type stock struct {
	dst *image.NRGBA
}

func newStock(size types.Size, base types.Color) *stock {
	m := img.Fill(size, base)
	return &stock{dst: m.NRGBA()}
}

func (s *stock) image() *img.Image { return img.FromImage(s.dst) }

// punch clears a rounded rectangle to transparent, anti-aliased at the edge.
func (s *stock) punch(r types.Rect, radius float32) {
	r = r.Intersect(types.RectFromImage(s.dst.Bounds()))
	mask := coverage(r, radius)
	for y := 0; y < r.Height(); y++ {
		for x := 0; x < r.Width(); x++ {
			a := uint16(mask.AlphaAt(x, y).A)
			i := s.dst.PixOffset(r.Left+x, r.Top+y) + 3
			s.dst.Pix[i] = uint8(uint16(s.dst.Pix[i]) * (255 - a) / 255)
		}
	}
}

// paint draws a rounded rectangle of colour c over the stock.
func (s *stock) paint(r types.Rect, radius float32, c types.Color) {
	draw.DrawMask(s.dst, r.Image(), image.NewUniform(c.NRGBA()), image.Point{},
		coverage(r, radius), image.Point{}, draw.Over)
}

// coverage rasterises a rounded rectangle into an alpha mask whose origin
// is r's top-left corner.
func coverage(r types.Rect, radius float32) *image.Alpha {
	w, h := r.Width(), r.Height()
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return mask
	}
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	roundedRect(z, types.RectFromSize(r.Size()), radius)
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

func roundedRect(z *vector.Rasterizer, r types.Rect, radius float32) {
	l, t := float32(r.Left), float32(r.Top)
	rt, bt := float32(r.Right), float32(r.Bottom)
	radius = min(radius, float32(r.Width())/2, float32(r.Height())/2)

	z.MoveTo(l+radius, t)
	z.LineTo(rt-radius, t)
	z.QuadTo(rt, t, rt, t+radius)
	z.LineTo(rt, bt-radius)
	z.QuadTo(rt, bt, rt-radius, bt)
	z.LineTo(l+radius, bt)
	z.QuadTo(l, bt, l, bt-radius)
	z.LineTo(l, t+radius)
	z.QuadTo(l, t, l+radius, t)
	z.ClosePath()
}

// mark is one run of edge printing, anchored at its baseline origin.
type mark struct {
	text string
	at   types.Point
}

// stamp draws marks in colour c at the given point size.
func (s *stock) stamp(size float64, c types.Color, marks ...mark) error {
	f, err := goRegular()
	if err != nil {
		return err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("create font face: %w", err)
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  s.dst,
		Src:  image.NewUniform(c.NRGBA()),
		Face: face,
	}
	for _, m := range marks {
		d.Dot = fixed.P(m.at.X, m.at.Y)
		d.DrawString(m.text)
	}
	return nil
}

// ── Builtins ──

var (
	edgeInk   = types.RGB(232, 150, 60)
	holeLight = types.RGB(238, 234, 226)
)

func build120() (*img.Image, error) {
	s := newStock(types.Sz(1300, 1360), types.RGB(26, 22, 20))
	s.punch(types.Rect{Top: 110, Left: 70, Bottom: 1250, Right: 1230}, 16)
	err := s.stamp(34, edgeInk,
		mark{"120", types.Point{X: 90, Y: 78}},
		mark{"FILMBORDERS 400", types.Point{X: 470, Y: 78}},
		mark{"> 1", types.Point{X: 1140, Y: 78}},
		mark{"1", types.Point{X: 640, Y: 1322}},
		mark{"1A", types.Point{X: 1150, Y: 1322}},
	)
	if err != nil {
		return nil, err
	}
	return s.image(), nil
}

func build35() (*img.Image, error) {
	const (
		w, h         = 1560, 1200
		holeW, holeH = 34, 48
		pitch        = 78
	)
	s := newStock(types.Sz(w, h), types.RGB(30, 24, 20))
	s.punch(types.Rect{Top: 120, Left: 60, Bottom: 1080, Right: 1500}, 10)
	for x := 22; x+holeW <= w; x += pitch {
		for _, top := range []int{36, h - 36 - holeH} {
			s.paint(types.RectAt(types.Point{X: x, Y: top}, types.Sz(holeW, holeH)), 5, holeLight)
		}
	}
	err := s.stamp(20, edgeInk,
		mark{"FB 135-36", types.Point{X: 80, Y: 108}},
		mark{"12", types.Point{X: 760, Y: 1108}},
		mark{"12A", types.Point{X: 1400, Y: 1108}},
	)
	if err != nil {
		return nil, err
	}
	return s.image(), nil
}
