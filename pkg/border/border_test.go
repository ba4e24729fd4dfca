package border

import (
	"errors"
	"testing"

	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/options"
	"github.com/xob0t/FilmBorders/pkg/types"
)

func TestSourceVariants(t *testing.T) {
	var zero Source
	if !zero.IsNone() || zero.Kind() != KindNone {
		t.Error("zero Source should be None")
	}
	m, err := zero.Resolve()
	if err != nil || m != nil {
		t.Errorf("None.Resolve() = %v, %v", m, err)
	}

	if s := Custom(nil); !s.IsNone() {
		t.Error("Custom(nil) should collapse to None")
	}
	if s := Custom(img.New(types.Sz(0, 4))); !s.IsNone() {
		t.Error("Custom(empty) should collapse to None")
	}

	custom := img.Fill(types.Sz(3, 2), types.White())
	s := Custom(custom)
	if _, ok := s.Name(); ok {
		t.Error("custom source reports a builtin name")
	}
	got, err := s.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(custom) || got == custom {
		t.Error("Resolve must return an equal copy")
	}

	b := Builtin(Border35_1)
	if n, ok := b.Name(); !ok || n != Border35_1 {
		t.Errorf("Name() = %v, %v", n, ok)
	}
	if _, ok := b.Image(); ok {
		t.Error("builtin source reports a custom image")
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		in   string
		want Name
	}{
		{"Border120_1", Border120_1},
		{"border120_1", Border120_1},
		{"120mm", Border120_1},
		{" 120MM1 ", Border120_1},
		{"35mm", Border35_1},
		{"Border35_1", Border35_1},
	}
	for _, tt := range tests {
		got, err := ParseName(tt.in)
		if err != nil {
			t.Errorf("ParseName(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseName(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestParseNameUnknown checks that unknown builtins are decode errors.
func TestParseNameUnknown(t *testing.T) {
	_, err := ParseName("polaroid")
	if !errors.Is(err, ErrUnknownBuiltin) || !errors.Is(err, options.ErrDecode) {
		t.Fatalf("err = %v", err)
	}
	var de *options.DecodeError
	if !errors.As(err, &de) || de.Field != "border" {
		t.Errorf("err = %#v", err)
	}
	if _, err := Name(99).Image(); !errors.Is(err, ErrUnknownBuiltin) {
		t.Errorf("Name(99).Image() err = %v", err)
	}
}

func TestBuiltinWindows(t *testing.T) {
	tests := []struct {
		name   Name
		size   types.Size
		window types.Rect
	}{
		{Border120_1, types.Sz(1300, 1360), types.Rect{Top: 110, Left: 70, Bottom: 1250, Right: 1230}},
		{Border35_1, types.Sz(1560, 1200), types.Rect{Top: 120, Left: 60, Bottom: 1080, Right: 1500}},
	}
	for _, tt := range tests {
		t.Run(tt.name.String(), func(t *testing.T) {
			info, err := Describe(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if info.Size != tt.size {
				t.Errorf("size = %v, want %v", info.Size, tt.size)
			}
			if info.Window != tt.window {
				t.Errorf("window = %v, want %v", info.Window, tt.window)
			}
			m, _ := tt.name.Image()
			if m.Pix(0, 0).A != 255 {
				t.Error("film base should be opaque")
			}
			c := tt.window.Center()
			if m.Pix(c.X, c.Y).A != 0 {
				t.Error("window centre should be transparent")
			}
		})
	}
}

func TestBuiltinImagesAreCopies(t *testing.T) {
	a, err := Border120_1.Image()
	if err != nil {
		t.Fatal(err)
	}
	a.SetPix(0, 0, types.White())
	b, _ := Border120_1.Image()
	if b.Pix(0, 0) == types.White() {
		t.Error("mutating a returned builtin leaked into the cache")
	}
}

func TestTransparentComponents(t *testing.T) {
	m := img.Fill(types.Sz(40, 20), types.Black())
	erase := func(r types.Rect) {
		for y := r.Top; y < r.Bottom; y++ {
			for x := r.Left; x < r.Right; x++ {
				m.SetPix(x, y, types.Clear())
			}
		}
	}
	big := types.Rect{Top: 2, Left: 2, Bottom: 18, Right: 20}
	small := types.Rect{Top: 5, Left: 30, Bottom: 8, Right: 34}
	erase(big)
	erase(small)

	got := TransparentComponents(m, Analysis{AlphaThreshold: 0.5, MergeDistance: 0})
	if len(got) != 2 || got[0] != big || got[1] != small {
		t.Fatalf("components = %v", got)
	}

	// a wide merge distance folds the small window into the big one
	got = TransparentComponents(m, Analysis{AlphaThreshold: 0.5, MergeDistance: 10})
	if len(got) != 1 || got[0] != big.Union(small) {
		t.Errorf("merged components = %v", got)
	}

	// A shape with a notch stays one component.
	m = img.Fill(types.Sz(10, 10), types.Black())
	erase(types.Rect{Top: 0, Left: 0, Bottom: 3, Right: 3})
	erase(types.Rect{Top: 0, Left: 5, Bottom: 3, Right: 8})
	erase(types.Rect{Top: 3, Left: 0, Bottom: 5, Right: 8})
	got = TransparentComponents(m, DefaultAnalysis())
	want := types.Rect{Top: 0, Left: 0, Bottom: 5, Right: 8}
	if len(got) != 1 || got[0] != want {
		t.Errorf("notched components = %v, want [%v]", got, want)
	}
}
