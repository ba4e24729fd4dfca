// color.go — RGBA8 colour with hex parsing and named presets.
package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// ErrUnsupportedColor is matched by every *ColorError.
var ErrUnsupportedColor = errors.New("unsupported color")

// ColorError reports a colour string that could not be parsed.
type ColorError struct {
	Input  string
	Reason string
}

func (e *ColorError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid hex color %q", e.Input)
	}
	return fmt.Sprintf("invalid hex color %q: %s", e.Input, e.Reason)
}

func (e *ColorError) Unwrap() error { return ErrUnsupportedColor }

// Color is a non-premultiplied RGBA colour with 8 bits per channel.
type Color struct {
	R, G, B, A uint8
}

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 255} }

// RGBA returns a colour with explicit alpha.
func RGBA(r, g, b, a uint8) Color { return Color{R: r, G: g, B: b, A: a} }

// Clear is fully transparent black.
func Clear() Color { return Color{} }

// Black is opaque black.
func Black() Color { return RGB(0, 0, 0) }

// White is opaque white.
func White() Color { return RGB(255, 255, 255) }

// Gray is the light gray used as the editor's default backdrop.
func Gray() Color { return RGB(200, 200, 200) }

// Hex parses "#rrggbb" or "#rrggbbaa". Surrounding whitespace and any run of
// '#' or blanks before the digits are ignored.
func Hex(s string) (Color, error) {
	digits := strings.TrimSpace(s)
	digits = strings.TrimLeft(digits, "# \t")
	if len(digits) != 6 && len(digits) != 8 {
		return Color{}, &ColorError{Input: s, Reason: "expected 6 or 8 hex digits"}
	}
	raw, err := hex.DecodeString(digits)
	if err != nil {
		return Color{}, &ColorError{Input: s}
	}
	c := Color{R: raw[0], G: raw[1], B: raw[2], A: 255}
	if len(raw) == 4 {
		c.A = raw[3]
	}
	return c, nil
}

// MustHex is Hex for package-level literals; it panics on malformed input.
func MustHex(s string) Color {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseColor accepts a hex string or one of the preset names
// "clear", "black", "white", "gray".
func ParseColor(s string) (Color, error) {
	switch fold(s) {
	case "clear", "transparent":
		return Clear(), nil
	case "black":
		return Black(), nil
	case "white":
		return White(), nil
	case "gray", "grey":
		return Gray(), nil
	}
	return Hex(s)
}

// Opaque reports whether alpha is 255.
func (c Color) Opaque() bool { return c.A == 255 }

// NRGBA converts to the standard library's non-premultiplied colour.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// FromColor converts any color.Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// String renders "#rrggbb" for opaque colours and "#rrggbbaa" otherwise.
func (c Color) String() string {
	if c.Opaque() {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// MarshalJSON encodes the colour as a hex string.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts a hex string or an {"rgba": [r, g, b, a]} object.
func (c *Color) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := Hex(s)
		if err != nil {
			return err
		}
		*c = v
		return nil
	}
	var obj struct {
		RGBA []int `json:"rgba"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return &ColorError{Input: string(data), Reason: "expected hex string or rgba object"}
	}
	if len(obj.RGBA) != 4 {
		return &ColorError{Input: string(data), Reason: "rgba needs 4 components"}
	}
	var ch [4]uint8
	for i, v := range obj.RGBA {
		if v < 0 || v > 255 {
			return &ColorError{Input: string(data), Reason: "component out of range"}
		}
		ch[i] = uint8(v)
	}
	*c = Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}
	return nil
}
