// color.go — colour parsing for solid cards.
package generator

import (
	"crypto/rand"
	"fmt"

	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/types"
)

// ParseColor parses a colour string. Accepts anything types.ParseColor
// does, plus "random" (or "") for a random opaque colour.
func ParseColor(s string) (types.Color, error) {
	if s == "" || s == "random" {
		buf := make([]byte, 3)
		if _, err := rand.Read(buf); err != nil {
			return types.Color{}, fmt.Errorf("random color: %w", err)
		}
		return types.RGB(buf[0], buf[1], buf[2]), nil
	}
	return types.ParseColor(s)
}

// NewSolidImage creates a uniform solid-colour image.
func NewSolidImage(size types.Size, c types.Color) *img.Image {
	return img.Fill(size, c)
}
