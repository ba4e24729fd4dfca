// Package border provides the overlay that frames a render: either a named
// builtin from the compiled-in catalogue or a caller-supplied image.
package border

import (
	"fmt"

	"github.com/xob0t/FilmBorders/pkg/img"
)

// Kind tags the variant held by a Source.
type Kind uint8

const (
	KindNone Kind = iota
	KindBuiltin
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindCustom:
		return "custom"
	default:
		return "none"
	}
}

// Source is exactly one of: no border, a builtin, or a custom image.
// The zero value is no border. Construct with None, Builtin or Custom.
type Source struct {
	kind   Kind
	name   Name
	custom *img.Image
}

// None returns a source that renders without an overlay.
func None() Source { return Source{} }

// Builtin returns a source backed by the named catalogue entry.
func Builtin(n Name) Source { return Source{kind: KindBuiltin, name: n} }

// Custom returns a source backed by m. A nil or empty image is no border.
// The image is not copied; callers hand over ownership.
func Custom(m *img.Image) Source {
	if m.IsEmpty() {
		return None()
	}
	return Source{kind: KindCustom, custom: m}
}

// Kind reports the active variant.
func (s Source) Kind() Kind { return s.kind }

// IsNone reports whether s carries no border.
func (s Source) IsNone() bool { return s.kind == KindNone }

// Name returns the builtin name when s is a builtin.
func (s Source) Name() (Name, bool) { return s.name, s.kind == KindBuiltin }

// Image returns the custom image when s is custom.
func (s Source) Image() (*img.Image, bool) { return s.custom, s.kind == KindCustom }

// Resolve returns the border as a fresh image the caller owns, or nil for
// no border.
func (s Source) Resolve() (*img.Image, error) {
	switch s.kind {
	case KindBuiltin:
		return s.name.Image()
	case KindCustom:
		return s.custom.Clone(), nil
	}
	return nil, nil
}

func (s Source) String() string {
	switch s.kind {
	case KindBuiltin:
		return fmt.Sprintf("Builtin(%s)", s.name)
	case KindCustom:
		return fmt.Sprintf("Custom(%v)", s.custom.Size())
	}
	return "None"
}
