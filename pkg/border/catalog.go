// catalog.go — builtin borders, generated in-process and cached.
package border

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/options"
	"github.com/xob0t/FilmBorders/pkg/types"
)

// ErrUnknownBuiltin is wrapped in the *options.DecodeError returned for a
// name that is not in the catalogue.
var ErrUnknownBuiltin = errors.New("unknown builtin border")

// Name identifies a builtin border.
type Name uint8

const (
	// Border120_1 is a medium format 120 negative with edge printing.
	Border120_1 Name = iota
	// Border35_1 is a 35mm strip with sprocket holes.
	Border35_1
)

type entry struct {
	id      string
	aliases []string
	desc    string
	load    func() (*img.Image, error)
}

var catalog = [...]entry{
	Border120_1: {
		id:      "Border120_1",
		aliases: []string{"120mm", "120mm1", "120"},
		desc:    "120 medium format negative, rounded window, edge markings",
		load:    sync.OnceValues(build120),
	},
	Border35_1: {
		id:      "Border35_1",
		aliases: []string{"35mm", "35mm1", "135"},
		desc:    "35mm negative strip, 3:2 window, sprocket holes",
		load:    sync.OnceValues(build35),
	},
}

// Names lists the catalogue in a stable order.
func Names() []Name {
	out := make([]Name, len(catalog))
	for i := range catalog {
		out[i] = Name(i)
	}
	return out
}

// ParseName resolves a canonical name or alias, ignoring case. Unknown
// names fail with an *options.DecodeError wrapping ErrUnknownBuiltin.
func ParseName(s string) (Name, error) {
	v := strings.TrimSpace(s)
	for i, e := range catalog {
		if strings.EqualFold(v, e.id) {
			return Name(i), nil
		}
		for _, a := range e.aliases {
			if strings.EqualFold(v, a) {
				return Name(i), nil
			}
		}
	}
	return 0, &options.DecodeError{Field: "border", Err: fmt.Errorf("%w %q", ErrUnknownBuiltin, s)}
}

// Valid reports whether n is in the catalogue.
func (n Name) Valid() bool { return int(n) < len(catalog) }

func (n Name) String() string {
	if !n.Valid() {
		return fmt.Sprintf("Name(%d)", uint8(n))
	}
	return catalog[n].id
}

// Aliases returns the alternative spellings accepted by ParseName.
func (n Name) Aliases() []string {
	if !n.Valid() {
		return nil
	}
	return append([]string(nil), catalog[n].aliases...)
}

// Description is a one-line human summary.
func (n Name) Description() string {
	if !n.Valid() {
		return ""
	}
	return catalog[n].desc
}

// Image returns a fresh copy of the builtin asset. The asset is generated on
// first use and cached for the life of the process.
func (n Name) Image() (*img.Image, error) {
	if !n.Valid() {
		return nil, &options.DecodeError{Field: "border", Err: fmt.Errorf("%w %s", ErrUnknownBuiltin, n)}
	}
	m, err := catalog[n].load()
	if err != nil {
		return nil, fmt.Errorf("build border %s: %w", n, err)
	}
	return m.Clone(), nil
}

// MarshalText encodes the canonical name.
func (n Name) MarshalText() ([]byte, error) {
	if !n.Valid() {
		return nil, fmt.Errorf("%w %s", ErrUnknownBuiltin, n)
	}
	return []byte(n.String()), nil
}

// UnmarshalText accepts any spelling ParseName accepts.
func (n *Name) UnmarshalText(text []byte) error {
	v, err := ParseName(string(text))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// Info summarises a catalogue entry for listings.
type Info struct {
	Name        string     `json:"name"`
	Aliases     []string   `json:"aliases"`
	Description string     `json:"description"`
	Size        types.Size `json:"size"`
	Window      types.Rect `json:"window"`
}

// Describe builds n's asset and locates its content window.
func Describe(n Name) (Info, error) {
	m, err := n.Image()
	if err != nil {
		return Info{}, err
	}
	info := Info{
		Name:        n.String(),
		Aliases:     n.Aliases(),
		Description: n.Description(),
		Size:        m.Size(),
	}
	if w, ok := Window(m, DefaultAnalysis()); ok {
		info.Window = w
	}
	return info, nil
}

// Catalog describes every builtin.
func Catalog() ([]Info, error) {
	out := make([]Info, 0, len(catalog))
	for _, n := range Names() {
		info, err := Describe(n)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}
