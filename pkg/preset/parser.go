// parser.go — preset.json parsing, resolution and example generation.
package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xob0t/FilmBorders/pkg/border"
	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/options"
)

// ErrAmbiguousBorder is returned when a preset names both a builtin and a
// border image.
var ErrAmbiguousBorder = errors.New("preset: border names both builtin and source")

// GetExampleJSON returns a sample preset.json and an options override for
// filmborders init.
func GetExampleJSON() (presetJSON, optionsJSON string) {
	presetJSON = `{
  "meta": {
    "name": "Contact Sheet 35",
    "version": "1.0",
    "author": "FilmBorders",
    "description": "35mm strip on a white card"
  },
  "border": { "builtin": "35mm" },
  "options": {
    "output_size": {},
    "output_size_bounds": { "width": 2400, "height": 2400 },
    "scale_factor": 1,
    "margin": 0.04,
    "mode": "Border",
    "frame_width": { "top": 0, "right": 0, "bottom": 0, "left": 0 },
    "frame_color": "#000000",
    "background_color": "#ffffff",
    "preview": false
  }
}`

	optionsJSON = `{
  "margin": 0.08,
  "background_color": "#f4efe6",
  "image_rotation": "Rotate90"
}`
	return
}

// ParsePresetFile loads a standalone preset JSON file. Relative border paths
// resolve against the file's directory.
func ParsePresetFile(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, err
	}
	p.dir = filepath.Dir(path)
	return p, nil
}

// Parse decodes a preset document. Relative border paths resolve against
// the working directory.
func Parse(data []byte) (*Preset, error) {
	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse preset JSON: %w", err)
	}
	if p.Border.Builtin != "" && p.Border.Source != "" {
		return nil, ErrAmbiguousBorder
	}
	return &p, nil
}

// Resolve decodes the preset into engine inputs. The preset's options are
// layered over options.Default, then each override is merged on top in
// order, so a preset or an override only needs the keys it changes.
func (p *Preset) Resolve(overrides ...json.RawMessage) (options.Options, border.Source, error) {
	doc := json.RawMessage(options.Default().MustSerialize())
	for _, layer := range append([]json.RawMessage{p.Options}, overrides...) {
		var err error
		if doc, err = Merge(doc, layer); err != nil {
			return options.Options{}, border.None(), err
		}
	}
	o, err := options.Deserialize(string(doc))
	if err != nil {
		return options.Options{}, border.None(), fmt.Errorf("preset %q: %w", p.Meta.Name, err)
	}

	src, err := p.border()
	if err != nil {
		return options.Options{}, border.None(), fmt.Errorf("preset %q: %w", p.Meta.Name, err)
	}
	return o, src, nil
}

func (p *Preset) border() (border.Source, error) {
	switch ref := p.Border; {
	case ref.Builtin != "" && ref.Source != "":
		return border.None(), ErrAmbiguousBorder
	case ref.Builtin != "":
		n, err := border.ParseName(ref.Builtin)
		if err != nil {
			return border.None(), err
		}
		return border.Builtin(n), nil
	case ref.Source != "":
		path := ref.Source
		if !filepath.IsAbs(path) && p.dir != "" {
			path = filepath.Join(p.dir, path)
		}
		m, err := img.Open(path)
		if err != nil {
			return border.None(), err
		}
		return border.Custom(m), nil
	}
	return border.None(), nil
}
