// Package preset bundles a border and an options document into a reusable
// look, stored as preset.json or as a .fbpreset ZIP carrying its own border
// image.
package preset

import "encoding/json"

// ── Preset types ──

// Preset is the top-level structure of a preset.json file.
type Preset struct {
	Meta    Meta            `json:"meta"`
	Border  BorderRef       `json:"border"`
	Options json.RawMessage `json:"options,omitempty"`

	// dir resolves relative asset paths; set by the loaders.
	dir string
}

// Meta holds preset metadata.
type Meta struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// BorderRef names the preset's border. At most one field may be set; both
// empty means no border.
type BorderRef struct {
	Builtin string `json:"builtin,omitempty"` // builtin name or alias, e.g. "35mm"
	Source  string `json:"source,omitempty"`  // image path, relative to the preset
}

// FileName is the preset document inside a bundle.
const FileName = "preset.json"

// Ext is the bundle file extension.
const Ext = ".fbpreset"
