// loader.go — Load .fbpreset (ZIP) bundles and plain preset.json files.
package preset

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xob0t/FilmBorders/internal/logging"
	"github.com/xob0t/FilmBorders/pkg/generator"
	"github.com/xob0t/FilmBorders/pkg/img"
)

// LoadPreset opens a .fbpreset ZIP, extracts it to a temp directory and
// parses its preset.json. Border paths resolve inside the bundle. The
// returned cleanup function removes the temp directory.
func LoadPreset(path string) (*Preset, func(), error) {
	noop := func() {}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, noop, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	tmpDir, err := os.MkdirTemp("", "fbpreset-*")
	if err != nil {
		return nil, noop, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	if err := extractZip(&r.Reader, tmpDir); err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("extract %s: %w", path, err)
	}

	p, err := ParsePresetFile(filepath.Join(tmpDir, FileName))
	if err != nil {
		cleanup()
		return nil, noop, err
	}
	logging.Logger().Debug("preset loaded", "path", path, "name", p.Meta.Name)
	return p, cleanup, nil
}

// Load opens path as a bundle when it has the .fbpreset extension and as
// plain JSON otherwise.
func Load(path string) (*Preset, func(), error) {
	if strings.EqualFold(filepath.Ext(path), Ext) {
		return LoadPreset(path)
	}
	p, err := ParsePresetFile(path)
	return p, func() {}, err
}

// WriteBundle writes p as a .fbpreset ZIP to w. A non-nil border is stored
// as border.png and replaces p.Border in the written document.
func WriteBundle(w io.Writer, p *Preset, border *img.Image) error {
	doc := *p
	zw := zip.NewWriter(w)

	if border != nil {
		doc.Border = BorderRef{Source: "border.png"}
		f, err := zw.Create(doc.Border.Source)
		if err != nil {
			return fmt.Errorf("add border: %w", err)
		}
		if err := generator.GenerateToWriter(f, ".png", generator.Config{Image: border}); err != nil {
			return fmt.Errorf("add border: %w", err)
		}
	}

	f, err := zw.Create(FileName)
	if err != nil {
		return fmt.Errorf("add %s: %w", FileName, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode %s: %w", FileName, err)
	}
	return zw.Close()
}

// extractZip extracts all files from a zip reader into destDir.
func extractZip(r *zip.Reader, destDir string) error {
	root := filepath.Clean(destDir) + string(os.PathSeparator)
	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name)

		// Guard against zip slip.
		if !strings.HasPrefix(filepath.Clean(target), root) {
			return fmt.Errorf("illegal path in zip: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
