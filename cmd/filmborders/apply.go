// apply.go — render photos from flags, presets and options documents.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/xob0t/FilmBorders/internal/logging"
	"github.com/xob0t/FilmBorders/internal/termimg"
	"github.com/xob0t/FilmBorders/pkg/border"
	"github.com/xob0t/FilmBorders/pkg/generator"
	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/options"
	"github.com/xob0t/FilmBorders/pkg/preset"
	"github.com/xob0t/FilmBorders/pkg/render"
	"github.com/xob0t/FilmBorders/pkg/types"
)

// cardSize is the photo size used by --color.
var cardSize = types.Sz(1500, 1000)

type applyFlags struct {
	output     string
	quality    int
	preview    bool
	jobs       int
	border     string
	presetPath string
	optionsArg string
	color      string
	verbose    bool

	width, height       int
	maxWidth, maxHeight int
	scale, margin       float64
	mode                string
	crop, cropUnit      string
	frame, frameUnit    string
	frameColor          string
	background          string
	rotate, borderRot   int
}

func newApplyFlags(name string) (*flag.FlagSet, *applyFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	f := &applyFlags{}

	fs.StringVar(&f.output, "o", "", "Output file or directory")
	fs.StringVar(&f.output, "output", "", "Output file or directory")
	fs.IntVar(&f.quality, "quality", 0, "JPEG quality 1-100")
	fs.BoolVar(&f.preview, "preview", false, "Show the result in the terminal")
	fs.IntVar(&f.jobs, "j", runtime.GOMAXPROCS(0), "Parallel renders")
	fs.IntVar(&f.jobs, "jobs", runtime.GOMAXPROCS(0), "Parallel renders")
	fs.StringVar(&f.border, "border", "", "Builtin border name or border image")
	fs.StringVar(&f.presetPath, "preset", "", "Path to .fbpreset bundle or preset JSON")
	fs.StringVar(&f.optionsArg, "options", "", "Options JSON, inline or a file path")
	fs.StringVar(&f.color, "color", "", "Solid card colour used instead of a photo")
	fs.BoolVar(&f.verbose, "v", false, "Log render stages")

	fs.IntVar(&f.width, "width", 0, "Output width in pixels")
	fs.IntVar(&f.height, "height", 0, "Output height in pixels")
	fs.IntVar(&f.maxWidth, "max-width", 0, "Maximum output width")
	fs.IntVar(&f.maxHeight, "max-height", 0, "Maximum output height")
	fs.Float64Var(&f.scale, "scale", 1, "Photo scale inside the frame")
	fs.Float64Var(&f.margin, "margin", 0, "Margin as a fraction of the canvas")
	fs.StringVar(&f.mode, "mode", "image", "Aspect source: image or border")
	fs.StringVar(&f.crop, "crop", "", "Crop: top[,right[,bottom[,left]]]")
	fs.StringVar(&f.cropUnit, "crop-unit", "percent", "Crop unit: percent or pixels")
	fs.StringVar(&f.frame, "frame-width", "", "Frame width: top[,right[,bottom[,left]]]")
	fs.StringVar(&f.frameUnit, "frame-unit", "percent", "Frame unit: percent or pixels")
	fs.StringVar(&f.frameColor, "frame-color", "", "Frame colour")
	fs.StringVar(&f.background, "background", "", "Background colour")
	fs.IntVar(&f.rotate, "rotate", 0, "Photo rotation in degrees")
	fs.IntVar(&f.borderRot, "border-rotate", 0, "Border rotation in degrees")

	fs.Usage = printUsage
	return fs, f
}

func run(args []string) error {
	fs, f := newApplyFlags("apply")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setupLogging(f.verbose)

	o, src, err := resolveInputs(fs, f)
	if err != nil {
		return err
	}
	if f.preview {
		o.Preview = true
		if bounds, err := termimg.WindowBounds(os.Stdout); err == nil {
			o.OutputSizeBounds = tighten(o.OutputSizeBounds, bounds)
		}
		if f.output == "" && !termimg.IsCompatible() {
			return errors.New("terminal cannot show inline images; use -o to write a file")
		}
	}

	inputs := fs.Args()
	if len(inputs) == 0 && f.color == "" {
		printUsage()
		return errors.New("no input images (or --color for a solid card)")
	}
	tasks, err := plan(inputs, f.output, f.preview)
	if err != nil {
		return err
	}

	a := &applier{
		renderer: render.New(),
		border:   src,
		options:  o,
		color:    f.color,
		quality:  f.quality,
		preview:  f.preview,
		stdout:   os.Stdout,
	}
	return a.runAll(context.Background(), tasks, f.jobs)
}

// resolveInputs layers defaults, preset, options document and explicit
// flags, in that order.
func resolveInputs(fs *flag.FlagSet, f *applyFlags) (options.Options, border.Source, error) {
	p := &preset.Preset{}
	if f.presetPath != "" {
		loaded, cleanup, err := preset.Load(f.presetPath)
		if err != nil {
			return options.Options{}, border.None(), fmt.Errorf("load preset: %w", err)
		}
		defer cleanup()
		p = loaded
	}

	var layers []json.RawMessage
	if f.optionsArg != "" {
		doc, err := readOptionsArg(f.optionsArg)
		if err != nil {
			return options.Options{}, border.None(), err
		}
		warnings, err := preset.ValidateOptions(string(doc))
		if err != nil {
			return options.Options{}, border.None(), fmt.Errorf("options: %w", err)
		}
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
		layers = append(layers, doc)
	}
	flagDoc, err := overrides(fs, f)
	if err != nil {
		return options.Options{}, border.None(), err
	}
	layers = append(layers, flagDoc)

	// the preset's border image is read here, before cleanup removes it
	o, src, err := p.Resolve(layers...)
	if err != nil {
		return options.Options{}, border.None(), err
	}
	if visited(fs)["border"] {
		if src, err = parseBorder(f.border); err != nil {
			return options.Options{}, border.None(), err
		}
	}
	return o, src, nil
}

// readOptionsArg reads an inline JSON object or a file.
func readOptionsArg(arg string) (json.RawMessage, error) {
	if strings.HasPrefix(strings.TrimSpace(arg), "{") {
		return json.RawMessage(arg), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("read options: %w", err)
	}
	return data, nil
}

func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return set
}

// overrides turns the flags given on the command line into an options
// document. Flags left at their defaults are omitted so they do not mask
// preset values.
func overrides(fs *flag.FlagSet, f *applyFlags) (json.RawMessage, error) {
	set := visited(fs)
	doc := make(map[string]any)

	axes := func(key, w, h string, wv, hv int) {
		if !set[w] && !set[h] {
			return
		}
		m := make(map[string]any)
		if set[w] {
			m["width"] = wv
		}
		if set[h] {
			m["height"] = hv
		}
		doc[key] = m
	}
	axes("output_size", "width", "height", f.width, f.height)
	axes("output_size_bounds", "max-width", "max-height", f.maxWidth, f.maxHeight)

	if set["scale"] {
		doc["scale_factor"] = f.scale
	}
	if set["margin"] {
		doc["margin"] = f.margin
	}
	if set["mode"] {
		m, err := types.ParseFitMode(f.mode)
		if err != nil {
			return nil, fmt.Errorf("--mode: %w", err)
		}
		doc["mode"] = m
	}

	sides := func(key, flagName, unitFlag, value, unit string) error {
		switch {
		case set[flagName]:
			s, err := parseSides(value, unit)
			if err != nil {
				return fmt.Errorf("--%s: %w", flagName, err)
			}
			// unit is written even for percent, which the encoder omits,
			// so a preset's pixel unit cannot survive the merge
			doc[key] = map[string]any{
				"top": s.Top, "right": s.Right, "bottom": s.Bottom, "left": s.Left,
				"unit": s.Unit,
			}
		case set[unitFlag]:
			u, err := types.ParseUnit(unit)
			if err != nil {
				return fmt.Errorf("--%s: %w", unitFlag, err)
			}
			doc[key] = map[string]any{"unit": u}
		}
		return nil
	}
	if err := sides("crop", "crop", "crop-unit", f.crop, f.cropUnit); err != nil {
		return nil, err
	}
	if err := sides("frame_width", "frame-width", "frame-unit", f.frame, f.frameUnit); err != nil {
		return nil, err
	}

	// colour names are a CLI convenience; the wire format is hex
	for _, c := range []struct{ flag, key, value string }{
		{"frame-color", "frame_color", f.frameColor},
		{"background", "background_color", f.background},
	} {
		if !set[c.flag] {
			continue
		}
		v, err := types.ParseColor(c.value)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", c.flag, err)
		}
		doc[c.key] = v
	}

	for _, r := range []struct {
		flag, key string
		deg       int
	}{{"rotate", "image_rotation", f.rotate}, {"border-rotate", "border_rotation", f.borderRot}} {
		if !set[r.flag] {
			continue
		}
		rot, err := types.RotationFromDegrees(r.deg)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", r.flag, err)
		}
		doc[r.key] = rot
	}
	if set["preview"] {
		doc["preview"] = f.preview
	}
	return json.Marshal(doc)
}

// parseSides reads one to four comma-separated values in CSS order:
// all; vertical,horizontal; top,horizontal,bottom; top,right,bottom,left.
func parseSides(s, unit string) (types.Sides, error) {
	u, err := types.ParseUnit(unit)
	if err != nil {
		return types.Sides{}, err
	}
	parts := strings.Split(s, ",")
	v := make([]float64, len(parts))
	for i, p := range parts {
		if v[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64); err != nil {
			return types.Sides{}, fmt.Errorf("side %q: %w", p, err)
		}
	}
	out := types.Sides{Unit: u}
	switch len(v) {
	case 1:
		out.Top, out.Right, out.Bottom, out.Left = v[0], v[0], v[0], v[0]
	case 2:
		out.Top, out.Right, out.Bottom, out.Left = v[0], v[1], v[0], v[1]
	case 3:
		out.Top, out.Right, out.Bottom, out.Left = v[0], v[1], v[2], v[1]
	case 4:
		out.Top, out.Right, out.Bottom, out.Left = v[0], v[1], v[2], v[3]
	default:
		return types.Sides{}, fmt.Errorf("want 1 to 4 values, got %d", len(v))
	}
	return out, nil
}

// parseBorder accepts a builtin name or alias, "none", or an image path.
func parseBorder(arg string) (border.Source, error) {
	if arg == "" || strings.EqualFold(arg, "none") {
		return border.None(), nil
	}
	n, err := border.ParseName(arg)
	if err == nil {
		return border.Builtin(n), nil
	}
	if _, statErr := os.Stat(arg); statErr != nil {
		return border.None(), err
	}
	m, err := img.Open(arg)
	if err != nil {
		return border.None(), fmt.Errorf("border: %w", err)
	}
	return border.Custom(m), nil
}

// tighten applies b on top of a: axes set in both take the smaller value,
// axes set in one keep it.
func tighten(a, b types.BoundedSize) types.BoundedSize {
	out := a.Normalize().ClampMin(b)
	if !out.HasWidth() {
		out.Width = b.Width
	}
	if !out.HasHeight() {
		out.Height = b.Height
	}
	return out.Normalize()
}

// ── Batch ──

// task renders input (or a solid card when empty) to output (or only the
// terminal when empty).
type task struct {
	input, output string
}

// plan names one output per input. With several inputs, output is a
// directory; without it results land next to their inputs, unless they are
// only previewed.
func plan(inputs []string, output string, preview bool) ([]task, error) {
	if len(inputs) == 0 {
		if output == "" && !preview {
			return nil, errors.New("output file is required (-o) for --color")
		}
		return []task{{output: output}}, nil
	}
	if len(inputs) == 1 && !isDir(output) {
		if output == "" && !preview {
			output = siblingName(inputs[0])
		}
		return []task{{input: inputs[0], output: output}}, nil
	}

	if output != "" {
		if err := os.MkdirAll(output, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	tasks := make([]task, 0, len(inputs))
	seen := make(map[string]string)
	for _, in := range inputs {
		var out string
		switch {
		case output != "":
			out = filepath.Join(output, outputBase(in))
		case !preview:
			out = siblingName(in)
		}
		if prev, dup := seen[out]; dup && out != "" {
			return nil, fmt.Errorf("%s and %s both write %s", prev, in, out)
		}
		seen[out] = in
		tasks = append(tasks, task{input: in, output: out})
	}
	return tasks, nil
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(os.PathSeparator)) {
		return true
	}
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

// outputBase keeps the input's name and format, falling back to PNG for
// formats that cannot be written (WebP).
func outputBase(in string) string {
	base := filepath.Base(in)
	ext := filepath.Ext(base)
	if _, err := img.FormatFor(ext); err != nil {
		return strings.TrimSuffix(base, ext) + ".png"
	}
	return base
}

func siblingName(in string) string {
	base := outputBase(in)
	ext := filepath.Ext(base)
	return filepath.Join(filepath.Dir(in), strings.TrimSuffix(base, ext)+"_bordered"+ext)
}

type applier struct {
	renderer *render.Renderer
	border   border.Source
	options  options.Options
	color    string
	quality  int
	preview  bool

	mu     sync.Mutex // guards stdout
	stdout io.Writer
}

func (a *applier) runAll(ctx context.Context, tasks []task, jobs int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for _, t := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return a.apply(t)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logging.Logger().Info("batch finished", "images", len(tasks))
	return nil
}

func (a *applier) apply(t task) error {
	var photo *img.Image
	if t.input == "" {
		c, err := generator.ParseColor(a.color)
		if err != nil {
			return fmt.Errorf("--color: %w", err)
		}
		photo = generator.NewSolidImage(cardSize, c)
	} else {
		var err error
		if photo, err = img.Open(t.input); err != nil {
			return err
		}
	}

	out, err := a.renderer.Render(photo, a.border, a.options)
	if err != nil {
		if t.input != "" {
			return fmt.Errorf("%s: %w", t.input, err)
		}
		return err
	}

	if t.output != "" {
		if err := generator.Generate(t.output, generator.Config{Image: out, Quality: a.quality}); err != nil {
			return err
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.preview && termimg.IsCompatible() {
		if err := termimg.Image(a.stdout, out); err != nil {
			return err
		}
	}
	if t.output != "" {
		fmt.Fprintf(a.stdout, "Done: %s (%v)\n", t.output, out.Size())
	}
	return nil
}
