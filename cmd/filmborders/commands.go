// commands.go — borders, schema and init subcommands.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/xob0t/FilmBorders/pkg/border"
	"github.com/xob0t/FilmBorders/pkg/generator"
	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/preset"
	"github.com/xob0t/FilmBorders/pkg/types"
)

// ── borders ──

func runBorders(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "list":
			args = args[1:]
		case "inspect":
			return runInspect(os.Stdout, args[1:])
		case "export":
			return runExport(os.Stdout, args[1:])
		}
	}
	fs := flag.NewFlagSet("borders", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return listBorders(os.Stdout, *asJSON)
}

func listBorders(w io.Writer, asJSON bool) error {
	infos, err := border.Catalog()
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tALIASES\tSIZE\tWINDOW\tDESCRIPTION")
	for _, in := range infos {
		fmt.Fprintf(tw, "%s\t%v\t%v\t%v\t%s\n", in.Name, in.Aliases, in.Size, in.Window, in.Description)
	}
	return tw.Flush()
}

func runInspect(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("borders inspect", flag.ContinueOnError)
	def := border.DefaultAnalysis()
	threshold := fs.Float64("threshold", def.AlphaThreshold, "Alpha fraction below which a pixel is transparent")
	merge := fs.Int("merge", def.MergeDistance, "Merge transparent regions closer than this many pixels")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("borders inspect: no files")
	}

	a := border.Analysis{AlphaThreshold: *threshold, MergeDistance: *merge}
	for _, path := range fs.Args() {
		m, err := img.Open(path)
		if err != nil {
			return err
		}
		inspect(w, path, m, a)
	}
	return nil
}

func inspect(w io.Writer, name string, m *img.Image, a border.Analysis) {
	comps := border.TransparentComponents(m, a)
	fmt.Fprintf(w, "%s: %v, %d transparent region(s)\n", name, m.Size(), len(comps))
	for i, r := range comps {
		label := ""
		if i == 0 {
			label = "  (window)"
		}
		fmt.Fprintf(w, "  %v %v%s\n", r, r.Size(), label)
	}
}

func runExport(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("borders export", flag.ContinueOnError)
	output := fs.String("o", "", "Output file")
	rotate := fs.Int("rotate", 0, "Rotation in degrees")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 || *output == "" {
		return errors.New("usage: filmborders borders export <name> -o <file>")
	}
	n, err := border.ParseName(fs.Arg(0))
	if err != nil {
		return err
	}
	rot, err := types.RotationFromDegrees(*rotate)
	if err != nil {
		return fmt.Errorf("--rotate: %w", err)
	}
	m, err := n.Image()
	if err != nil {
		return err
	}
	if err := generator.Generate(*output, generator.Config{Image: m.Rotate(rot)}); err != nil {
		return err
	}
	fmt.Fprintf(w, "Done: %s\n", *output)
	return nil
}

// ── schema ──

func runSchema(args []string) error {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	presetPath := fs.String("preset", "", "Describe and resolve a preset")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *presetPath == "" {
		fmt.Print(preset.FormatSchema())
		return nil
	}
	return describePreset(os.Stdout, *presetPath)
}

func describePreset(w io.Writer, path string) error {
	p, cleanup, err := preset.Load(path)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Fprintf(w, "Preset: %s (v%s) by %s\n", p.Meta.Name, p.Meta.Version, p.Meta.Author)
	if p.Meta.Description != "" {
		fmt.Fprintln(w, p.Meta.Description)
	}
	if len(p.Options) > 0 {
		warnings, err := preset.ValidateOptions(string(p.Options))
		if err != nil {
			return err
		}
		for _, warn := range warnings {
			fmt.Fprintf(w, "Warning: %s\n", warn)
		}
	}
	o, src, err := p.Resolve()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Border: %v\n\nResolved options:\n", src)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(o)
}

// ── init ──

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	var presetOut, optionsOut, bundleOut string
	fs.StringVar(&presetOut, "preset", "preset.json", "Output path for sample preset")
	fs.StringVar(&optionsOut, "options", "options.json", "Output path for sample options override")
	fs.StringVar(&bundleOut, "bundle", "", "Also write the sample as a .fbpreset bundle")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, o := preset.GetExampleJSON()
	if err := os.WriteFile(presetOut, []byte(p), 0o644); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	if err := os.WriteFile(optionsOut, []byte(o), 0o644); err != nil {
		return fmt.Errorf("write options: %w", err)
	}
	created := presetOut + ", " + optionsOut

	if bundleOut != "" {
		if err := writeBundle(bundleOut, p); err != nil {
			return err
		}
		created += ", " + bundleOut
	}

	fmt.Printf("Created: %s\n", created)
	fmt.Printf("Run: filmborders -o framed.png --preset %s --options %s photo.jpg\n", presetOut, optionsOut)
	return nil
}

func writeBundle(path, presetJSON string) error {
	p, err := preset.Parse([]byte(presetJSON))
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bundle: %w", err)
	}
	if err := preset.WriteBundle(f, p, nil); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
