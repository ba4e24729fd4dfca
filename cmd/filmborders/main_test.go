package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xob0t/FilmBorders/pkg/border"
	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/options"
	"github.com/xob0t/FilmBorders/pkg/preset"
	"github.com/xob0t/FilmBorders/pkg/render"
	"github.com/xob0t/FilmBorders/pkg/types"
)

func TestParseSides(t *testing.T) {
	tests := []struct {
		in, unit string
		want     types.Sides
		wantErr  bool
	}{
		{"5", "percent", types.Uniform(5), false},
		{"1,2", "px", types.Sides{Top: 1, Right: 2, Bottom: 1, Left: 2, Unit: types.Pixels}, false},
		{"1, 2, 3", "percent", types.Sides{Top: 1, Right: 2, Bottom: 3, Left: 2}, false},
		{"1,2,3,4", "pixels", types.Sides{Top: 1, Right: 2, Bottom: 3, Left: 4, Unit: types.Pixels}, false},
		{"1,2,3,4,5", "percent", types.Sides{}, true},
		{"x", "percent", types.Sides{}, true},
		{"1", "furlongs", types.Sides{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in+"/"+tt.unit, func(t *testing.T) {
			got, err := parseSides(tt.in, tt.unit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseSides mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func resolve(t *testing.T, args ...string) (options.Options, border.Source, []string) {
	t.Helper()
	fs, f := newApplyFlags("test")
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	o, src, err := resolveInputs(fs, f)
	if err != nil {
		t.Fatal(err)
	}
	return o, src, fs.Args()
}

func TestFlagsOverrideDefaults(t *testing.T) {
	o, src, rest := resolve(t,
		"--width", "800", "--max-height", "600", "--scale", "0.9", "--margin", "0.05",
		"--mode", "border", "--crop", "1,2", "--crop-unit", "px", "--frame-width", "2",
		"--frame-color", "white", "--background", "#102030", "--rotate", "-90",
		"--border-rotate", "180", "--border", "35mm", "photo.jpg")

	want := options.Default()
	want.OutputSize = types.Bounded(800, 0)
	want.OutputSizeBounds = types.Bounded(0, 600)
	want.ScaleFactor = 0.9
	want.Margin = 0.05
	want.Mode = types.FitBorder
	want.Crop = &types.Sides{Top: 1, Right: 2, Bottom: 1, Left: 2, Unit: types.Pixels}
	want.FrameWidth = types.Uniform(2)
	want.FrameColor = types.White()
	bg := types.RGB(0x10, 0x20, 0x30)
	want.BackgroundColor = &bg
	want.ImageRotation = types.Rotate270
	want.BorderRotation = types.Rotate180
	if !o.Equal(want) {
		t.Errorf("options =\n%+v\nwant\n%+v", o, want)
	}
	if n, ok := src.Name(); !ok || n != border.Border35_1 {
		t.Errorf("border = %v", src)
	}
	if diff := cmp.Diff([]string{"photo.jpg"}, rest); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestLayering(t *testing.T) {
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "p.json")
	doc := `{"meta":{"name":"t"},"border":{"builtin":"120mm"},"options":{"margin":0.1,"scale_factor":0.8,"preview":true}}`
	if err := os.WriteFile(presetPath, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	// options document beats the preset; flags beat both; unset flags keep preset values
	o, src, _ := resolve(t, "--preset", presetPath, "--options", `{"margin":0.2,"scale_factor":0.7}`, "--scale", "0.5")
	if o.Margin != 0.2 || o.ScaleFactor != 0.5 || !o.Preview {
		t.Errorf("layered options = %+v", o)
	}
	if n, ok := src.Name(); !ok || n != border.Border120_1 {
		t.Errorf("border = %v, want the preset's", src)
	}

	_, src, _ = resolve(t, "--preset", presetPath, "--border", "none")
	if !src.IsNone() {
		t.Errorf("--border none kept %v", src)
	}
}

func TestSidesFlagsResetPresetUnit(t *testing.T) {
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "p.json")
	doc := `{"meta":{"name":"px"},"options":{` +
		`"frame_width":{"top":9,"right":9,"bottom":9,"left":9,"unit":"pixels"},` +
		`"crop":{"top":3,"right":3,"bottom":3,"left":3,"unit":"pixels"}}}`
	if err := os.WriteFile(presetPath, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	o, _, _ := resolve(t, "--preset", presetPath, "--frame-width", "5", "--crop", "2")
	if diff := cmp.Diff(types.Uniform(5), o.FrameWidth); diff != "" {
		t.Errorf("frame width mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(types.Uniform(2), o.CropSides()); diff != "" {
		t.Errorf("crop mismatch (-want +got):\n%s", diff)
	}

	// an unset sides flag keeps the preset's unit
	o, _, _ = resolve(t, "--preset", presetPath)
	if o.FrameWidth.Unit != types.Pixels {
		t.Errorf("frame unit = %v, want pixels", o.FrameWidth.Unit)
	}
}

func TestBadFlags(t *testing.T) {
	for _, args := range [][]string{
		{"--rotate", "45"},
		{"--mode", "sideways"},
		{"--frame-color", "#zzzzzz"},
		{"--border", "super8"},
		{"--options", `{"margin":`},
	} {
		fs, f := newApplyFlags("test")
		if err := fs.Parse(args); err != nil {
			t.Fatal(err)
		}
		if _, _, err := resolveInputs(fs, f); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}

func TestPlan(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")

	tasks, err := plan([]string{"a/one.jpg"}, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]task{{"a/one.jpg", filepath.Join("a", "one_bordered.jpg")}}, tasks, cmp.AllowUnexported(task{})); diff != "" {
		t.Errorf("single mismatch (-want +got):\n%s", diff)
	}

	tasks, err = plan([]string{"a/one.jpg", "b/two.webp"}, out, false)
	if err != nil {
		t.Fatal(err)
	}
	want := []task{{"a/one.jpg", filepath.Join(out, "one.jpg")}, {"b/two.webp", filepath.Join(out, "two.png")}}
	if diff := cmp.Diff(want, tasks, cmp.AllowUnexported(task{})); diff != "" {
		t.Errorf("batch mismatch (-want +got):\n%s", diff)
	}
	if !isDir(out) {
		t.Error("output directory was not created")
	}

	if _, err := plan([]string{"a/x.png", "b/x.png"}, out, false); err == nil {
		t.Error("expected a collision error")
	}
	if _, err := plan(nil, "", false); err == nil {
		t.Error("expected an error for --color without -o")
	}
	tasks, _ = plan([]string{"a.png", "b.png"}, "", true)
	for _, tk := range tasks {
		if tk.output != "" {
			t.Errorf("preview-only batch writes %q", tk.output)
		}
	}
}

func writePNG(t *testing.T, path string, m *img.Image) {
	t.Helper()
	var buf bytes.Buffer
	if err := img.Encode(&buf, m, img.PNG, 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestApplyBatch(t *testing.T) {
	dir := t.TempDir()
	var inputs []string
	for i, name := range []string{"a.png", "b.png", "c.png"} {
		path := filepath.Join(dir, name)
		writePNG(t, path, img.Fill(types.Sz(30+i*10, 20), types.White()))
		inputs = append(inputs, path)
	}
	outDir := filepath.Join(dir, "out")
	tasks, err := plan(inputs, outDir, false)
	if err != nil {
		t.Fatal(err)
	}

	o := options.Default()
	o.Margin = 0.1
	var stdout bytes.Buffer
	a := &applier{renderer: render.New(), options: o, stdout: &stdout}
	if err := a.runAll(t.Context(), tasks, 2); err != nil {
		t.Fatal(err)
	}

	for i, tk := range tasks {
		m, err := img.Open(tk.output)
		if err != nil {
			t.Fatal(err)
		}
		if want := types.Sz(30+i*10, 20); m.Size() != want {
			t.Errorf("%s: size %v, want %v", tk.output, m.Size(), want)
		}
	}
	if n := strings.Count(stdout.String(), "Done:"); n != 3 {
		t.Errorf("reported %d outputs, want 3:\n%s", n, stdout.String())
	}
}

func TestApplyFailureStopsBatch(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writePNG(t, good, img.Fill(types.Sz(10, 10), types.White()))
	tasks := []task{{input: filepath.Join(dir, "missing.png"), output: filepath.Join(dir, "m_out.png")}}

	a := &applier{renderer: render.New(), options: options.Default(), stdout: &bytes.Buffer{}}
	if err := a.runAll(t.Context(), tasks, 1); err == nil {
		t.Error("expected an error for a missing input")
	}

	o := options.Default()
	o.ScaleFactor = 0
	a = &applier{renderer: render.New(), options: o, stdout: &bytes.Buffer{}}
	err := a.runAll(t.Context(), []task{{input: good, output: filepath.Join(dir, "g_out.png")}}, 1)
	if err == nil || !strings.Contains(err.Error(), "good.png") {
		t.Errorf("err = %v, want it to name the input", err)
	}
}

func TestSolidCard(t *testing.T) {
	out := filepath.Join(t.TempDir(), "card.png")
	a := &applier{renderer: render.New(), options: options.Default(), color: "#336699", stdout: &bytes.Buffer{}}
	if err := a.apply(task{output: out}); err != nil {
		t.Fatal(err)
	}
	m, err := img.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	if m.Size() != cardSize || m.Pix(10, 10) != types.MustHex("#336699") {
		t.Errorf("card = %v with %v", m.Size(), m.Pix(10, 10))
	}
}

func TestInspect(t *testing.T) {
	m := img.Fill(types.Sz(20, 20), types.Black())
	for y := 4; y < 16; y++ {
		for x := 4; x < 16; x++ {
			m.SetPix(x, y, types.Clear())
		}
	}
	var buf bytes.Buffer
	inspect(&buf, "frame.png", m, border.DefaultAnalysis())
	out := buf.String()
	if !strings.Contains(out, "1 transparent region(s)") || !strings.Contains(out, "(window)") {
		t.Errorf("inspect output:\n%s", out)
	}
}

func TestListBorders(t *testing.T) {
	var buf bytes.Buffer
	if err := listBorders(&buf, false); err != nil {
		t.Fatal(err)
	}
	for _, n := range border.Names() {
		if !strings.Contains(buf.String(), n.String()) {
			t.Errorf("listing is missing %s", n)
		}
	}
}

func TestDescribePreset(t *testing.T) {
	p, _ := preset.GetExampleJSON()
	path := filepath.Join(t.TempDir(), "look"+preset.Ext)
	if err := writeBundle(path, p); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := describePreset(&buf, path); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Contact Sheet 35") || !strings.Contains(buf.String(), "Builtin(Border35_1)") {
		t.Errorf("describe output:\n%s", buf.String())
	}
}

func TestTighten(t *testing.T) {
	tests := []struct {
		a, b, want types.BoundedSize
	}{
		{types.Bounded(0, 0), types.Bounded(640, 352), types.Bounded(640, 352)},
		{types.Bounded(500, 0), types.Bounded(640, 352), types.Bounded(500, 352)},
		{types.Bounded(900, 100), types.Bounded(640, 352), types.Bounded(640, 100)},
	}
	for _, tt := range tests {
		if got := tighten(tt.a, tt.b); got != tt.want {
			t.Errorf("tighten(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
