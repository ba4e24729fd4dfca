// Package termimg shows images inline in terminals that speak the iTerm2
// image protocol, and sizes previews to the terminal window.
package termimg

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/types"
)

// Cell is the assumed pixel size of one character cell.
var Cell = types.Sz(8, 16)

// IsCompatible reports whether stdout is a terminal known to render inline
// images.
func IsCompatible() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm":
		return true
	}
	return false
}

// Image writes m as an inline PNG image escape sequence.
func Image(w io.Writer, m *img.Image) error {
	if _, err := io.WriteString(w, "\x1b]1337;File=inline=1;preserveAspectRatio=1:"); err != nil {
		return err
	}
	enc := base64.NewEncoder(base64.StdEncoding, w)
	if err := img.Encode(enc, m, img.PNG, 0); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\x07\n")
	return err
}

// Bounds returns the pixel bounds of a terminal of cols x rows cells,
// keeping reserve rows free for the prompt.
func Bounds(cols, rows, reserve int) types.BoundedSize {
	rows = max(rows-reserve, 1)
	return types.Bounded(max(cols, 1)*Cell.Width, rows*Cell.Height)
}

// WindowBounds sizes a preview to the terminal on f.
func WindowBounds(f *os.File) (types.BoundedSize, error) {
	cols, rows, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return types.BoundedSize{}, fmt.Errorf("terminal size: %w", err)
	}
	return Bounds(cols, rows, 2), nil
}
