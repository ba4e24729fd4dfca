package render

import (
	"errors"
	"fmt"

	"github.com/xob0t/FilmBorders/pkg/types"
)

// ErrInvalidGeometry is matched by every *GeometryError.
var ErrInvalidGeometry = errors.New("invalid geometry")

// GeometryError reports inputs whose geometry leaves nothing to draw, such
// as an empty source or an interior swallowed by margin and frame.
type GeometryError struct {
	What string
	Size types.Size
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("invalid geometry: %s (%v)", e.What, e.Size)
}

func (e *GeometryError) Unwrap() error { return ErrInvalidGeometry }

// Stage names a step of the pipeline.
type Stage string

const (
	StageCrop    Stage = "crop"
	StageRotate  Stage = "rotate image"
	StageBorder  Stage = "border"
	StageSize    Stage = "resolve size"
	StageLayout  Stage = "layout"
	StageScale   Stage = "scale content"
	StageCompose Stage = "compose"
	StageOverlay Stage = "overlay border"
)

// RenderError wraps a failure with the stage that produced it.
type RenderError struct {
	Stage Stage
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func stageErr(s Stage, err error) error {
	return &RenderError{Stage: s, Err: err}
}
