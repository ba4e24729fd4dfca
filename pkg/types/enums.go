// enums.go — Rotation and FitMode, with tolerant text/JSON decoding.
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// ErrUnknownVariant is matched by every *EnumError.
var ErrUnknownVariant = errors.New("unknown enum variant")

// EnumError reports a value that names no variant of an enum.
type EnumError struct {
	Type  string
	Value string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("unknown %s variant %q", e.Type, e.Value)
}

func (e *EnumError) Unwrap() error { return ErrUnknownVariant }

// fold normalises an identifier for case-insensitive comparison.
// A Caser is stateful, so one is created per call.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// ── Rotation ──

// Rotation is a clockwise quarter-turn.
type Rotation uint8

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

var rotationNames = [...]string{"Rotate0", "Rotate90", "Rotate180", "Rotate270"}

// RotationFromDegrees accepts any multiple of 90, negative values included.
func RotationFromDegrees(deg int) (Rotation, error) {
	if deg%90 != 0 {
		return 0, &EnumError{Type: "rotation", Value: strconv.Itoa(deg)}
	}
	q := ((deg/90)%4 + 4) % 4
	return Rotation(q), nil
}

// ParseRotation accepts "90", "90deg", "rotate90" and "Rotate90" forms.
func ParseRotation(s string) (Rotation, error) {
	v := fold(s)
	v = strings.TrimPrefix(v, "rotate")
	v = strings.TrimSuffix(v, "deg")
	v = strings.TrimSuffix(v, "°")
	deg, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &EnumError{Type: "rotation", Value: s}
	}
	return RotationFromDegrees(deg)
}

// Quarters returns the number of clockwise quarter-turns (0..3).
func (r Rotation) Quarters() int { return int(r % 4) }

// Degrees returns the clockwise angle.
func (r Rotation) Degrees() int { return r.Quarters() * 90 }

// SwapsAxes reports whether the rotation exchanges width and height.
func (r Rotation) SwapsAxes() bool { return r.Quarters()%2 == 1 }

// Add composes two rotations.
func (r Rotation) Add(o Rotation) Rotation { return Rotation((r.Quarters() + o.Quarters()) % 4) }

func (r Rotation) String() string {
	if int(r) < len(rotationNames) {
		return rotationNames[r]
	}
	return fmt.Sprintf("Rotation(%d)", uint8(r))
}

// MarshalJSON encodes the variant name.
func (r Rotation) MarshalJSON() ([]byte, error) {
	if int(r) >= len(rotationNames) {
		return nil, &EnumError{Type: "rotation", Value: r.String()}
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts a variant name, a degree string, integer degrees
// (0, 90, 180, 270) or the enum index (0..3).
func (r *Rotation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParseRotation(s)
		if err != nil {
			return err
		}
		*r = v
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return &EnumError{Type: "rotation", Value: string(data)}
	}
	if n >= 0 && n < 4 {
		*r = Rotation(n)
		return nil
	}
	v, err := RotationFromDegrees(n)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ── FitMode ──

// FitMode selects which layer's aspect ratio drives implicit output sizing.
type FitMode uint8

const (
	// FitImage uses the cropped, rotated source image's aspect ratio.
	FitImage FitMode = iota
	// FitBorder uses the rotated border overlay's aspect ratio.
	FitBorder
)

// ParseFitMode accepts "image" or "border", ignoring case.
func ParseFitMode(s string) (FitMode, error) {
	switch fold(s) {
	case "image", "fitimage":
		return FitImage, nil
	case "border", "fitborder":
		return FitBorder, nil
	}
	return 0, &EnumError{Type: "fit mode", Value: s}
}

func (m FitMode) String() string {
	switch m {
	case FitImage:
		return "Image"
	case FitBorder:
		return "Border"
	default:
		return fmt.Sprintf("FitMode(%d)", uint8(m))
	}
}

// MarshalJSON encodes "Image" or "Border".
func (m FitMode) MarshalJSON() ([]byte, error) {
	if m > FitBorder {
		return nil, &EnumError{Type: "fit mode", Value: m.String()}
	}
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts the variant name or its index.
func (m *FitMode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParseFitMode(s)
		if err != nil {
			return err
		}
		*m = v
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil || n < 0 || n > int(FitBorder) {
		return &EnumError{Type: "fit mode", Value: string(data)}
	}
	*m = FitMode(n)
	return nil
}
