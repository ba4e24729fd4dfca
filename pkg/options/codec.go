// codec.go — JSON wire format with field-level decode errors.
package options

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"slices"
	"strings"
)

var (
	// ErrDecode is matched by every *DecodeError.
	ErrDecode = errors.New("decode options")
	// ErrMissingField marks a required key that is absent or null.
	ErrMissingField = errors.New("missing required field")
)

// DecodeError reports malformed options text. Field is empty when the
// document as a whole could not be parsed.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode options: %v", e.Err)
	}
	return fmt.Sprintf("decode options: field %q: %v", e.Field, e.Err)
}

// Unwrap exposes both ErrDecode and the underlying cause.
func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// Serialize encodes o as a JSON object. Unset optional fields are omitted.
func (o Options) Serialize() (string, error) {
	out, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("serialize options: %w", err)
	}
	return string(out), nil
}

// MustSerialize is Serialize for values known to be finite.
func (o Options) MustSerialize() string {
	s, err := o.Serialize()
	if err != nil {
		panic(err)
	}
	return s
}

// Deserialize parses options text. Unknown keys are ignored so that newer
// documents still load; required keys that are absent or null fail with a
// *DecodeError naming the field.
func Deserialize(text string) (Options, error) {
	raw, err := decodeObject(text)
	if err != nil {
		return Options{}, err
	}

	var o Options
	targets := map[string]any{
		"output_size":        &o.OutputSize,
		"output_size_bounds": &o.OutputSizeBounds,
		"scale_factor":       &o.ScaleFactor,
		"margin":             &o.Margin,
		"mode":               &o.Mode,
		"crop":               &o.Crop,
		"frame_width":        &o.FrameWidth,
		"image_rotation":     &o.ImageRotation,
		"border_rotation":    &o.BorderRotation,
		"frame_color":        &o.FrameColor,
		"background_color":   &o.BackgroundColor,
		"preview":            &o.Preview,
	}
	for _, f := range Fields() {
		v, ok := raw[f.Key]
		if !ok || isNull(v) {
			if f.Required {
				return Options{}, &DecodeError{Field: f.Key, Err: ErrMissingField}
			}
			continue
		}
		if err := json.Unmarshal(v, targets[f.Key]); err != nil {
			return Options{}, &DecodeError{Field: f.Key, Err: err}
		}
	}
	o.OutputSize = o.OutputSize.Normalize()
	o.OutputSizeBounds = o.OutputSizeBounds.Normalize()
	return o, nil
}

// UnknownKeys returns the top-level keys of text that Options does not
// define, sorted.
func UnknownKeys(text string) ([]string, error) {
	raw, err := decodeObject(text)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool)
	for _, f := range Fields() {
		known[f.Key] = true
	}
	var unknown []string
	for k := range raw {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	slices.Sort(unknown)
	return unknown, nil
}

// Hash fingerprints o by its canonical serialisation. Equal options hash
// equally; a nil crop hashes like an all-zero one.
func (o Options) Hash() uint64 {
	if o.Crop != nil && o.Crop.IsZero() {
		o.Crop = nil
	}
	h := fnv.New64a()
	s, err := o.Serialize()
	if err != nil {
		// NaN and Inf cannot be encoded; fall back to the Go syntax form
		// with the pointers replaced by their values.
		crop, bg, hasBg := o.CropSides(), o.Background(), o.BackgroundColor != nil
		o.Crop, o.BackgroundColor = nil, nil
		s = fmt.Sprintf("%#v|%#v|%#v|%v", o, crop, bg, hasBg)
	}
	h.Write([]byte(s))
	return h.Sum64()
}

func decodeObject(text string) (map[string]json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &DecodeError{Err: errors.New("empty document")}
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if raw == nil {
		return nil, &DecodeError{Err: errors.New("document is null")}
	}
	return raw, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
