package termimg

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/types"
)

func TestImageEnvelope(t *testing.T) {
	m := img.Fill(types.Sz(3, 2), types.RGB(1, 2, 3))
	var buf bytes.Buffer
	if err := Image(&buf, m); err != nil {
		t.Fatal(err)
	}
	s := buf.String()
	const prefix = "\x1b]1337;File=inline=1;preserveAspectRatio=1:"
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, "\x07\n") {
		t.Fatalf("bad envelope %q", s)
	}
	payload := strings.TrimSuffix(strings.TrimPrefix(s, prefix), "\x07\n")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatal(err)
	}
	got, err := img.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(m) {
		t.Errorf("round trip = %v, want %v", got, m)
	}
}

func TestBounds(t *testing.T) {
	tests := []struct {
		cols, rows, reserve int
		want                types.BoundedSize
	}{
		{80, 24, 2, types.Bounded(640, 352)},
		{100, 1, 2, types.Bounded(800, 16)},
		{0, 0, 0, types.Bounded(8, 16)},
	}
	for _, tt := range tests {
		if got := Bounds(tt.cols, tt.rows, tt.reserve); got != tt.want {
			t.Errorf("Bounds(%d, %d, %d) = %v, want %v", tt.cols, tt.rows, tt.reserve, got, tt.want)
		}
	}
}
