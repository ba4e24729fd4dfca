// analysis.go — locating the transparent windows of a border.
package border

import (
	"cmp"
	"math"
	"slices"

	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/types"
)

// Analysis tunes TransparentComponents.
type Analysis struct {
	// AlphaThreshold is the alpha fraction (0..1) below which a pixel
	// counts as transparent.
	AlphaThreshold float64
	// MergeDistance joins components separated by at most this many pixels.
	MergeDistance int
}

// DefaultAnalysis matches borders exported with soft anti-aliased windows.
func DefaultAnalysis() Analysis {
	return Analysis{AlphaThreshold: 0.95, MergeDistance: 8}
}

// TransparentComponents returns the bounding boxes of the transparent
// regions of m, largest first.
func TransparentComponents(m *img.Image, a Analysis) []types.Rect {
	if m.IsEmpty() {
		return nil
	}
	limit := uint8(math.Min(math.Max(a.AlphaThreshold*255, 0), 255))
	dist := max(a.MergeDistance, 0)
	w, h := m.Width(), m.Height()
	data := m.Data()

	var comps []types.Rect
	for y := 0; y < h; y++ {
		row := data[y*w*4 : (y+1)*w*4]
		for x := 0; x < w; {
			if row[x*4+3] >= limit {
				x++
				continue
			}
			start := x
			for x < w && row[x*4+3] < limit {
				x++
			}
			comps = absorb(comps, types.Rect{Top: y, Left: start, Bottom: y + 1, Right: x}, dist)
		}
	}

	slices.SortFunc(comps, func(p, q types.Rect) int {
		if c := cmp.Compare(q.Size().Area(), p.Size().Area()); c != 0 {
			return c
		}
		if c := cmp.Compare(p.Top, q.Top); c != 0 {
			return c
		}
		return cmp.Compare(p.Left, q.Left)
	})
	return comps
}

// Window returns the largest transparent component of m.
func Window(m *img.Image, a Analysis) (types.Rect, bool) {
	comps := TransparentComponents(m, a)
	if len(comps) == 0 {
		return types.Rect{}, false
	}
	return comps[0], true
}

// absorb merges run into every component within dist of it, repeating until
// the merged box no longer reaches another component.
func absorb(comps []types.Rect, run types.Rect, dist int) []types.Rect {
	merged := run
	for {
		i := slices.IndexFunc(comps, func(c types.Rect) bool { return near(c, merged, dist) })
		if i < 0 {
			break
		}
		merged = merged.Union(comps[i])
		comps = slices.Delete(comps, i, i+1)
	}
	return append(comps, merged)
}

func near(a, b types.Rect, dist int) bool {
	dx := max(b.Left-a.Right, a.Left-b.Right, 0)
	dy := max(b.Top-a.Bottom, a.Top-b.Bottom, 0)
	return dx <= dist && dy <= dist
}
