// merge.go — Merge option overrides onto preset options.
package preset

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Merge deep-merges override onto base. Objects merge key-wise; any other
// value in override, null included, replaces the base value. Either document
// may be empty; a top-level null override is the same as none.
func Merge(base, override json.RawMessage) (json.RawMessage, error) {
	if blank(override) {
		return base, nil
	}
	if blank(base) {
		return override, nil
	}

	var b, o any
	if err := json.Unmarshal(base, &b); err != nil {
		return nil, fmt.Errorf("merge base: %w", err)
	}
	if err := json.Unmarshal(override, &o); err != nil {
		return nil, fmt.Errorf("merge override: %w", err)
	}
	out, err := json.Marshal(mergeValue(b, o))
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return out, nil
}

func mergeValue(base, over any) any {
	bm, ok := base.(map[string]any)
	if !ok {
		return over
	}
	om, ok := over.(map[string]any)
	if !ok {
		return over
	}
	for k, v := range om {
		if cur, exists := bm[k]; exists {
			bm[k] = mergeValue(cur, v)
		} else {
			bm[k] = v
		}
	}
	return bm
}

func blank(doc json.RawMessage) bool {
	doc = bytes.TrimSpace(doc)
	return len(doc) == 0 || bytes.Equal(doc, []byte("null"))
}
