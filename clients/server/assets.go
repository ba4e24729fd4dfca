// assets.go — in-memory store for uploaded photos and borders.
package server

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"mime"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/types"
)

// Asset kinds.
const (
	kindBorder = "border"
	kindImage  = "image"
)

type asset struct {
	ID    string
	Name  string
	Kind  string
	Mime  string
	Data  []byte
	Image *img.Image // decoded once at upload; shared, never modified
}

// assetInfo is the JSON listing form of an asset.
type assetInfo struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Kind   string      `json:"kind"`
	Mime   string      `json:"mime"`
	Bytes  int         `json:"bytes"`
	Size   types.Size  `json:"size"`
	Window *types.Rect `json:"window,omitempty"`
	URL    string      `json:"url"`
}

type assetManager struct {
	mu     sync.RWMutex
	assets map[string]*asset
}

func newAssetManager() *assetManager {
	return &assetManager{assets: make(map[string]*asset)}
}

// add decodes data and stores it. Undecodable uploads are rejected.
func (am *assetManager) add(name, kind string, data []byte) (*asset, error) {
	m, err := img.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	a := &asset{ID: randomID(), Name: name, Kind: kind, Mime: mimeType, Data: data, Image: m}
	am.mu.Lock()
	am.assets[a.ID] = a
	am.mu.Unlock()
	return a, nil
}

func (am *assetManager) get(id string) (*asset, bool) {
	am.mu.RLock()
	a, ok := am.assets[id]
	am.mu.RUnlock()
	return a, ok
}

// lookup returns the asset id when it has the given kind.
func (am *assetManager) lookup(id, kind string) (*asset, bool) {
	a, ok := am.get(id)
	if !ok || a.Kind != kind {
		return nil, false
	}
	return a, true
}

// list returns assets of kind, or all of them for "", sorted by name.
func (am *assetManager) list(kind string) []*asset {
	am.mu.RLock()
	out := make([]*asset, 0, len(am.assets))
	for _, a := range am.assets {
		if kind == "" || a.Kind == kind {
			out = append(out, a)
		}
	}
	am.mu.RUnlock()
	slices.SortFunc(out, func(a, b *asset) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (am *assetManager) remove(id string) bool {
	am.mu.Lock()
	defer am.mu.Unlock()
	if _, ok := am.assets[id]; !ok {
		return false
	}
	delete(am.assets, id)
	return true
}

func randomID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
