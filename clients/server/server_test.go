package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xob0t/FilmBorders/pkg/border"
	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/options"
	"github.com/xob0t/FilmBorders/pkg/preset"
	"github.com/xob0t/FilmBorders/pkg/types"
	"github.com/xob0t/FilmBorders/pkg/worker"
)

func newServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	s, err := New(opts...)
	require.NoError(t, err)
	return s
}

func pngBytes(t *testing.T, m *img.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, img.Encode(&buf, m, img.PNG, 0))
	return buf.Bytes()
}

// form builds a multipart request body from image files and text fields.
func form(t *testing.T, files map[string]*img.Image, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, m := range files {
		fw, err := mw.CreateFormFile(name, name+".png")
		require.NoError(t, err)
		_, err = fw.Write(pngBytes(t, m))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func post(t *testing.T, s *Server, path string, files map[string]*img.Image, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, ctype := form(t, files, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func get(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func decodePNG(t *testing.T, rec *httptest.ResponseRecorder) *img.Image {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	m, err := img.Decode(rec.Body)
	require.NoError(t, err)
	return m
}

func TestRender(t *testing.T) {
	defer leaktest.Check(t)()
	s := newServer(t)
	defer s.Close()

	photo := img.Fill(types.Sz(30, 20), types.White())
	rec := post(t, s, "/api/render",
		map[string]*img.Image{"image": photo},
		map[string]string{"options": `{"margin":0.1,"background_color":"#ff0000"}`})

	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	out := decodePNG(t, rec)
	assert.Equal(t, types.Sz(30, 20), out.Size())
	assert.Equal(t, types.RGB(255, 0, 0), types.FromColor(out.At(0, 0)))
	assert.Equal(t, types.White(), types.FromColor(out.At(15, 10)))
}

func TestRenderBuiltin(t *testing.T) {
	defer leaktest.Check(t)()
	s := newServer(t)
	defer s.Close()

	rec := post(t, s, "/api/render",
		map[string]*img.Image{"image": img.Fill(types.Sz(60, 40), types.White())},
		map[string]string{"builtin": "35mm", "options": `{"mode":"Border","output_size":{"width":312}}`})
	out := decodePNG(t, rec)
	assert.Equal(t, types.Sz(312, 240), out.Size())
}

func TestRenderErrors(t *testing.T) {
	defer leaktest.Check(t)()
	s := newServer(t)
	defer s.Close()
	photo := map[string]*img.Image{"image": img.Fill(types.Sz(30, 20), types.White())}

	tests := []struct {
		name   string
		files  map[string]*img.Image
		fields map[string]string
		status int
	}{
		{"no image", nil, nil, http.StatusBadRequest},
		{"malformed options", photo, map[string]string{"options": "{"}, http.StatusBadRequest},
		{"bad colour", photo, map[string]string{"options": `{"frame_color":"#zzzzzz"}`}, http.StatusBadRequest},
		{"bad mode", photo, map[string]string{"options": `{"mode":"Sideways"}`}, http.StatusBadRequest},
		{"unknown builtin", photo, map[string]string{"builtin": "super8"}, http.StatusBadRequest},
		{"unknown asset", photo, map[string]string{"border_id": "nope"}, http.StatusBadRequest},
		{"no interior", photo, map[string]string{"options": `{"margin":0.5}`}, http.StatusUnprocessableEntity},
		{"zero scale", photo, map[string]string{"options": `{"scale_factor":0}`}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, "/api/render", tt.files, tt.fields)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

// gate holds each render until released.
type gate struct {
	started chan types.Size
	release chan struct{}
}

func (g *gate) render(src *img.Image, _ border.Source, _ options.Options) (*img.Image, error) {
	g.started <- src.Size()
	<-g.release
	return img.Fill(src.Size(), types.Black()), nil
}

func TestPreviewSuperseded(t *testing.T) {
	defer leaktest.Check(t)()
	g := &gate{started: make(chan types.Size, 4), release: make(chan struct{})}
	s := newServer(t, WithWorkerOptions(worker.WithRenderFunc(g.render)))
	defer s.Close()

	codes := make([]int, 3)
	var wg sync.WaitGroup
	submit := func(i int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			photo := img.Fill(types.Sz(10+i, 10), types.White())
			codes[i] = post(t, s, "/api/preview", map[string]*img.Image{"image": photo}, nil).Code
		}()
	}

	submit(0)
	require.Equal(t, types.Sz(10, 10), <-g.started)
	submit(1)
	require.Eventually(t, func() bool { return s.preview.inFlight() == 2 }, 5*time.Second, time.Millisecond)
	submit(2)
	require.Eventually(t, func() bool { return s.preview.inFlight() == 3 }, 5*time.Second, time.Millisecond)

	g.release <- struct{}{}
	require.Equal(t, types.Sz(12, 10), <-g.started)
	g.release <- struct{}{}
	wg.Wait()

	assert.Equal(t, []int{http.StatusOK, http.StatusConflict, http.StatusOK}, codes)
}

func TestPreviewSkipsRepeat(t *testing.T) {
	defer leaktest.Check(t)()
	s := newServer(t)
	defer s.Close()

	photo := img.Fill(types.Sz(16, 16), types.White())
	up := post(t, s, "/api/upload/image", map[string]*img.Image{"file": photo}, nil)
	require.Equal(t, http.StatusOK, up.Code, up.Body.String())
	var info assetInfo
	require.NoError(t, json.NewDecoder(up.Body).Decode(&info))

	fields := map[string]string{"image_id": info.ID, "options": `{"margin":0.1}`}
	first := post(t, s, "/api/preview", nil, fields)
	decodePNG(t, first)
	assert.Equal(t, "false", first.Header().Get("X-Render-Skipped"))

	second := post(t, s, "/api/preview", nil, fields)
	decodePNG(t, second)
	assert.Equal(t, "true", second.Header().Get("X-Render-Skipped"))
}

func TestUploadBorder(t *testing.T) {
	defer leaktest.Check(t)()
	s := newServer(t)
	defer s.Close()

	frame := img.Fill(types.Sz(40, 40), types.Black())
	for y := 5; y < 35; y++ {
		for x := 5; x < 35; x++ {
			frame.SetPix(x, y, types.Clear())
		}
	}
	rec := post(t, s, "/api/upload/border", map[string]*img.Image{"file": frame}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var info assetInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, kindBorder, info.Kind)
	assert.Equal(t, types.Sz(40, 40), info.Size)
	require.NotNil(t, info.Window)
	assert.Equal(t, types.Rect{Top: 5, Left: 5, Bottom: 35, Right: 35}, *info.Window)

	// the uploaded border frames the render
	out := decodePNG(t, post(t, s, "/api/render",
		map[string]*img.Image{"image": img.Fill(types.Sz(40, 40), types.White())},
		map[string]string{"border_id": info.ID}))
	assert.Equal(t, types.Black(), types.FromColor(out.At(1, 1)))
	assert.Equal(t, types.White(), types.FromColor(out.At(20, 20)))

	// a border id is not a photo
	bad := post(t, s, "/api/render", nil, map[string]string{"image_id": info.ID})
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	list := get(s, http.MethodGet, "/api/borders")
	require.Equal(t, http.StatusOK, list.Code)
	var borders struct {
		Builtin  []border.Info `json:"builtin"`
		Uploaded []assetInfo   `json:"uploaded"`
	}
	require.NoError(t, json.NewDecoder(list.Body).Decode(&borders))
	assert.Len(t, borders.Builtin, len(border.Names()))
	require.Len(t, borders.Uploaded, 1)
	assert.Equal(t, info.ID, borders.Uploaded[0].ID)
}

func TestUploadRejectsGarbage(t *testing.T) {
	defer leaktest.Check(t)()
	s := newServer(t)
	defer s.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	fw.Write([]byte("not an image"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/border", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, s.assets.list(""))
}

func TestAssetLifecycle(t *testing.T) {
	defer leaktest.Check(t)()
	s := newServer(t)
	defer s.Close()

	photo := img.Fill(types.Sz(3, 3), types.Gray())
	rec := post(t, s, "/api/upload/image", map[string]*img.Image{"file": photo}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var info assetInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))

	got := get(s, http.MethodGet, info.URL)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, "image/png", got.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes(t, photo), got.Body.Bytes())

	var listed []assetInfo
	require.NoError(t, json.NewDecoder(get(s, http.MethodGet, "/api/assets").Body).Decode(&listed))
	require.Len(t, listed, 1)
	require.NoError(t, json.NewDecoder(get(s, http.MethodGet, "/api/assets?kind=border").Body).Decode(&listed))
	assert.Empty(t, listed)

	assert.Equal(t, http.StatusOK, get(s, http.MethodDelete, info.URL).Code)
	assert.Equal(t, http.StatusNotFound, get(s, http.MethodDelete, info.URL).Code)
	assert.Equal(t, http.StatusNotFound, get(s, http.MethodGet, info.URL).Code)
}

func TestExport(t *testing.T) {
	defer leaktest.Check(t)()
	s := newServer(t)
	defer s.Close()
	photo := map[string]*img.Image{"image": img.Fill(types.Sz(20, 20), types.White())}

	rec := post(t, s, "/api/export/jpg", photo, map[string]string{"quality": "80"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="output.jpg"`)

	rec = post(t, s, "/api/export/avi", photo, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, s, "/api/export/fbpreset", photo, map[string]string{"builtin": "120mm", "options": `{"margin":0.2}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	path := filepath.Join(t.TempDir(), "look"+preset.Ext)
	require.NoError(t, os.WriteFile(path, rec.Body.Bytes(), 0o644))

	p, cleanup, err := preset.Load(path)
	require.NoError(t, err)
	defer cleanup()
	o, src, err := p.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 0.2, o.Margin)
	n, ok := src.Name()
	assert.True(t, ok)
	assert.Equal(t, border.Border120_1, n)
}

func TestSchemaAndUI(t *testing.T) {
	defer leaktest.Check(t)()
	s := newServer(t)
	defer s.Close()

	rec := get(s, http.MethodGet, "/api/schema")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "frame_width")

	rec = get(s, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "/api/preview"))
}
