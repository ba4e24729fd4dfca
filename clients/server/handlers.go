// handlers.go — HTTP API handlers.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/xob0t/FilmBorders/internal/logging"
	"github.com/xob0t/FilmBorders/pkg/border"
	"github.com/xob0t/FilmBorders/pkg/generator"
	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/options"
	"github.com/xob0t/FilmBorders/pkg/preset"
	"github.com/xob0t/FilmBorders/pkg/render"
	"github.com/xob0t/FilmBorders/pkg/types"
	"github.com/xob0t/FilmBorders/pkg/worker"
)

// ── Request decoding ──

// badRequest marks a malformed request.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

// job is a decoded render request.
type job struct {
	source  *img.Image
	border  border.Source
	options options.Options
	text    string // options document after merging onto the defaults
}

// parseJob reads a multipart render request:
//
//	image    photo file, or image_id naming an uploaded image
//	border   border file, border_id naming an uploaded border, or builtin
//	options  options JSON; keys left out keep their defaults
func (s *Server) parseJob(r *http.Request) (job, error) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return job{}, &badRequest{"parse form: " + err.Error()}
	}

	var j job
	var err error
	if j.source, err = s.formImage(r, "image", "image_id", kindImage); err != nil {
		return job{}, err
	}
	if j.source == nil {
		return job{}, &badRequest{"no image uploaded"}
	}

	custom, err := s.formImage(r, "border", "border_id", kindBorder)
	switch {
	case err != nil:
		return job{}, err
	case custom != nil:
		j.border = border.Custom(custom)
	case r.FormValue("builtin") != "":
		n, err := border.ParseName(r.FormValue("builtin"))
		if err != nil {
			return job{}, err
		}
		j.border = border.Builtin(n)
	}

	doc, err := preset.Merge(json.RawMessage(options.Default().MustSerialize()), json.RawMessage(r.FormValue("options")))
	if err != nil {
		return job{}, &options.DecodeError{Err: err}
	}
	j.text = string(doc)
	if unknown, _ := options.UnknownKeys(j.text); len(unknown) > 0 {
		logging.Logger().Warn("unknown option keys ignored", "keys", unknown)
	}
	if j.options, err = options.Deserialize(j.text); err != nil {
		return job{}, err
	}
	return j, nil
}

// formImage decodes an uploaded file field, or looks up the asset named by
// idField. It returns nil when neither is present.
func (s *Server) formImage(r *http.Request, fileField, idField, kind string) (*img.Image, error) {
	file, _, err := r.FormFile(fileField)
	switch {
	case err == nil:
		defer file.Close()
		m, err := img.Decode(file)
		if err != nil {
			return nil, &badRequest{fileField + ": " + err.Error()}
		}
		return m, nil
	case !errors.Is(err, http.ErrMissingFile):
		return nil, &badRequest{fileField + ": " + err.Error()}
	}

	id := r.FormValue(idField)
	if id == "" {
		return nil, nil
	}
	a, ok := s.assets.lookup(id, kind)
	if !ok {
		return nil, &badRequest{fmt.Sprintf("%s: no %s asset %q", idField, kind, id)}
	}
	return a.Image, nil
}

// statusFor maps an engine or request error to an HTTP status.
func statusFor(err error) int {
	var br *badRequest
	switch {
	case errors.As(err, &br),
		errors.Is(err, options.ErrDecode),
		errors.Is(err, types.ErrUnsupportedColor),
		errors.Is(err, types.ErrUnknownVariant):
		return http.StatusBadRequest
	case errors.Is(err, render.ErrInvalidGeometry):
		return http.StatusUnprocessableEntity
	case errors.Is(err, worker.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, worker.ErrClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.Logger().Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		logging.Logger().Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger().Warn("write response", "err", err)
	}
}

func writePNG(w http.ResponseWriter, r *http.Request, m *img.Image) {
	var buf bytes.Buffer
	if err := generator.GenerateToWriter(&buf, ".png", generator.Config{Image: m}); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

// ── Render ──

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	j, err := s.parseJob(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.renderer.Render(j.source, j.border, j.options)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePNG(w, r, out)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	j, err := s.parseJob(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := s.preview.do(r.Context(), worker.Request{Source: j.source, Border: j.border, OptionsText: j.text})
	if err == nil {
		err = resp.Err
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("X-Render-Skipped", strconv.FormatBool(resp.Skipped))
	writePNG(w, r, resp.Result)
}

// ── Export ──

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.PathValue("format"))
	j, err := s.parseJob(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if format == strings.TrimPrefix(preset.Ext, ".") {
		if err := s.exportBundle(&buf, j); err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
	} else {
		if _, err := img.FormatFor(format); err != nil {
			writeError(w, r, &badRequest{err.Error()})
			return
		}
		out, err := s.renderer.Render(j.source, j.border, j.options)
		if err != nil {
			writeError(w, r, err)
			return
		}
		quality, _ := strconv.Atoi(r.FormValue("quality"))
		if err := generator.GenerateToWriter(&buf, format, generator.Config{Image: out, Quality: quality}); err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", http.DetectContentType(buf.Bytes()))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="output.%s"`, format))
	w.Write(buf.Bytes())
}

// exportBundle packs the request's options and border into a preset.
func (s *Server) exportBundle(w io.Writer, j job) error {
	p := &preset.Preset{
		Meta:    preset.Meta{Name: "exported", Version: "1", Author: "FilmBorders"},
		Options: json.RawMessage(j.options.MustSerialize()),
	}
	var custom *img.Image
	if n, ok := j.border.Name(); ok {
		p.Border.Builtin = n.String()
	} else if m, ok := j.border.Image(); ok {
		custom = m
	}
	return preset.WriteBundle(w, p, custom)
}

// ── Catalogue and schema ──

func (s *Server) handleBorders(w http.ResponseWriter, r *http.Request) {
	builtins, err := border.Catalog()
	if err != nil {
		writeError(w, r, err)
		return
	}
	uploaded := make([]assetInfo, 0)
	for _, a := range s.assets.list(kindBorder) {
		uploaded = append(uploaded, describe(a))
	}
	writeJSON(w, map[string]any{"builtin": builtins, "uploaded": uploaded})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, preset.FormatSchema())
}

// ── Upload ──

func (s *Server) handleUpload(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			writeError(w, r, &badRequest{"parse form: " + err.Error()})
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, &badRequest{"no file"})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("read upload: %w", err))
			return
		}
		a, err := s.assets.add(header.Filename, kind, data)
		if err != nil {
			writeError(w, r, &badRequest{header.Filename + ": " + err.Error()})
			return
		}
		logging.Logger().Info("asset uploaded", "id", a.ID, "kind", kind, "name", a.Name, "size", a.Image.Size().String())
		writeJSON(w, describe(a))
	}
}

func describe(a *asset) assetInfo {
	info := assetInfo{
		ID:    a.ID,
		Name:  a.Name,
		Kind:  a.Kind,
		Mime:  a.Mime,
		Bytes: len(a.Data),
		Size:  a.Image.Size(),
		URL:   "/api/assets/" + a.ID,
	}
	if a.Kind == kindBorder {
		if win, ok := border.Window(a.Image, border.DefaultAnalysis()); ok {
			info.Window = &win
		}
	}
	return info
}

// ── Asset serving ──

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := s.assets.get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", a.Mime)
	w.Write(a.Data)
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	out := make([]assetInfo, 0)
	for _, a := range s.assets.list(r.URL.Query().Get("kind")) {
		out = append(out, describe(a))
	}
	writeJSON(w, out)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.assets.remove(id) {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]string{"status": "deleted", "id": id})
}
