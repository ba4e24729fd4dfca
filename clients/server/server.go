// Package server provides the FilmBorders web UI and HTTP API.
package server

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/xob0t/FilmBorders/internal/logging"
	"github.com/xob0t/FilmBorders/pkg/render"
	"github.com/xob0t/FilmBorders/pkg/worker"
)

//go:embed web/*
var webContent embed.FS

// maxUpload bounds a multipart request body.
const maxUpload = 64 << 20

// Server holds the asset store and the shared preview worker.
type Server struct {
	assets   *assetManager
	renderer *render.Renderer
	preview  *previewer
	mux      *http.ServeMux
}

// Option configures a Server.
type Option func(*config)

type config struct {
	renderer *render.Renderer
	worker   []worker.Option
}

// WithRenderer renders full-size and export requests with r.
func WithRenderer(r *render.Renderer) Option {
	return func(c *config) { c.renderer = r }
}

// WithWorkerOptions configures the preview worker.
func WithWorkerOptions(opts ...worker.Option) Option {
	return func(c *config) { c.worker = append(c.worker, opts...) }
}

// New creates a Server. Call Close to stop its preview worker.
func New(opts ...Option) (*Server, error) {
	cfg := config{renderer: render.New()}
	for _, opt := range opts {
		opt(&cfg)
	}

	webFS, err := fs.Sub(webContent, "web")
	if err != nil {
		return nil, fmt.Errorf("embed web: %w", err)
	}

	s := &Server{
		assets:   newAssetManager(),
		renderer: cfg.renderer,
		preview:  newPreviewer(append([]worker.Option{worker.WithRenderer(cfg.renderer)}, cfg.worker...)...),
		mux:      http.NewServeMux(),
	}

	// API routes.
	s.mux.HandleFunc("POST /api/render", s.handleRender)
	s.mux.HandleFunc("POST /api/preview", s.handlePreview)
	s.mux.HandleFunc("POST /api/export/{format}", s.handleExport)
	s.mux.HandleFunc("GET /api/borders", s.handleBorders)
	s.mux.HandleFunc("GET /api/schema", s.handleSchema)
	s.mux.HandleFunc("POST /api/upload/border", s.handleUpload(kindBorder))
	s.mux.HandleFunc("POST /api/upload/image", s.handleUpload(kindImage))
	s.mux.HandleFunc("GET /api/assets/{id}", s.handleGetAsset)
	s.mux.HandleFunc("DELETE /api/assets/{id}", s.handleDeleteAsset)
	s.mux.HandleFunc("GET /api/assets", s.handleListAssets)

	// Static files.
	s.mux.Handle("/", http.FileServer(http.FS(webFS)))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close stops the preview worker. Previews still waiting are answered first.
func (s *Server) Close() {
	s.preview.close()
}

// RunServe starts the web UI server and blocks until interrupted.
func RunServe(args []string) error {
	fset := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fset.String("port", "8080", "listen port")
	fset.StringVar(port, "p", "8080", "listen port (shorthand)")
	noBrowser := fset.Bool("no-browser", false, "do not open a browser")
	verbose := fset.Bool("v", false, "log render stages")
	if err := fset.Parse(args); err != nil {
		return err
	}
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(logging.Text(os.Stderr, level))

	s, err := New()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + *port
	hs := &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	url := "http://localhost" + addr
	logging.Logger().Info("FilmBorders UI listening", "url", url)
	if !*noBrowser {
		go openBrowser(url)
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logging.Logger().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logging.Logger().Warn("open browser", "err", err)
	}
}
