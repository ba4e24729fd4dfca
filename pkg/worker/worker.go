// Package worker schedules renders for an interactive host. It keeps one
// render in flight and one request waiting; a newer request replaces the
// waiting one, which is answered with ErrSuperseded and never rendered.
package worker

import (
	"errors"
	"sync"
	"time"

	"github.com/xob0t/FilmBorders/internal/logging"
	"github.com/xob0t/FilmBorders/pkg/border"
	"github.com/xob0t/FilmBorders/pkg/img"
	"github.com/xob0t/FilmBorders/pkg/options"
	"github.com/xob0t/FilmBorders/pkg/render"
)

var (
	// ErrSuperseded answers a request replaced before it was dispatched.
	ErrSuperseded = errors.New("worker: request superseded")
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("worker: closed")
)

// Request asks for one render. OptionsText is the serialised Options.
type Request struct {
	ID          uint64
	Source      *img.Image
	Border      border.Source
	OptionsText string
}

// Response answers exactly one Request. Skipped is set when the request
// matched the previous completed render and Result was taken from it;
// Result may then be shared between responses and must not be modified.
type Response struct {
	ID      uint64
	Result  *img.Image
	Err     error
	Skipped bool
}

// RenderFunc performs one render.
type RenderFunc func(*img.Image, border.Source, options.Options) (*img.Image, error)

type config struct {
	render RenderFunc
	buffer int
}

// Option configures a Worker.
type Option func(*config)

// WithRenderFunc replaces the render function, render.Render by default.
func WithRenderFunc(f RenderFunc) Option {
	return func(c *config) {
		if f != nil {
			c.render = f
		}
	}
}

// WithRenderer renders with r.
func WithRenderer(r *render.Renderer) Option {
	return WithRenderFunc(r.Render)
}

// WithBuffer sets the capacity of the Responses channel.
func WithBuffer(n int) Option {
	return func(c *config) { c.buffer = max(n, 0) }
}

// cacheKey identifies a render by its options and input identity.
type cacheKey struct {
	options uint64
	source  *img.Image
	border  border.Source
}

// Worker is a single-slot, latest-wins render mailbox.
type Worker struct {
	render RenderFunc

	mu      sync.Mutex
	pending *Request
	dropped []uint64
	closed  bool

	wake chan struct{}
	quit chan struct{}
	out  chan Response
	done chan struct{}

	// owned by the run goroutine
	lastKey    cacheKey
	lastResult *img.Image
}

// New starts a worker goroutine. Callers must read Responses until it is
// closed, and call Close when done.
func New(opts ...Option) *Worker {
	cfg := config{render: render.Render, buffer: 4}
	for _, opt := range opts {
		opt(&cfg)
	}
	w := &Worker{
		render: cfg.render,
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		out:    make(chan Response, cfg.buffer),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit queues r, replacing any request that is still waiting. It never
// blocks on a render in progress.
func (w *Worker) Submit(r Request) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.pending != nil {
		w.dropped = append(w.dropped, w.pending.ID)
		logging.Logger().Debug("worker request superseded", "id", w.pending.ID, "by", r.ID)
	}
	w.pending = &r
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}

// Responses delivers one Response per submitted request. It is closed after
// Close has drained the mailbox.
func (w *Worker) Responses() <-chan Response { return w.out }

// Close stops accepting requests, finishes the waiting one and waits for the
// goroutine to exit. A render in flight is not interrupted.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.mu.Unlock()
	close(w.quit)
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)
	defer close(w.out)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.quit:
			w.drain()
			return
		}
	}
}

// drain answers superseded requests, then renders the waiting one, until
// the mailbox is empty.
func (w *Worker) drain() {
	for {
		w.mu.Lock()
		dropped, req := w.dropped, w.pending
		w.dropped, w.pending = nil, nil
		w.mu.Unlock()

		for _, id := range dropped {
			w.out <- Response{ID: id, Err: ErrSuperseded}
		}
		if req == nil {
			return
		}
		w.out <- w.process(*req)
	}
}

func (w *Worker) process(req Request) Response {
	log := logging.Logger()
	o, err := options.Deserialize(req.OptionsText)
	if err != nil {
		log.Warn("worker options rejected", "id", req.ID, "err", err)
		return Response{ID: req.ID, Err: err}
	}

	key := cacheKey{options: o.Hash(), source: req.Source, border: req.Border}
	if w.lastResult != nil && key == w.lastKey {
		log.Debug("worker render skipped", "id", req.ID)
		return Response{ID: req.ID, Result: w.lastResult, Skipped: true}
	}

	start := time.Now()
	result, err := w.render(req.Source, req.Border, o)
	if err != nil {
		log.Warn("worker render failed", "id", req.ID, "err", err)
		return Response{ID: req.ID, Err: err}
	}
	w.lastKey, w.lastResult = key, result
	log.Debug("worker render done", "id", req.ID, "elapsed", time.Since(start))
	return Response{ID: req.ID, Result: result}
}
