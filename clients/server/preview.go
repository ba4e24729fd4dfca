// preview.go — routes worker responses back to the waiting HTTP handlers.
package server

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/xob0t/FilmBorders/pkg/worker"
)

// previewer shares one latest-wins worker between all preview requests.
// A request overtaken by a newer one before it starts is answered with
// worker.ErrSuperseded.
type previewer struct {
	w      *worker.Worker
	nextID atomic.Uint64

	mu      sync.Mutex
	waiting map[uint64]chan worker.Response

	done chan struct{}
}

func newPreviewer(opts ...worker.Option) *previewer {
	p := &previewer{
		w:       worker.New(opts...),
		waiting: make(map[uint64]chan worker.Response),
		done:    make(chan struct{}),
	}
	go p.dispatch()
	return p
}

func (p *previewer) dispatch() {
	defer close(p.done)
	for resp := range p.w.Responses() {
		p.mu.Lock()
		ch, ok := p.waiting[resp.ID]
		delete(p.waiting, resp.ID)
		p.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

// do submits req under a fresh ID and waits for its response.
func (p *previewer) do(ctx context.Context, req worker.Request) (worker.Response, error) {
	req.ID = p.nextID.Add(1)
	ch := make(chan worker.Response, 1)

	p.mu.Lock()
	p.waiting[req.ID] = ch
	err := p.w.Submit(req)
	if err != nil {
		delete(p.waiting, req.ID)
	}
	p.mu.Unlock()
	if err != nil {
		return worker.Response{}, err
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		p.mu.Lock()
		delete(p.waiting, req.ID)
		p.mu.Unlock()
		return worker.Response{}, ctx.Err()
	}
}

// inFlight counts submitted requests still waiting for a response.
func (p *previewer) inFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.waiting)
}

func (p *previewer) close() {
	p.w.Close()
	<-p.done
}
