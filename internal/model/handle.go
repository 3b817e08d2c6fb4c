package model

import (
	"context"
	"log"
	"sync"

	"github.com/owlvision/owlvision-mcp/internal/detect"
)

// Handle owns the process-wide model. Loading is lazy and explicit: every
// component calls EnsureLoaded before use, the first success is cached for
// the process lifetime, and a failed load leaves the handle unloaded so the
// next action retries. Access is serialized; the backend is not assumed to be
// re-entrant.
type Handle struct {
	mu     sync.Mutex
	client *Client
	proc   *Processor
	loaded bool
}

// NewHandle builds a handle for modelName served by the backend at baseURL.
// Nothing is loaded until the first EnsureLoaded call.
func NewHandle(baseURL, modelName string, maxEdge int) *Handle {
	client := NewClient(baseURL, modelName)
	return &Handle{
		client: client,
		proc:   &Processor{ModelName: client.ModelName, MaxEdge: maxEdge},
	}
}

// EnsureLoaded returns the model and processor, loading the model on first
// use. Concurrent callers block until the load settles.
func (h *Handle) EnsureLoaded(ctx context.Context) (detect.Model, detect.Processor, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.loaded {
		log.Printf("model: loading %q via %s", h.client.ModelName, h.client.BaseURL)
		if err := h.client.Load(ctx); err != nil {
			return nil, nil, err
		}
		h.loaded = true
		log.Printf("model: %q ready", h.client.ModelName)
	}
	return h.client, h.proc, nil
}

// ModelName returns the name of the model this handle serves.
func (h *Handle) ModelName() string {
	return h.client.ModelName
}
