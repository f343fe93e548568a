package server

import (
	"net/http"
	"strings"
	"sync"
)

// IngestDispatcher routes /ingest/<path> to registered handlers.
// Handlers are registered by path segment (e.g. "raw" or "/raw").
type IngestDispatcher struct {
	mu       sync.RWMutex
	handlers map[string]http.Handler
}

// NewIngestDispatcher returns a new IngestDispatcher.
func NewIngestDispatcher() *IngestDispatcher {
	return &IngestDispatcher{
		handlers: make(map[string]http.Handler),
	}
}

func normalize(path string) string {
	path = strings.TrimSuffix(path, "/")
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	return path
}

// Mount registers a handler for the given path. A later mount on the same path wins.
func (d *IngestDispatcher) Mount(path string, h http.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[normalize(path)] = h
}

// Unmount removes the handler for path, if any.
func (d *IngestDispatcher) Unmount(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, normalize(path))
}

// ServeHTTP strips the /ingest prefix and dispatches to the registered handler.
func (d *IngestDispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := normalize(strings.TrimPrefix(r.URL.Path, "/ingest"))
	d.mu.RLock()
	h, ok := d.handlers[path]
	d.mu.RUnlock()
	if !ok {
		http.Error(w, "no input mounted at /ingest"+path, http.StatusNotFound)
		return
	}
	h.ServeHTTP(w, r)
}
