package httpinput

import (
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/akave-ai/akavelog-dash/internal/infrastructure/inputs"
)

const (
	maxLoggedBody = 2048
	maxBody       = 1 << 20
)

// Input is an HTTP ingest endpoint that writes request body to an InputBuffer.
type Input struct {
	path       string
	listenAddr string
	buffer     inputs.InputBuffer

	mu     sync.Mutex
	server *http.Server
}

// NewInput creates an HTTP input. listenAddr is optional; if set, Start() also binds to that address.
func NewInput(
	basePath string,
	description string,
	buffer inputs.InputBuffer,
	listenAddr string,
) *Input {
	basePath = "/" + strings.Trim(strings.TrimSpace(basePath), "/")
	desc := strings.TrimSpace(description)
	desc = strings.Trim(desc, "/")
	path := strings.TrimSuffix(basePath, "/") + "/" + desc
	return &Input{
		path:       path,
		listenAddr: listenAddr,
		buffer:     buffer,
	}
}

func (i *Input) Path() string { return i.path }

func (i *Input) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			w.Header().Set("Allow", "POST, PUT")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			http.Error(w, "read error", http.StatusBadRequest)
			return
		}
		if len(body) == 0 {
			http.Error(w, "empty body", http.StatusBadRequest)
			return
		}
		preview := string(body)
		if len(preview) > maxLoggedBody {
			preview = preview[:maxLoggedBody] + "..."
		}
		log.Printf("[ingest] %s received %d bytes: %s", i.path, len(body), preview)
		if err := i.buffer.Insert(body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})
}

func (i *Input) Start() error {
	if i.listenAddr == "" {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.server != nil {
		return nil
	}
	srv := &http.Server{
		Addr:    i.listenAddr,
		Handler: i.Handler(),
	}
	i.server = srv
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[ingest] listener %s: %v", i.listenAddr, err)
		}
	}()
	log.Printf("[ingest] listening on %s", i.listenAddr)
	return nil
}

func (i *Input) Stop() error {
	i.mu.Lock()
	srv := i.server
	i.server = nil
	i.mu.Unlock()
	if srv != nil {
		return srv.Close()
	}
	return nil
}
