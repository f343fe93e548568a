package inputs

import (
	"net/http"

	"github.com/akave-ai/akavelog-dash/internal/model"
)

// Factory creates a MessageInput from config and buffer.
// Each input type (http, syslog, etc.) implements and registers a Factory.
// ConfigSpec is what GET /inputs/types/:type serves.
type Factory interface {
	Name() string
	ConfigSpec() model.InputTypeInfo
	Create(cfg Config, buffer InputBuffer) (MessageInput, error)
}

// MessageInput is a running input instance.
type MessageInput interface {
	Start() error
	Stop() error
}

// HTTPEndpointInput is an input the server mounts under /ingest.
type HTTPEndpointInput interface {
	MessageInput
	Path() string
	Handler() http.Handler
}
