package httpinput

import (
	"fmt"
	"strings"

	"github.com/akave-ai/akavelog-dash/internal/infrastructure/inputs"
	"github.com/akave-ai/akavelog-dash/internal/model"
)

func init() {
	inputs.GlobalRegistry.Register(&Factory{})
}

// Factory creates HTTP ingest inputs. Registers as "http".
type Factory struct{}

func (f *Factory) Name() string {
	return "http"
}

func (f *Factory) ConfigSpec() model.InputTypeInfo {
	return model.InputTypeInfo{
		Type:        "http",
		Description: "HTTP ingest endpoint. Accepts POST body and writes to the log buffer. Can be mounted on the main server or bound to an external port.",
		Fields: []model.ConfigField{
			{Name: "description", Type: "string", Required: true, Description: "Path segment for the endpoint (e.g. 'raw' → /ingest/raw)", Example: "raw"},
			{Name: "base_path", Type: "string", Required: false, Description: "Base path prefix", Example: "/ingest"},
			{Name: "listen", Type: "string", Required: false, Description: "Optional host:port to also bind (e.g. :9001 or 0.0.0.0:9001).", Example: ":9001"},
		},
	}
}

// ValidateConfig rejects a missing or malformed path segment before anything is persisted.
func (f *Factory) ValidateConfig(cfg inputs.Config) error {
	description := strings.Trim(cfg.String("description"), "/")
	if description == "" {
		return fmt.Errorf("missing 'description' for http input")
	}
	if strings.ContainsAny(description, " ?#") {
		return fmt.Errorf("invalid 'description' %q: must be a URL path segment", description)
	}
	return nil
}

func (f *Factory) Create(cfg inputs.Config, buffer inputs.InputBuffer) (inputs.MessageInput, error) {
	if err := f.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	basePath := cfg.String("base_path")
	if basePath == "" {
		basePath = "/ingest"
	}
	return NewInput(basePath, cfg.String("description"), buffer, cfg.String("listen")), nil
}
