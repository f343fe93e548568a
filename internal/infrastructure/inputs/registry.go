package inputs

import (
	"fmt"
	"sort"
	"sync"

	"github.com/akave-ai/akavelog-dash/internal/model"
)

// GlobalRegistry is the registry input packages add themselves to in init().
var GlobalRegistry = NewRegistry()

// Registry holds registered input factories. The backend uses it to create inputs.
// Infrastructure packages (e.g. httpinput) register their factory in init().
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a new Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory for an input type.
func (r *Registry) Register(factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[factory.Name()] = factory
}

func (r *Registry) factory(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Create builds a MessageInput for the given type and config.
func (r *Registry) Create(name string, cfg Config, buffer InputBuffer) (MessageInput, error) {
	factory, ok := r.factory(name)
	if !ok {
		return nil, fmt.Errorf("unknown input type: %s", name)
	}
	return factory.Create(cfg, buffer)
}

// ValidateConfig runs the factory's optional ValidateConfig before create. Returns nil if type unknown or no validator.
func (r *Registry) ValidateConfig(typeName string, cfg Config) error {
	factory, ok := r.factory(typeName)
	if !ok {
		return nil
	}
	if v, ok := factory.(interface{ ValidateConfig(Config) error }); ok {
		return v.ValidateConfig(cfg)
	}
	return nil
}

// ListRegistered returns all registered input type names, sorted.
func (r *Registry) ListRegistered() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// GetTypeInfo returns the config spec for the given input type. ok is false if the type is not registered.
func (r *Registry) GetTypeInfo(name string) (info model.InputTypeInfo, ok bool) {
	factory, ok := r.factory(name)
	if !ok {
		return model.InputTypeInfo{}, false
	}
	return factory.ConfigSpec(), true
}

// AllTypesInfo returns config specs for all registered input types, ordered by type.
func (r *Registry) AllTypesInfo() []model.InputTypeInfo {
	names := r.ListRegistered()
	out := make([]model.InputTypeInfo, 0, len(names))
	for _, name := range names {
		if info, ok := r.GetTypeInfo(name); ok {
			out = append(out, info)
		}
	}
	return out
}
