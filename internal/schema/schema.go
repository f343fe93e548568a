// Package schema fetches input-type field schemas from the backend.
package schema

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/akave-ai/akavelog-dash/internal/model"
)

// Source is the subset of the API client the registry needs.
type Source interface {
	ListTypes(ctx context.Context) ([]string, error)
	GetTypeInfo(ctx context.Context, typeName string) (model.InputTypeInfo, error)
}

// FetchError means a schema could not be loaded.
type FetchError struct {
	Type string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch schema %q: %v", e.Type, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Registry caches one InputTypeInfo per type name for the session.
// Only successes are cached.
type Registry struct {
	src Source

	mu    sync.Mutex
	cache map[string]model.InputTypeInfo
}

// NewRegistry returns a Registry backed by src.
func NewRegistry(src Source) *Registry {
	return &Registry{
		src:   src,
		cache: make(map[string]model.InputTypeInfo),
	}
}

// Fetch returns the schema for typeName, hitting the backend at most once per
// successful load.
func (r *Registry) Fetch(ctx context.Context, typeName string) (model.InputTypeInfo, error) {
	r.mu.Lock()
	info, ok := r.cache[typeName]
	r.mu.Unlock()
	if ok {
		return info, nil
	}

	info, err := r.src.GetTypeInfo(ctx, typeName)
	if err != nil {
		return model.InputTypeInfo{}, &FetchError{Type: typeName, Err: err}
	}
	if info.Type == "" {
		info.Type = typeName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[typeName]; ok {
		return cached, nil
	}
	r.cache[typeName] = info
	return info, nil
}

// Types lists the input type names the backend knows, sorted. Not cached.
func (r *Registry) Types(ctx context.Context) ([]string, error) {
	types, err := r.src.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list input types: %w", err)
	}
	out := append([]string(nil), types...)
	sort.Strings(out)
	return out, nil
}
