// Package registry holds the client's snapshot of provisioned inputs.
package registry

import (
	"context"
	"fmt"

	"github.com/akave-ai/akavelog-dash/internal/model"
	"github.com/akave-ai/akavelog-dash/internal/state"
)

// DefaultIngestPath is used for inputs whose configuration has no description.
const DefaultIngestPath = "raw"

// Lister is the subset of the API client the registry needs.
type Lister interface {
	ListInputs(ctx context.Context) ([]model.InputItem, error)
}

// FetchError means the input list could not be loaded. The previous snapshot is kept.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("load inputs: %v", e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

// Registry owns the input list. It is refreshed on demand, never on a timer.
type Registry struct {
	src  Lister
	cell *state.Cell[[]model.InputItem]
}

// New returns an empty registry.
func New(src Lister) *Registry {
	return &Registry{
		src:  src,
		cell: state.NewCell[[]model.InputItem](nil),
	}
}

// Cell publishes the current snapshot.
func (r *Registry) Cell() *state.Cell[[]model.InputItem] { return r.cell }

// Items returns the current snapshot.
func (r *Registry) Items() []model.InputItem { return r.cell.Get() }

// Refresh replaces the whole snapshot with the backend's list. On failure the
// held snapshot is left untouched.
func (r *Registry) Refresh(ctx context.Context) ([]model.InputItem, error) {
	list, err := r.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	r.Replace(list)
	return list, nil
}

// Fetch loads the backend's list without touching the snapshot.
func (r *Registry) Fetch(ctx context.Context) ([]model.InputItem, error) {
	list, err := r.src.ListInputs(ctx)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	return dedupe(list), nil
}

// Replace installs list as the snapshot.
func (r *Registry) Replace(list []model.InputItem) { r.cell.Set(list) }

// IngestPath is the /ingest/<path> suffix that routes to item: its
// configuration's description, or "raw". Computed on every call.
func IngestPath(item model.InputItem) string {
	if desc, ok := item.Configuration["description"].(string); ok && desc != "" {
		return desc
	}
	return DefaultIngestPath
}

// dedupe keeps the first item for each ID.
func dedupe(list []model.InputItem) []model.InputItem {
	seen := make(map[string]struct{}, len(list))
	out := make([]model.InputItem, 0, len(list))
	for _, item := range list {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}
