// Package form turns a backend input-type schema into editable form state and
// back into a create-input payload.
package form

import (
	"errors"
	"maps"
	"strings"
	"sync"

	"github.com/akave-ai/akavelog-dash/internal/model"
	"github.com/akave-ai/akavelog-dash/internal/state"
)

// ErrUnavailable is returned by Payload while no schema is loaded.
var ErrUnavailable = errors.New("input config not loaded")

// Snapshot is an immutable view of the form.
type Snapshot struct {
	Available bool
	Info      model.InputTypeInfo
	Title     string
	Values    map[string]string
	// MissingRequired lists required fields that are currently blank. Advisory only.
	MissingRequired []string
}

// Value returns the current value of a field.
func (s Snapshot) Value(name string) string { return s.Values[name] }

// Model is the form. It starts unavailable until Load is called.
type Model struct {
	mu     sync.Mutex
	info   *model.InputTypeInfo
	values map[string]string
	title  string

	cell *state.Cell[Snapshot]
}

// New returns an unavailable form whose title is seeded with defaultTitle.
func New(defaultTitle string) *Model {
	m := &Model{
		values: map[string]string{},
		title:  defaultTitle,
	}
	m.cell = state.NewCell(m.snapshotLocked())
	return m
}

// Cell publishes a Snapshot after every change.
func (m *Model) Cell() *state.Cell[Snapshot] { return m.cell }

// Snapshot returns the current state.
func (m *Model) Snapshot() Snapshot { return m.cell.Get() }

// Load installs a schema and seeds every field from its example, or "".
// The title is left as it is.
func (m *Model) Load(info model.InputTypeInfo) {
	m.mu.Lock()
	m.info = &info
	m.values = seed(info)
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.cell.Set(snap)
}

// SetValue replaces one field's value. Names not in the schema are ignored.
func (m *Model) SetValue(name, value string) {
	m.mu.Lock()
	if m.info == nil {
		m.mu.Unlock()
		return
	}
	if _, ok := m.info.Field(name); !ok {
		m.mu.Unlock()
		return
	}
	next := maps.Clone(m.values)
	next[name] = value
	m.values = next
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.cell.Set(snap)
}

// SetTitle replaces the title.
func (m *Model) SetTitle(title string) {
	m.mu.Lock()
	m.title = title
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.cell.Set(snap)
}

// Payload builds the create request for inputType. Values are trimmed and
// blank ones dropped; when nothing is left Config is nil so the key is omitted.
// A blank title is omitted as well and the backend assigns one.
func (m *Model) Payload(inputType string) (model.CreateInputRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.info == nil {
		return model.CreateInputRequest{}, ErrUnavailable
	}

	req := model.CreateInputRequest{
		Type:  inputType,
		Title: strings.TrimSpace(m.title),
	}
	for _, f := range m.info.Fields {
		v := strings.TrimSpace(m.values[f.Name])
		if v == "" {
			continue
		}
		if req.Config == nil {
			req.Config = make(map[string]any)
		}
		req.Config[f.Name] = v
	}
	return req, nil
}

// Reset runs after a successful create: field values go back to their
// examples and the title is cleared, not restored to its default.
func (m *Model) Reset() {
	m.mu.Lock()
	if m.info != nil {
		m.values = seed(*m.info)
	}
	m.title = ""
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.cell.Set(snap)
}

func (m *Model) snapshotLocked() Snapshot {
	snap := Snapshot{
		Title:  m.title,
		Values: maps.Clone(m.values),
	}
	if m.info == nil {
		return snap
	}
	snap.Available = true
	snap.Info = *m.info
	for _, f := range m.info.Fields {
		if f.Required && strings.TrimSpace(m.values[f.Name]) == "" {
			snap.MissingRequired = append(snap.MissingRequired, f.Name)
		}
	}
	return snap
}

func seed(info model.InputTypeInfo) map[string]string {
	values := make(map[string]string, len(info.Fields))
	for _, f := range info.Fields {
		values[f.Name] = f.Example
	}
	return values
}
