// Package uploadstatus tracks the backend batcher's upload status.
package uploadstatus

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/akave-ai/akavelog-dash/internal/metrics"
	"github.com/akave-ai/akavelog-dash/internal/model"
	"github.com/akave-ai/akavelog-dash/internal/poller"
	"github.com/akave-ai/akavelog-dash/internal/state"
)

// Source is the subset of the API client the monitor needs.
type Source interface {
	UploadStatus(ctx context.Context) (model.UploadStatus, error)
}

// Monitor holds the latest status snapshot. Unlike the log buffer it does not
// keep a stale value: a failed poll makes the status absent until the next
// success, because an outdated upload state would be misleading.
type Monitor struct {
	p *poller.Poller[model.UploadStatus]
}

// New returns a monitor with no status.
func New(src Source, log zerolog.Logger, m *metrics.Metrics) *Monitor {
	return &Monitor{
		p: poller.New(poller.Config[model.UploadStatus]{
			Kind:    "status",
			Fetch:   src.UploadStatus,
			Policy:  poller.DropToAbsent,
			Logger:  log,
			Metrics: m,
		}),
	}
}

// Poll fetches once; see poller.Poller.Poll.
func (m *Monitor) Poll(scope *poller.Scope) { m.p.Poll(scope) }

// Cell publishes the held status.
func (m *Monitor) Cell() *state.Cell[poller.Value[model.UploadStatus]] { return m.p.Cell() }

// Status returns the snapshot and whether one is held.
func (m *Monitor) Status() (model.UploadStatus, bool) {
	v := m.p.Value()
	return v.Data, v.Present
}
