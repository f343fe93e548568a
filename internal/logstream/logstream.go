// Package logstream keeps the most recent logs received by the backend.
package logstream

import (
	"context"
	"slices"

	"github.com/rs/zerolog"

	"github.com/akave-ai/akavelog-dash/internal/metrics"
	"github.com/akave-ai/akavelog-dash/internal/model"
	"github.com/akave-ai/akavelog-dash/internal/poller"
	"github.com/akave-ai/akavelog-dash/internal/state"
)

// MaxRecent is the size of the window the backend serves and the client keeps.
const MaxRecent = 200

// Source is the subset of the API client the buffer needs.
type Source interface {
	RecentLogs(ctx context.Context) ([]model.RecentLog, error)
}

// Buffer replaces its contents with the backend's window on every poll.
// A failed poll keeps the previous window and is not reported.
type Buffer struct {
	p *poller.Poller[[]model.RecentLog]
}

// New returns an empty buffer. max <= 0 means MaxRecent.
func New(src Source, max int, log zerolog.Logger, m *metrics.Metrics) *Buffer {
	if max <= 0 {
		max = MaxRecent
	}
	return &Buffer{
		p: poller.New(poller.Config[[]model.RecentLog]{
			Kind:      "logs",
			Fetch:     src.RecentLogs,
			Policy:    poller.KeepStale,
			Transform: func(logs []model.RecentLog) []model.RecentLog { return newest(logs, max) },
			Logger:    log,
			Metrics:   m,
		}),
	}
}

// Poll fetches once; see poller.Poller.Poll.
func (b *Buffer) Poll(scope *poller.Scope) { b.p.Poll(scope) }

// Cell publishes the held window.
func (b *Buffer) Cell() *state.Cell[poller.Value[[]model.RecentLog]] { return b.p.Cell() }

// Logs returns the window oldest first, as the backend orders it.
func (b *Buffer) Logs() []model.RecentLog { return b.p.Value().Data }

// DisplayOrder returns the window newest first.
func (b *Buffer) DisplayOrder() []model.RecentLog { return NewestFirst(b.Logs()) }

// NewestFirst returns a reversed copy of logs.
func NewestFirst(logs []model.RecentLog) []model.RecentLog {
	out := slices.Clone(logs)
	slices.Reverse(out)
	return out
}

func newest(logs []model.RecentLog, max int) []model.RecentLog {
	if len(logs) > max {
		logs = logs[len(logs)-max:]
	}
	return slices.Clone(logs)
}
