// Package poller runs one-shot fetches on a shared schedule and applies their
// results to an owned cell according to a retention policy.
package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/akave-ai/akavelog-dash/internal/metrics"
	"github.com/akave-ai/akavelog-dash/internal/state"
)

// Retention decides what a failed poll does to the held value.
type Retention int

const (
	// KeepStale leaves the last good value in place.
	KeepStale Retention = iota
	// DropToAbsent clears the held value.
	DropToAbsent
)

func (r Retention) String() string {
	switch r {
	case KeepStale:
		return "keep-stale"
	case DropToAbsent:
		return "drop-to-absent"
	default:
		return "unknown"
	}
}

// Value is what a poller holds. Present is false until the first success
// and again after a failure under DropToAbsent.
type Value[T any] struct {
	Data      T
	Present   bool
	UpdatedAt time.Time
}

// Fetcher performs one request.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Config describes a poller.
type Config[T any] struct {
	Kind      string
	Fetch     Fetcher[T]
	Policy    Retention
	Transform func(T) T // applied to successful results before they are stored
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
}

// Poller owns one Value cell.
type Poller[T any] struct {
	kind      string
	fetch     Fetcher[T]
	policy    Retention
	transform func(T) T
	log       zerolog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	cell *state.Cell[Value[T]]
}

// New builds a poller holding an absent value.
func New[T any](cfg Config[T]) *Poller[T] {
	return &Poller[T]{
		kind:      cfg.Kind,
		fetch:     cfg.Fetch,
		policy:    cfg.Policy,
		transform: cfg.Transform,
		log:       cfg.Logger.With().Str("poller", cfg.Kind).Logger(),
		metrics:   cfg.Metrics,
		now:       time.Now,
		cell:      state.NewCell(Value[T]{}),
	}
}

// Kind names the poller in logs and metrics.
func (p *Poller[T]) Kind() string { return p.kind }

// Policy returns the retention policy.
func (p *Poller[T]) Policy() Retention { return p.policy }

// Cell publishes the held value.
func (p *Poller[T]) Cell() *state.Cell[Value[T]] { return p.cell }

// Value returns the held value.
func (p *Poller[T]) Value() Value[T] { return p.cell.Get() }

// Poll fetches once and applies the outcome if scope is still open.
// Errors are absorbed here according to the retention policy; nothing is
// returned to the caller. Overlapping polls apply in completion order.
func (p *Poller[T]) Poll(scope *Scope) {
	start := time.Now()
	data, err := p.fetch(scope.Context())
	took := time.Since(start)

	result := metrics.ResultOK
	applied := scope.Do(func() {
		if err != nil {
			result = metrics.ResultError
			if p.policy == DropToAbsent {
				p.cell.Set(Value[T]{})
			}
			return
		}
		if p.transform != nil {
			data = p.transform(data)
		}
		p.cell.Set(Value[T]{Data: data, Present: true, UpdatedAt: p.now()})
	})
	if !applied {
		result = metrics.ResultDiscarded
	}
	p.metrics.ObservePoll(p.kind, result, took)

	switch result {
	case metrics.ResultError:
		p.log.Debug().Err(err).Str("policy", p.policy.String()).Dur("took", took).Msg("poll failed")
	case metrics.ResultDiscarded:
		p.log.Debug().Dur("took", took).Msg("poll result discarded after teardown")
	default:
		p.log.Trace().Dur("took", took).Msg("poll applied")
	}
}
