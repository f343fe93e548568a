// Package metrics holds the dashboard's prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Poll results.
const (
	ResultOK        = "ok"
	ResultError     = "error"
	ResultDiscarded = "discarded"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	reg *prometheus.Registry

	PollsTotal     *prometheus.CounterVec
	PollDuration   *prometheus.HistogramVec
	MutationsTotal *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		PollsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "akavelog_dash_polls_total",
			Help: "Polls by kind and result (ok, error, discarded after teardown)",
		}, []string{"kind", "result"}),
		PollDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "akavelog_dash_poll_duration_seconds",
			Help:    "Round-trip time of poll requests",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"kind"}),
		MutationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "akavelog_dash_mutations_total",
			Help: "Create and send-test actions by result",
		}, []string{"action", "result"}),
	}
}

// ObservePoll records one finished poll.
func (m *Metrics) ObservePoll(kind, result string, took time.Duration) {
	if m == nil {
		return
	}
	m.PollsTotal.WithLabelValues(kind, result).Inc()
	m.PollDuration.WithLabelValues(kind).Observe(took.Seconds())
}

// ObserveMutation records one create or send action.
func (m *Metrics) ObserveMutation(action string, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.MutationsTotal.WithLabelValues(action, result).Inc()
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
