// Package prompush is a metrics backend that keeps Prometheus collectors in
// a private registry and pushes them to a Pushgateway on Flush. It suits
// short-lived CLI runs that a scraper would never see.
package prompush

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"ecomdata/internal/metrics"
)

// Backend implements metrics.Backend on top of a Pushgateway.
type Backend struct {
	reg    *prometheus.Registry
	pusher pusher

	rows     *prometheus.CounterVec
	cells    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

type pusher interface {
	Push() error
}

// NewBackend registers the collectors and targets gatewayURL under job.
func NewBackend(job, gatewayURL string) (*Backend, error) {
	if job == "" {
		return nil, errors.New("prompush: job name is required")
	}
	u, err := url.Parse(gatewayURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("prompush: invalid pushgateway url %q", gatewayURL)
	}

	b := newCollectors()
	b.pusher = push.New(gatewayURL, job).Gatherer(b.reg)
	return b, nil
}

func newCollectors() *Backend {
	reg := prometheus.NewRegistry()
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metrics.RowsTotal,
		Help: "Rows generated, repaired, loaded or exported.",
	}, []string{"kind"})
	cells := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metrics.CellsRepairedTotal,
		Help: "Cells changed by a repair step.",
	}, []string{"step"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metrics.StepDurationSeconds,
		Help:    "Duration of pipeline steps in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"step", "status"})
	reg.MustRegister(rows, cells, duration)

	return &Backend{reg: reg, rows: rows, cells: cells, duration: duration}
}

// IncCounter implements metrics.Backend. Unknown names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if delta <= 0 {
		return
	}
	switch name {
	case metrics.RowsTotal:
		b.rows.WithLabelValues(label(labels, "kind")).Add(delta)
	case metrics.CellsRepairedTotal:
		b.cells.WithLabelValues(label(labels, "step")).Add(delta)
	}
}

// ObserveHistogram implements metrics.Backend. Unknown names are ignored.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if value < 0 || name != metrics.StepDurationSeconds {
		return
	}
	b.duration.WithLabelValues(label(labels, "step"), label(labels, "status")).Observe(value)
}

// Flush pushes the registry, replacing the job's previous push.
func (b *Backend) Flush() error {
	if b.pusher == nil {
		return nil
	}
	if err := b.pusher.Push(); err != nil {
		return fmt.Errorf("prompush: push: %w", err)
	}
	return nil
}

// Gatherer exposes the registry, mainly for tests.
func (b *Backend) Gatherer() prometheus.Gatherer { return b.reg }

func label(l metrics.Labels, key string) string {
	if v := l[key]; v != "" {
		return v
	}
	return "unknown"
}

var _ metrics.Backend = (*Backend)(nil)
