// Package metrics exposes self-instrumentation of the sampler as a
// Prometheus endpoint. It observes the monitor's own behavior and stores
// nothing; the sampled system data never flows through here.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the instrument set on its own registry so tests can build
// independent instances.
type Metrics struct {
	registry *prometheus.Registry

	refreshCycles prometheus.Counter
	cycleDuration prometheus.Histogram
	diskRefreshes prometheus.Counter
	diskReuses    prometheus.Counter
	killRequests  *prometheus.CounterVec
}

// New creates a Metrics instance with the standard Go and process
// collectors registered alongside the sampler instruments.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		refreshCycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "sysdash_refresh_cycles_total",
			Help: "Completed sampling cycles.",
		}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sysdash_refresh_cycle_duration_seconds",
			Help:    "Wall time of one sampling cycle, including the CPU sample wait.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
		}),
		diskRefreshes: factory.NewCounter(prometheus.CounterOpts{
			Name: "sysdash_disk_enumerations_total",
			Help: "Cycles that enumerated filesystems.",
		}),
		diskReuses: factory.NewCounter(prometheus.CounterOpts{
			Name: "sysdash_disk_cache_reuses_total",
			Help: "Cycles that reused the cached disk list inside the cooldown window.",
		}),
		killRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sysdash_process_control_requests_total",
			Help: "Process control requests by operation and outcome.",
		}, []string{"op", "outcome"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCycle records one completed sampling cycle.
func (m *Metrics) ObserveCycle(elapsed time.Duration) {
	m.refreshCycles.Inc()
	m.cycleDuration.Observe(elapsed.Seconds())
}

// ObserveDiskRefresh records whether a cycle enumerated filesystems or
// reused the cached list.
func (m *Metrics) ObserveDiskRefresh(enumerated bool) {
	if enumerated {
		m.diskRefreshes.Inc()
	} else {
		m.diskReuses.Inc()
	}
}

// ObserveProcessControl records the outcome of a kill or terminate request.
func (m *Metrics) ObserveProcessControl(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.killRequests.WithLabelValues(op, outcome).Inc()
}

// Handler returns the /metrics HTTP handler for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
