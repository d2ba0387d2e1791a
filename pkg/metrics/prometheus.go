package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "learnfil"

// PrometheusMetrics implements Recorder on a private Prometheus
// registry so several instances can coexist in one process.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	assertions  *prometheus.CounterVec
	completions *prometheus.CounterVec
	activeRuns  prometheus.Gauge
}

// NewPrometheusMetrics creates the collectors and registers them,
// together with the Go and process collectors, on a new registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Suite runs by lesson and status.",
		}, []string{"lesson", "status"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of suite runs.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"lesson"}),
		assertions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assertions_total",
			Help:      "Assertion evaluations by lesson, kind and outcome.",
		}, []string{"lesson", "kind", "outcome"}),
		completions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "First-time lesson completions.",
		}, []string{"lesson"}),
		activeRuns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_runs",
			Help:      "Suite runs currently executing.",
		}),
	}
}

func (m *PrometheusMetrics) RecordRun(lessonID, status string, duration time.Duration) {
	m.runs.WithLabelValues(lessonID, status).Inc()
	m.runDuration.WithLabelValues(lessonID).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordAssertion(lessonID, kind, outcome string) {
	m.assertions.WithLabelValues(lessonID, kind, outcome).Inc()
}

func (m *PrometheusMetrics) RecordCompletion(lessonID string) {
	m.completions.WithLabelValues(lessonID).Inc()
}

func (m *PrometheusMetrics) RunStarted() {
	m.activeRuns.Inc()
}

func (m *PrometheusMetrics) RunFinished() {
	m.activeRuns.Dec()
}

// Registry returns the private registry.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}
