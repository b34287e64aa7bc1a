// Package metrics holds the Prometheus collectors shared by hackfinder's
// controller, backends, importer and HTTP server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hackfinder"

// Completion outcomes.
const (
	OutcomeApplied   = "applied"
	OutcomeDiscarded = "discarded"
	OutcomeFailed    = "failed"
)

var (
	completionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_completions_total",
			Help:      "Search responses handled by controllers, by outcome",
		},
		[]string{"mode", "outcome"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Search backend call duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode", "status"},
	)

	hacksImportedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hacks_imported_total",
			Help:      "Hacks written to the index by the importer",
		},
	)

	liveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_sessions",
			Help:      "Open live web sessions",
		},
	)
)

func init() {
	prometheus.MustRegister(completionsTotal)
	prometheus.MustRegister(backendDuration)
	prometheus.MustRegister(hacksImportedTotal)
	prometheus.MustRegister(liveSessions)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
}

// RecordCompletion counts a response handled by a search controller.
func RecordCompletion(mode, outcome string) {
	completionsTotal.WithLabelValues(mode, outcome).Inc()
}

// ObserveBackend records the duration of a backend call.
func ObserveBackend(mode string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	backendDuration.WithLabelValues(mode, status).Observe(d.Seconds())
}

// AddImported counts hacks written by the importer.
func AddImported(n int) {
	if n > 0 {
		hacksImportedTotal.Add(float64(n))
	}
}

// SessionOpened and SessionClosed track open live sessions.
func SessionOpened() { liveSessions.Inc() }

func SessionClosed() { liveSessions.Dec() }

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
