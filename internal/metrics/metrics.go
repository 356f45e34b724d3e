// Package metrics exposes Prometheus collectors for the ingestion pipeline.
// Collectors register with the default registry on first use.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ingestion"

type collectors struct {
	runsTotal     *prometheus.CounterVec
	rowsTotal     *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	runsInFlight  prometheus.Gauge
	notifications *prometheus.CounterVec
	limiterReject prometheus.Counter
}

var singleton = sync.OnceValue(func() *collectors {
	return &collectors{
		runsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Ingestion runs that reached a terminal status.",
		}, []string{"entity_type", "status"}),
		rowsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Row records processed, by outcome.",
		}, []string{"entity_type", "result"}),
		runDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time from run creation to terminal status.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 300},
		}, []string{"entity_type", "status"}),
		runsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_in_flight",
			Help:      "Runs currently in PROCESSING.",
		}),
		notifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Completion events published, by result.",
		}, []string{"result"}),
		limiterReject: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "async_rejected_total",
			Help:      "Asynchronous runs rejected because every slot was busy.",
		}),
	}
})

// RunStarted marks a run as in flight.
func RunStarted() {
	singleton().runsInFlight.Inc()
}

// RunFinished records a terminal run.
func RunFinished(entityType, status string, elapsed time.Duration) {
	m := singleton()
	m.runsInFlight.Dec()
	m.runsTotal.WithLabelValues(entityType, status).Inc()
	m.runDuration.WithLabelValues(entityType, status).Observe(elapsed.Seconds())
}

// RowsProcessed adds to the row counters of a run.
func RowsProcessed(entityType string, succeeded, failed int) {
	m := singleton()
	m.rowsTotal.WithLabelValues(entityType, "success").Add(float64(succeeded))
	m.rowsTotal.WithLabelValues(entityType, "failure").Add(float64(failed))
}

// NotificationPublished records the outcome of a completion event.
func NotificationPublished(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	singleton().notifications.WithLabelValues(result).Inc()
}

// AsyncRejected counts an async run turned away by the limiter.
func AsyncRejected() {
	singleton().limiterReject.Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	singleton()
	return promhttp.Handler()
}
