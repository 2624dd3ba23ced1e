package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ports "churn-prediction-service/internal/core/ports/output"
)

// Recorder implements ports.MetricsRecorder on a private registry.
type Recorder struct {
	registry     *prometheus.Registry
	loads        *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	queries      *prometheus.CounterVec
}

// NewRecorder creates a recorder with the churn collectors and the standard
// Go and process collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "churn",
				Subsystem: "cache",
				Name:      "loads_total",
				Help:      "Number of cache loads by source and result.",
			},
			[]string{"source", "result"},
		),
		loadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "churn",
				Subsystem: "cache",
				Name:      "load_duration_seconds",
				Help:      "Time spent reading and decoding each cached source.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"source"},
		),
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "churn",
				Subsystem: "predictions",
				Name:      "queries_total",
				Help:      "Number of prediction queries by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
	}

	r.registry.MustRegister(
		r.loads,
		r.loadDuration,
		r.queries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) ObserveLoad(source string, elapsed time.Duration, err error) {
	result := ports.OutcomeOK
	if err != nil {
		result = ports.OutcomeError
	}
	r.loads.WithLabelValues(source, result).Inc()
	r.loadDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveQuery(operation, outcome string) {
	r.queries.WithLabelValues(operation, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
