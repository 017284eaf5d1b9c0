package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics instruments the scoring pipeline
type Metrics struct {
	registry    *prometheus.Registry
	assessments *prometheus.CounterVec
	errors      prometheus.Counter
	duration    prometheus.Histogram
}

// New registers the pipeline metrics on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_assessments_total",
			Help: "Completed risk assessments by risk level.",
		}, []string{"level"}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "risk_prediction_errors_total",
			Help: "Assessments that failed during model inference.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "risk_assessment_duration_seconds",
			Help:    "Time spent producing an assessment.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.assessments, m.errors, m.duration)
	return m
}

// ObserveAssessment records a completed assessment
func (m *Metrics) ObserveAssessment(level string, elapsed time.Duration) {
	m.assessments.WithLabelValues(level).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// ObservePredictionError records a failed assessment
func (m *Metrics) ObservePredictionError() {
	m.errors.Inc()
}

// Handler exposes the registry for scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
