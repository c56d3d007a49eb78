package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	signalsGenerated   *prometheus.CounterVec
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	tickersIngested    *prometheus.CounterVec
	tickersDeleted     prometheus.Counter
	snapshotsTotal     *prometheus.CounterVec
	eventsPublished    *prometheus.CounterVec
	jobsActive         *prometheus.GaugeVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.signalsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradelab_signals_generated_total",
			Help: "Total number of signals generated",
		},
		[]string{"strategy", "action"},
	)
	r.evaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradelab_evaluations_total",
			Help: "Total number of strategy evaluations",
		},
		[]string{"strategy", "status"},
	)
	r.evaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tradelab_evaluation_duration_seconds",
			Help:    "Strategy evaluation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
	r.tickersIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradelab_tickers_ingested_total",
			Help: "Total number of ticker records stored",
		},
		[]string{"source"},
	)
	r.tickersDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tradelab_tickers_deleted_total",
			Help: "Total number of ticker records deleted",
		},
	)
	r.snapshotsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradelab_snapshots_total",
			Help: "Total number of snapshot exports",
		},
		[]string{"status"},
	)
	r.eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradelab_events_published_total",
			Help: "Total number of ingest events published",
		},
		[]string{"type", "status"},
	)
	r.jobsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tradelab_jobs_active",
			Help: "Number of active jobs",
		},
		[]string{"type"},
	)

	reg.MustRegister(r.signalsGenerated)
	reg.MustRegister(r.evaluationsTotal)
	reg.MustRegister(r.evaluationDuration)
	reg.MustRegister(r.tickersIngested)
	reg.MustRegister(r.tickersDeleted)
	reg.MustRegister(r.snapshotsTotal)
	reg.MustRegister(r.eventsPublished)
	reg.MustRegister(r.jobsActive)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordSignal records a generated signal.
func (r *Registry) RecordSignal(strategy, action string) {
	r.signalsGenerated.WithLabelValues(strategy, action).Inc()
}

// RecordEvaluation records a strategy evaluation.
func (r *Registry) RecordEvaluation(strategy, status string, duration float64) {
	r.evaluationsTotal.WithLabelValues(strategy, status).Inc()
	r.evaluationDuration.Observe(duration)
}

// RecordIngest records stored ticker records by source (api, import, seed, restore).
func (r *Registry) RecordIngest(source string, count int) {
	r.tickersIngested.WithLabelValues(source).Add(float64(count))
}

// RecordDelete records deleted ticker records.
func (r *Registry) RecordDelete(count int) {
	r.tickersDeleted.Add(float64(count))
}

// RecordSnapshot records a snapshot export.
func (r *Registry) RecordSnapshot(status string) {
	r.snapshotsTotal.WithLabelValues(status).Inc()
}

// RecordEvent records an event publish attempt.
func (r *Registry) RecordEvent(eventType, status string) {
	r.eventsPublished.WithLabelValues(eventType, status).Inc()
}

// SetJobsActive sets the number of active jobs of a type.
func (r *Registry) SetJobsActive(jobType string, count int) {
	r.jobsActive.WithLabelValues(jobType).Set(float64(count))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
