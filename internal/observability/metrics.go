package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lingoflow/internal/lang"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	asrRequestsTotal     *prometheus.CounterVec
	asrDuration          *prometheus.HistogramVec
	modelLoadDuration    *prometheus.HistogramVec
	translationsTotal    *prometheus.CounterVec
	translationDuration  *prometheus.HistogramVec
	translationFallbacks *prometheus.CounterVec
	pipelineFailures     prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lingoflow_http_requests_total",
				Help: "Total number of HTTP requests handled.",
			},
			[]string{"route", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lingoflow_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		asrRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lingoflow_asr_requests_total",
				Help: "Total speech-to-text server requests.",
			},
			[]string{"endpoint", "status"},
		),
		asrDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lingoflow_asr_request_duration_seconds",
				Help:    "Speech-to-text request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "status"},
		),
		modelLoadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lingoflow_model_load_duration_seconds",
				Help:    "Model load duration in seconds, per quality tier.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"tier", "outcome"},
		),
		translationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lingoflow_translation_requests_total",
				Help: "Total translation provider requests.",
			},
			[]string{"provider", "status"},
		),
		translationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lingoflow_translation_request_duration_seconds",
				Help:    "Translation provider request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "status"},
		),
		translationFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lingoflow_translation_fallbacks_total",
				Help: "Translation attempts that failed over to the next provider.",
			},
			[]string{"failed_provider"},
		),
		pipelineFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lingoflow_pipeline_failures_total",
				Help: "Pipeline runs that ended with a failure result.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.asrRequestsTotal,
		m.asrDuration,
		m.modelLoadDuration,
		m.translationsTotal,
		m.translationDuration,
		m.translationFallbacks,
		m.pipelineFailures,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	if method == "" {
		method = "UNKNOWN"
	}
	statusLabel := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(route, method, statusLabel).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, statusLabel).Observe(duration.Seconds())
}

func (m *Metrics) ObserveASR(endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	statusLabel := strconv.Itoa(status)
	m.asrRequestsTotal.WithLabelValues(endpoint, statusLabel).Inc()
	m.asrDuration.WithLabelValues(endpoint, statusLabel).Observe(duration.Seconds())
}

func (m *Metrics) ObserveModelLoad(tier lang.QualityTier, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.modelLoadDuration.WithLabelValues(string(tier), outcome).Observe(duration.Seconds())
}

func (m *Metrics) ObserveTranslation(provider string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if provider == "" {
		provider = "unknown"
	}
	statusLabel := strconv.Itoa(status)
	m.translationsTotal.WithLabelValues(provider, statusLabel).Inc()
	m.translationDuration.WithLabelValues(provider, statusLabel).Observe(duration.Seconds())
}

func (m *Metrics) IncTranslationFallback(failedProvider string) {
	if m == nil {
		return
	}
	if failedProvider == "" {
		failedProvider = "unknown"
	}
	m.translationFallbacks.WithLabelValues(failedProvider).Inc()
}

func (m *Metrics) IncPipelineFailure() {
	if m == nil {
		return
	}
	m.pipelineFailures.Inc()
}
