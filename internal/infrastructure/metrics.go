package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments the service exports.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec

	DatasetsLoaded prometheus.Gauge
	UploadBytes    prometheus.Counter
}

// NewMetrics registers the service metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "windoa_http_requests_total",
			Help: "HTTP requests by method, route pattern, and status class.",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "windoa_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "windoa_analyses_total",
			Help: "Analysis runs by kind and outcome.",
		}, []string{"kind", "outcome"}),

		AnalysisDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "windoa_analysis_duration_seconds",
			Help: "Analysis run duration by kind.",
			// Runs span milliseconds (tiny datasets) to minutes.
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300, 600},
		}, []string{"kind"}),

		DatasetsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "windoa_datasets_loaded",
			Help: "Datasets currently held in the registry.",
		}),

		UploadBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "windoa_upload_bytes_total",
			Help: "Total bytes accepted through the upload endpoint.",
		}),
	}
}
