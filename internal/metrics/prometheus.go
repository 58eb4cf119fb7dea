package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/hourly-forecast/internal/weather"
)

// PrometheusRecorder implements weather.Recorder on its own registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	rowsEmitted    prometheus.Counter
	entriesSkipped prometheus.Counter
	rainDefaulted  prometheus.Counter
}

var _ weather.Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates a recorder with Go and process collectors registered.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "forecast_request_duration_seconds",
			Help:    "Duration of hourly forecast builds, fetch included.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider", "outcome"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forecast_request_total",
			Help: "Hourly forecast builds by outcome.",
		}, []string{"provider", "outcome"}),
		rowsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "forecast_rows_emitted_total",
			Help: "Hourly rows emitted.",
		}),
		entriesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "forecast_entries_skipped_total",
			Help: "Forecast entries dropped for a missing temperature or pcat value.",
		}),
		rainDefaulted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "forecast_rain_defaulted_total",
			Help: "Rows whose pcat value was not numeric and defaulted to 0.",
		}),
	}

	registry.MustRegister(
		r.requestDuration,
		r.requestTotal,
		r.rowsEmitted,
		r.entriesSkipped,
		r.rainDefaulted,
	)
	return r
}

func (r *PrometheusRecorder) ObserveRequest(provider, outcome string, elapsed time.Duration) {
	r.requestDuration.WithLabelValues(provider, outcome).Observe(elapsed.Seconds())
	r.requestTotal.WithLabelValues(provider, outcome).Inc()
}

func (r *PrometheusRecorder) ObserveTransform(stats weather.TransformStats, rows int) {
	r.rowsEmitted.Add(float64(rows))
	r.entriesSkipped.Add(float64(stats.Skipped))
	r.rainDefaulted.Add(float64(stats.RainDefaulted))
}

// Registry exposes the underlying registry, mainly for tests.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
