package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
)

// Cache operation results
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

type PrometheusMetrics struct {
	httpHandler func(*fasthttp.RequestCtx)
	logger      *zap.Logger

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheOpsTotal   *prometheus.CounterVec
	cutsTotal       *prometheus.CounterVec
	inputSize       prometheus.Histogram
	cacheBytesSaved *prometheus.CounterVec
}

// NewPrometheusMetrics registers the preview service metrics on a private registry.
func NewPrometheusMetrics(namespace string, logger *zap.Logger) *PrometheusMetrics {
	if namespace == "" {
		namespace = "htmlcut"
	}

	pm := &PrometheusMetrics{logger: logger}

	pm.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "preview",
			Name:      "requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"endpoint", "status"},
	)

	pm.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "preview",
			Name:      "request_duration_seconds",
			Help:      "Time taken to serve API requests",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"endpoint"},
	)

	pm.cacheOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "preview",
			Name:      "cache_operations_total",
			Help:      "Result cache lookups by outcome",
		},
		[]string{"result"},
	)

	pm.cutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "preview",
			Name:      "cuts_total",
			Help:      "Cuts performed, split by whether content was removed",
		},
		[]string{"truncated"},
	)

	pm.inputSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "preview",
			Name:      "input_size_bytes",
			Help:      "Size of markup submitted for cutting",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		},
	)

	pm.cacheBytesSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "preview",
			Name:      "cache_bytes_saved_total",
			Help:      "Bytes saved by compressing cached results",
		},
		[]string{"algorithm"},
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		pm.requestsTotal,
		pm.requestDuration,
		pm.cacheOpsTotal,
		pm.cutsTotal,
		pm.inputSize,
		pm.cacheBytesSaved,
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
	pm.httpHandler = fasthttpadaptor.NewFastHTTPHandler(handler)

	logger.Info("Prometheus metrics initialized for preview service",
		zap.String("namespace", namespace))

	return pm
}

func (pm *PrometheusMetrics) RecordRequest(endpoint string, status int, duration time.Duration) {
	pm.requestsTotal.WithLabelValues(endpoint, statusClass(status)).Inc()
	pm.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (pm *PrometheusMetrics) RecordCache(result string) {
	pm.cacheOpsTotal.WithLabelValues(result).Inc()
}

func (pm *PrometheusMetrics) RecordCut(truncated bool, inputBytes int) {
	label := "false"
	if truncated {
		label = "true"
	}
	pm.cutsTotal.WithLabelValues(label).Inc()
	pm.inputSize.Observe(float64(inputBytes))
}

func (pm *PrometheusMetrics) RecordBytesSaved(algorithm string, saved int) {
	if saved > 0 {
		pm.cacheBytesSaved.WithLabelValues(algorithm).Add(float64(saved))
	}
}

// CacheCount returns the number of cache lookups with the given result.
func (pm *PrometheusMetrics) CacheCount(result string) uint64 {
	return uint64(pm.counterValue(pm.cacheOpsTotal.WithLabelValues(result)))
}

func (pm *PrometheusMetrics) counterValue(counter prometheus.Counter) float64 {
	metric := &dto.Metric{}
	if err := counter.Write(metric); err != nil {
		pm.logger.Warn("Failed to read counter value", zap.Error(err))
		return 0
	}
	return metric.GetCounter().GetValue()
}

func (pm *PrometheusMetrics) ServeHTTP(ctx *fasthttp.RequestCtx) {
	pm.httpHandler(ctx)
}

// statusClass keeps label cardinality low: "2xx", "4xx", "5xx"
func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
