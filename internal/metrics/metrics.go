// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP request handling in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Stats engine metrics
	StatsQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_stats_queries_total",
		Help: "Total number of stats queries by outcome",
	}, []string{"result"})

	// Ingestion metrics
	IngestFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_ingest_fetch_total",
		Help: "Total number of provider fetches by provider and outcome",
	}, []string{"provider", "result"})
	RetentionPrunedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "weather_retention_pruned_total",
		Help: "Total number of measurements removed by the retention job",
	})

	registerOnce  sync.Once
	storeGaugeMu  sync.Mutex
	storeGauge    prometheus.Collector
	storeGaugeLen func() int
)

func init() {
	InitMetrics()
}

// InitMetrics registers all Prometheus collectors used by the application.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			StatsQueriesTotal,
			IngestFetchTotal,
			RetentionPrunedTotal,
		)
	})
}

// RegisterStoreSize exposes the number of stored measurements as a gauge.
// Calling it again swaps the source, so tests can build several stores.
func RegisterStoreSize(size func() int) {
	storeGaugeMu.Lock()
	defer storeGaugeMu.Unlock()

	storeGaugeLen = size
	if storeGauge != nil {
		return
	}
	storeGauge = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "weather_measurements_stored",
		Help: "Number of measurements currently held in memory",
	}, func() float64 {
		storeGaugeMu.Lock()
		defer storeGaugeMu.Unlock()
		if storeGaugeLen == nil {
			return 0
		}
		return float64(storeGaugeLen())
	})
	prometheus.MustRegister(storeGauge)
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() fiber.Handler {
	InitMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}

// Middleware records request counts and latency per matched route.
func Middleware() fiber.Handler {
	InitMetrics()
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
		}

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		method := c.Method()

		HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		HTTPRequestDurationSeconds.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}
