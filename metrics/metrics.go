// Package metrics exposes Prometheus instrumentation for the content
// pipeline and the HTTP layer. Each Metrics owns its registry so several
// apps can coexist in one process.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the server records to.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	pipelineDuration prometheus.Histogram
	seoVerdicts      *prometheus.CounterVec
	postsPublished   prometheus.Counter
	cacheLoads       *prometheus.CounterVec
}

// New registers all collectors under namespace on a fresh registry.
func New(namespace string) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)
	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time taken to handle HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	m.pipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "pipeline_duration_seconds",
			Help:      "Time taken to render and measure a block tree",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)
	m.seoVerdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "seo",
			Name:      "verdicts_total",
			Help:      "SEO scores computed, by overall verdict",
		},
		[]string{"overall"},
	)
	m.postsPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "posts_published_total",
			Help:      "Scheduled posts flipped to published",
		},
	)
	m.cacheLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "loads_total",
			Help:      "Post cache reads, by hit or miss",
		},
		[]string{"result"},
	)

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.pipelineDuration,
		m.seoVerdicts,
		m.postsPublished,
		m.cacheLoads,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObservePipeline records one content pipeline run.
func (m *Metrics) ObservePipeline(d time.Duration) {
	m.pipelineDuration.Observe(d.Seconds())
}

// RecordVerdict counts one SEO score by its overall verdict.
func (m *Metrics) RecordVerdict(overall string) {
	m.seoVerdicts.WithLabelValues(overall).Inc()
}

// AddPublished counts posts published by the scheduler.
func (m *Metrics) AddPublished(n int) {
	m.postsPublished.Add(float64(n))
}

// CacheHit and CacheMiss count post cache reads.
func (m *Metrics) CacheHit()  { m.cacheLoads.WithLabelValues("hit").Inc() }
func (m *Metrics) CacheMiss() { m.cacheLoads.WithLabelValues("miss").Inc() }

// Middleware records request counts and latency keyed by the matched route.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
