package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors for the HTTP surface and the
// dispatch pipeline.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dispatchRunsTotal    *prometheus.CounterVec
	jobsProcessedTotal   *prometheus.CounterVec
	channelOutcomesTotal *prometheus.CounterVec
	channelSendDuration  *prometheus.HistogramVec
	batchFound           prometheus.Histogram
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "claim_notifier",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "claim_notifier",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		dispatchRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "claim_notifier",
				Name:      "dispatch_runs_total",
				Help:      "Total number of dispatcher invocations by scope (full sweep or single claim).",
			},
			[]string{"scope"},
		),
		jobsProcessedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "claim_notifier",
				Name:      "jobs_processed_total",
				Help:      "Total number of queue jobs visited by terminal result.",
			},
			[]string{"result"},
		),
		channelOutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "claim_notifier",
				Name:      "channel_outcomes_total",
				Help:      "Per-channel delivery outcomes (sent, skipped, failed).",
			},
			[]string{"channel", "outcome"},
		),
		channelSendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "claim_notifier",
				Name:      "channel_send_duration_seconds",
				Help:      "Provider call duration in seconds grouped by channel.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"channel"},
		),
		batchFound: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "claim_notifier",
				Name:      "dispatch_batch_found",
				Help:      "Number of pending jobs fetched per dispatcher invocation.",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dispatchRunsTotal,
		m.jobsProcessedTotal,
		m.channelOutcomesTotal,
		m.channelSendDuration,
		m.batchFound,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncDispatchRun(scope string) {
	if m == nil {
		return
	}
	m.dispatchRunsTotal.WithLabelValues(normalizeLabel(scope)).Inc()
}

func (m *Metrics) IncJobResult(result string) {
	if m == nil {
		return
	}
	m.jobsProcessedTotal.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *Metrics) IncChannelOutcome(channel string, outcome string) {
	if m == nil {
		return
	}
	m.channelOutcomesTotal.WithLabelValues(normalizeLabel(channel), normalizeLabel(outcome)).Inc()
}

func (m *Metrics) ObserveChannelSendDuration(channel string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.channelSendDuration.WithLabelValues(normalizeLabel(channel)).Observe(seconds)
}

func (m *Metrics) ObserveBatchFound(found int) {
	if m == nil {
		return
	}
	if found < 0 {
		found = 0
	}
	m.batchFound.Observe(float64(found))
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(v string) string {
	normalized := strings.ToLower(strings.TrimSpace(v))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
