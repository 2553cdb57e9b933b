package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/common"
	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// Service aggregates request metrics two ways: a Prometheus registry
// served on /metrics, and best-effort durable APIMetric rows for
// offline inspection.
type Service struct {
	registry *prometheus.Registry
	storage  interfaces.MetricStorage
	logger   arbor.ILogger

	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	lintRuns  *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
	jobsGauge *prometheus.GaugeVec
}

// NewService creates the metrics service
func NewService(storage interfaces.MetricStorage, logger arbor.ILogger) *Service {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Service{
		registry: registry,
		storage:  storage,
		logger:   logger,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lintapi_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lintapi_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		lintRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lintapi_lint_runs_total",
			Help: "Linter executions by linter and outcome.",
		}, []string{"linter", "outcome"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lintapi_cache_requests_total",
			Help: "Result cache lookups by outcome.",
		}, []string{"outcome"}),
		jobsGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lintapi_jobs",
			Help: "Async jobs by status.",
		}, []string{"status"}),
	}

	registry.MustRegister(s.requests, s.duration, s.lintRuns, s.cacheHits, s.jobsGauge)
	return s
}

// Handler serves the Prometheus exposition format
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// RecordRequest tracks one finished HTTP request in both sinks
func (s *Service) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration, linter string, cacheHit bool) {
	s.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	s.duration.WithLabelValues(method, route).Observe(duration.Seconds())

	metric := &models.APIMetric{
		ID:         common.NewMetricID(),
		Endpoint:   route,
		Method:     method,
		StatusCode: status,
		DurationMs: duration.Milliseconds(),
		Linter:     linter,
		CacheHit:   cacheHit,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.storage.RecordMetric(ctx, metric); err != nil {
		s.logger.Debug().Err(err).Str("route", route).Msg("Failed to persist request metric")
	}
}

// RecordLintRun tracks one linter execution outcome
func (s *Service) RecordLintRun(linter, outcome string) {
	s.lintRuns.WithLabelValues(linter, outcome).Inc()
}

// RecordCacheLookup tracks a cache hit or miss
func (s *Service) RecordCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	s.cacheHits.WithLabelValues(outcome).Inc()
}

// SetJobCounts publishes the current job stats as gauges
func (s *Service) SetJobCounts(stats *models.JobStats) {
	s.jobsGauge.WithLabelValues(string(models.JobStatusPending)).Set(float64(stats.Pending))
	s.jobsGauge.WithLabelValues(string(models.JobStatusRunning)).Set(float64(stats.Running))
	s.jobsGauge.WithLabelValues(string(models.JobStatusCompleted)).Set(float64(stats.Completed))
	s.jobsGauge.WithLabelValues(string(models.JobStatusFailed)).Set(float64(stats.Failed))
	s.jobsGauge.WithLabelValues(string(models.JobStatusCancelled)).Set(float64(stats.Cancelled))
}
