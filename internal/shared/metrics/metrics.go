package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LLMBuckets covers completion latencies from 100ms to 2 minutes.
var LLMBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Registry holds every collector this service exports.
var Registry = prometheus.NewRegistry()

var (
	analysisStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "analysis_started_total",
		Help: "Total analyses started",
	})

	analysisCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_completed_total",
		Help: "Total analyses completed, by result kind (json or text)",
	}, []string{"result"})

	analysisFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_failed_total",
		Help: "Total analyses failed, by error kind",
	}, []string{"kind"})

	analysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "analysis_duration_seconds",
		Help:    "Analysis duration including the completion call",
		Buckets: LLMBuckets,
	})

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	rateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ratelimit_rejected_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"group"})

	codeExecutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "code_executions_total",
		Help: "Code executor runs by outcome",
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(
		analysisStartedTotal,
		analysisCompletedTotal,
		analysisFailedTotal,
		analysisDuration,
		httpRequestsTotal,
		rateLimitedTotal,
		codeExecutionsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() {
	analysisStartedTotal.Inc()
}

// IncAnalysisCompleted increments the completed counter for a result kind.
func IncAnalysisCompleted(resultKind string) {
	analysisCompletedTotal.WithLabelValues(resultKind).Inc()
}

// IncAnalysisFailed increments the failed counter for an error kind.
func IncAnalysisFailed(kind string) {
	analysisFailedTotal.WithLabelValues(kind).Inc()
}

// ObserveAnalysisDuration records an analysis duration.
func ObserveAnalysisDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	analysisDuration.Observe(d.Seconds())
}

// ObserveHTTPRequest counts a finished HTTP request.
func ObserveHTTPRequest(method, route, status string) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
}

// IncRateLimited counts a rate limiter rejection.
func IncRateLimited(group string) {
	rateLimitedTotal.WithLabelValues(group).Inc()
}

// IncCodeExecution counts an executor run ("ok", "exit_nonzero", "timeout", "error").
func IncCodeExecution(outcome string) {
	codeExecutionsTotal.WithLabelValues(outcome).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
