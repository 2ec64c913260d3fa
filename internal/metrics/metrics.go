// Package metrics holds the Prometheus collectors shared by the API, the
// recommendation engine, the trending proxy and the bot.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation outcomes.
const (
	OutcomeAI       = "ai"
	OutcomeFallback = "fallback"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintain_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maintain_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintain_recommendations_total",
			Help: "Total number of recommendation requests by outcome (ai, fallback)",
		},
		[]string{"outcome"},
	)

	GeminiLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "maintain_gemini_request_duration_seconds",
			Help:    "Latency of Gemini generate calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
	)

	TrendingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintain_trending_requests_total",
			Help: "Total number of trending requests by source (youtube, fallback)",
		},
		[]string{"source"},
	)

	BotUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintain_bot_updates_total",
			Help: "Total number of Telegram updates handled by type",
		},
		[]string{"type"},
	)

	ScheduledTaskRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintain_scheduled_task_runs_total",
			Help: "Total number of scheduled task runs by task and result",
		},
		[]string{"task", "result"},
	)
)

// RecordHTTPRequest records one handled HTTP request.
func RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordRecommendation counts a recommendation by outcome.
func RecordRecommendation(usedFallback bool) {
	outcome := OutcomeAI
	if usedFallback {
		outcome = OutcomeFallback
	}
	RecommendationsTotal.WithLabelValues(outcome).Inc()
}

// RecordTaskRun counts a scheduled task execution.
func RecordTaskRun(task string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	ScheduledTaskRuns.WithLabelValues(task, result).Inc()
}
