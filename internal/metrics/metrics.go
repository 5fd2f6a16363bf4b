// Package metrics exposes Prometheus collectors for the feedback service.
//
// Collectors are registered on the default registry at package init and
// served by promhttp at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_http_requests_total",
			Help: "Total number of HTTP requests by route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedback_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	// SignupsTotal counts signup attempts by result.
	SignupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_signups_total",
			Help: "Signup attempts by result",
		},
		[]string{"result"},
	)

	// LoginsTotal counts password and SSO logins by result.
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_logins_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	// FeedbackSubmitted counts stored feedback by rating.
	FeedbackSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_submitted_total",
			Help: "Stored feedback records by rating",
		},
		[]string{"rating"},
	)

	// SessionsSwept counts expired sessions removed by the sweeper.
	SessionsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedback_sessions_swept_total",
			Help: "Expired sessions removed by the sweeper",
		},
	)
)

// RecordHTTPRequest records a finished HTTP request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordSignup records a signup outcome: success, duplicate or error.
func RecordSignup(result string) {
	SignupsTotal.WithLabelValues(result).Inc()
}

// RecordLogin records a login outcome: success, invalid, sso or error.
func RecordLogin(result string) {
	LoginsTotal.WithLabelValues(result).Inc()
}

// RecordFeedback records a stored feedback record.
func RecordFeedback(rating int) {
	FeedbackSubmitted.WithLabelValues(strconv.Itoa(rating)).Inc()
}

// RecordSessionsSwept adds n to the swept-sessions counter.
func RecordSessionsSwept(n int64) {
	if n > 0 {
		SessionsSwept.Add(float64(n))
	}
}
