// Package metrics exposes the Prometheus collectors of the API and the mail worker.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goalmate_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goalmate_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	AnalyticsReports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goalmate_analytics_reports_total",
			Help: "Total number of activity reports computed",
		},
		[]string{"status"},
	)
	AnalyticsComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "goalmate_analytics_compute_duration_seconds",
			Help:    "Time spent loading tasks and computing an activity report",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goalmate_emails_sent_total",
			Help: "Total number of transactional emails by kind and outcome",
		},
		[]string{"kind", "status"},
	)
	MailQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "goalmate_mail_queue_depth",
			Help: "Current number of emails waiting in the mail queue",
		},
	)
)

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func RecordAnalyticsReport(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	AnalyticsReports.WithLabelValues(status).Inc()
	AnalyticsComputeDuration.Observe(duration.Seconds())
}

func RecordEmailSent(kind string) {
	EmailsSent.WithLabelValues(kind, "sent").Inc()
}

func RecordEmailFailed(kind string) {
	EmailsSent.WithLabelValues(kind, "failed").Inc()
}

func RecordEmailDropped(kind string) {
	EmailsSent.WithLabelValues(kind, "dropped").Inc()
}

func UpdateMailQueueDepth(depth int) {
	MailQueueDepth.Set(float64(depth))
}
