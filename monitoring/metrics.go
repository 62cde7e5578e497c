package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
)

var (
	// SubmissionsTotal counts intake outcomes: accepted, validation_failed,
	// storage_failed.
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "applications_submitted_total",
			Help: "Application submissions by outcome",
		},
		[]string{"outcome"},
	)

	// EmailSendsTotal counts notification results by kind (application,
	// contact) and result (sent, failed, skipped).
	EmailSendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Notification email batches by kind and result",
		},
		[]string{"kind", "result"},
	)
)

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(SubmissionsTotal)
	prometheus.MustRegister(EmailSendsTotal)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
