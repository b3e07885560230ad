package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes, shared with the submission log.
const (
	OutcomeRejected    = "rejected"
	OutcomeTestMode    = "test_mode"
	OutcomeConfigError = "config_error"
	OutcomeSent        = "sent"
	OutcomeFailed      = "failed"
)

// Metrics holds all Prometheus metrics for the portal API.
type Metrics struct {
	registry *prometheus.Registry

	Submissions  *prometheus.CounterVec
	MailDuration *prometheus.HistogramVec
}

// New creates the metrics on a dedicated registry so tests can build as many as they need.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_submissions_total",
			Help: "Form submissions handled, by form and outcome",
		}, []string{"form", "outcome"}),
		MailDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_mail_send_duration_seconds",
			Help:    "Time spent verifying the SMTP session and sending a form's mail",
			Buckets: prometheus.DefBuckets,
		}, []string{"form"}),
	}
}

// IncrementSubmission counts one handled submission.
func (m *Metrics) IncrementSubmission(form, outcome string) {
	m.Submissions.WithLabelValues(form, outcome).Inc()
}

// ObserveMail records how long a form's mail delivery took.
func (m *Metrics) ObserveMail(form string, d time.Duration) {
	m.MailDuration.WithLabelValues(form).Observe(d.Seconds())
}

// Handler serves the Prometheus exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
