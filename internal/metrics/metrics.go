package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Outcome labels for auth events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// Auth event labels.
const (
	EventSignup         = "signup"
	EventLogin          = "login"
	EventChangePassword = "change_password"
	EventForgotPassword = "forgot_password"
	EventResetPassword  = "reset_password"
	EventAvatarUpload   = "avatar_upload"
)

var HTTPRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "accountsvc_http_requests_total",
		Help: "Total number of HTTP requests handled",
	},
	[]string{"method", "route", "status"},
)

var HTTPDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "accountsvc_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

var AuthEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "accountsvc_auth_events_total",
		Help: "Account operations by outcome",
	},
	[]string{"event", "outcome"},
)

var PurgedResetTokens = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "accountsvc_purged_reset_tokens_total",
		Help: "Expired reset tokens removed by the maintenance worker",
	},
)

// Register adds the API collectors to reg. It panics on duplicate
// registration.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequests, HTTPDuration, AuthEvents)
}

// RegisterWorker adds the maintenance worker collectors to reg.
func RegisterWorker(reg prometheus.Registerer) {
	reg.MustRegister(PurgedResetTokens)
}

// NewRegistry returns a registry holding the Go runtime and process
// collectors, plus whatever register adds.
func NewRegistry(register func(prometheus.Registerer)) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	register(reg)
	return reg
}

func RecordHTTPRequest(method, route, status string, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordAuthEvent(event, outcome string) {
	AuthEvents.WithLabelValues(event, outcome).Inc()
}
