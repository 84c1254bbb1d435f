package metrics

import (
	"net/http"

	"github.com/ErlanBelekov/swinggity/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth workflow

	AuthOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "swinggity",
		Name:      "auth_operations_total",
		Help:      "Auth workflow operations, by operation and outcome.",
	}, []string{"operation", "outcome"})

	EmailsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "swinggity",
		Name:      "emails_sent_total",
		Help:      "Transactional emails dispatched, by kind and outcome.",
	}, []string{"kind", "outcome"})

	// Request guards

	RateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "swinggity",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter, by policy.",
	}, []string{"policy"})

	CSRFRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "swinggity",
		Name:      "csrf_rejections_total",
		Help:      "State-changing requests rejected for a missing or mismatched CSRF token.",
	})

	// Maintenance

	TokensSweptTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "swinggity",
		Name:      "tokens_swept_total",
		Help:      "Expired tokens cleared by the sweeper, by kind.",
	}, []string{"kind"})

	SweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "swinggity",
		Name:      "sweep_duration_seconds",
		Help:      "Time taken for one sweeper run.",
		Buckets:   prometheus.DefBuckets,
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "swinggity",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "swinggity",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		AuthOperationsTotal,
		EmailsSentTotal,
		RateLimitedTotal,
		CSRFRejectionsTotal,
		TokensSweptTotal,
		SweepDuration,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus liveness and readiness probes on a port
// separate from the public API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", checker.LivenessHandler)
	mux.HandleFunc("/readyz", checker.ReadinessHandler)
	return &http.Server{Addr: addr, Handler: mux}
}
