package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function, e.g. a redis client ping, to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// CheckResult represents the health of a single dependency.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResult is the top-level health response.
type HealthResult struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// Checker verifies that all dependencies are reachable.
type Checker struct {
	deps   map[string]Pinger
	logger *slog.Logger
	gauge  *prometheus.GaugeVec
}

// NewChecker creates a health checker for the named dependencies and
// registers its Prometheus gauge. Nil pingers are skipped.
func NewChecker(deps map[string]Pinger, logger *slog.Logger, reg prometheus.Registerer) *Checker {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "swinggity",
		Name:      "health_check_up",
		Help:      "Whether a dependency is reachable. 1 = up, 0 = down.",
	}, []string{"dependency"})
	reg.MustRegister(gauge)

	active := make(map[string]Pinger, len(deps))
	for name, p := range deps {
		if p != nil {
			active[name] = p
		}
	}

	return &Checker{
		deps:   active,
		logger: logger.With("component", "health"),
		gauge:  gauge,
	}
}

// Liveness returns a simple "up" response if the process is running.
func (c *Checker) Liveness(_ context.Context) HealthResult {
	return HealthResult{Status: "up"}
}

// Readiness pings every dependency and reports per-check status.
func (c *Checker) Readiness(ctx context.Context) HealthResult {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	result := HealthResult{
		Status: "up",
		Checks: make(map[string]CheckResult, len(c.deps)),
	}

	names := make([]string, 0, len(c.deps))
	for name := range c.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := c.deps[name].Ping(checkCtx); err != nil {
			c.logger.Warn("health check failed", "dependency", name, "error", err)
			result.Status = "down"
			result.Checks[name] = CheckResult{Status: "down", Error: err.Error()}
			c.gauge.WithLabelValues(name).Set(0)
			continue
		}
		result.Checks[name] = CheckResult{Status: "up"}
		c.gauge.WithLabelValues(name).Set(1)
	}

	return result
}

func (c *Checker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeResult(w, c.Liveness(r.Context()))
}

func (c *Checker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	writeResult(w, c.Readiness(r.Context()))
}

func writeResult(w http.ResponseWriter, res HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if res.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(res)
}
