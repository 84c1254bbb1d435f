package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/ErlanBelekov/swinggity/internal/metrics"
	"github.com/ErlanBelekov/swinggity/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// RateLimit applies policy per client IP. Paths listed in skip are exempt.
// When the store is unreachable the request is allowed through and the
// failure is logged.
func RateLimit(limiter *ratelimit.Limiter, policy ratelimit.Policy, logger *slog.Logger, skip ...string) gin.HandlerFunc {
	logger = logger.With("component", "rate_limit", "policy", policy.Name)
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		d, err := limiter.Allow(c.Request.Context(), policy, c.ClientIP())
		if err != nil {
			logger.ErrorContext(c.Request.Context(), "rate limit store unavailable", "error", err)
			c.Next()
			return
		}

		resetIn := d.ResetIn
		if resetIn <= 0 {
			resetIn = policy.Window
		}
		c.Header("RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
		c.Header("RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
		c.Header("RateLimit-Reset", strconv.Itoa(int(math.Ceil(resetIn.Seconds()))))

		if !d.Allowed {
			metrics.RateLimitedTotal.WithLabelValues(policy.Name).Inc()
			logger.WarnContext(c.Request.Context(), "rate limited", "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "message": policy.Message})
			return
		}
		c.Next()
	}
}
