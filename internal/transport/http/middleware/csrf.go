package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ErlanBelekov/swinggity/internal/metrics"
	"github.com/ErlanBelekov/swinggity/internal/token"
	"github.com/gin-gonic/gin"
)

const (
	// CSRFCookieName binds the CSRF secret to the browser.
	CSRFCookieName = "csrf_secret"
	// CSRFHeaderName must echo the cookie on unsafe methods.
	CSRFHeaderName = "X-CSRF-Token"

	csrfCookieMaxAge = 12 * time.Hour

	errInvalidCSRF = "Invalid CSRF token"
)

var unsafeMethods = map[string]struct{}{
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// CSRF enforces the double-submit check on POST, PUT, PATCH and DELETE: the
// X-CSRF-Token header must equal the csrf_secret cookie. Other methods pass.
func CSRF(logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "csrf")
	return func(c *gin.Context) {
		if _, unsafe := unsafeMethods[c.Request.Method]; !unsafe {
			c.Next()
			return
		}

		cookie, _ := c.Cookie(CSRFCookieName)
		header := strings.TrimSpace(c.GetHeader(CSRFHeaderName))
		if !constantTimeEqual(cookie, header) {
			logger.WarnContext(c.Request.Context(), "csrf validation failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"has_cookie", cookie != "",
				"has_header", header != "",
			)
			metrics.CSRFRejectionsTotal.Inc()
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": errInvalidCSRF})
			return
		}
		c.Next()
	}
}

// EnsureCSRFCookie returns the caller's CSRF secret, issuing a new one if the
// cookie is absent. The cookie's lifetime is refreshed either way.
func EnsureCSRFCookie(c *gin.Context, secure bool) (string, error) {
	value, err := c.Cookie(CSRFCookieName)
	if err != nil || value == "" {
		if value, err = token.CSRFToken(); err != nil {
			return "", err
		}
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(csrfCookieMaxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return value, nil
}

func constantTimeEqual(a, b string) bool {
	if a == "" || b == "" || len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
