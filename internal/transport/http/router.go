package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/swinggity/internal/ratelimit"
	"github.com/ErlanBelekov/swinggity/internal/transport/http/handler"
	"github.com/ErlanBelekov/swinggity/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type Options struct {
	AllowedOrigins []string
	SecureCookies  bool
	// TrustedProxies feeds gin's ClientIP; nil trusts no proxy headers.
	TrustedProxies []string
}

func NewRouter(
	logger *slog.Logger,
	authHandler *handler.AuthHandler,
	csrfHandler *handler.CSRFHandler,
	sessions middleware.SessionVerifier,
	limiter *ratelimit.Limiter,
	opts Options,
) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		logger.Error("invalid trusted proxies, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security(opts.SecureCookies))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimit(limiter, ratelimit.General, logger, "/", "/health"))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to the Swinggity community!")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/csrf-token", csrfHandler.Token)

	limit := func(p ratelimit.Policy) gin.HandlerFunc {
		return middleware.RateLimit(limiter, p, logger)
	}
	csrf := middleware.CSRF(logger)
	session := middleware.Session(sessions)

	auth := api.Group("/auth")
	auth.POST("/signup", limit(ratelimit.Signup), csrf, authHandler.Signup)
	auth.POST("/login", limit(ratelimit.Login), csrf, authHandler.Login)
	auth.POST("/logout", csrf, authHandler.Logout)
	auth.POST("/verify-email", limit(ratelimit.VerifyEmail), csrf, authHandler.VerifyEmail)
	auth.POST("/forgot-password", limit(ratelimit.ForgotPassword), csrf, authHandler.ForgotPassword)
	auth.POST("/reset-password/:token", limit(ratelimit.ResetPassword), csrf, authHandler.ResetPassword)
	auth.GET("/check-auth", session, authHandler.CheckAuth)
	auth.GET("/verify", session, authHandler.CheckAuth)

	return r
}
