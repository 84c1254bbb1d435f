package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/swinggity/config"
	"github.com/ErlanBelekov/swinggity/internal/email"
	"github.com/ErlanBelekov/swinggity/internal/health"
	"github.com/ErlanBelekov/swinggity/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/swinggity/internal/infrastructure/redis"
	ctxlog "github.com/ErlanBelekov/swinggity/internal/log"
	"github.com/ErlanBelekov/swinggity/internal/maintenance"
	"github.com/ErlanBelekov/swinggity/internal/metrics"
	"github.com/ErlanBelekov/swinggity/internal/password"
	"github.com/ErlanBelekov/swinggity/internal/ratelimit"
	"github.com/ErlanBelekov/swinggity/internal/token"
	httptransport "github.com/ErlanBelekov/swinggity/internal/transport/http"
	"github.com/ErlanBelekov/swinggity/internal/transport/http/handler"
	"github.com/ErlanBelekov/swinggity/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := ctxlog.New(cfg.Env, cfg.SlogLevel(), os.Stdout)

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.ServerPool)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		stop()
		log.Fatalf("migrate: %v", err)
	}
	logger.Info("db connected and migrated")

	deps := map[string]health.Pinger{"postgres": pool}

	// Rate-limit counters: Redis when configured so limits hold across
	// instances, process memory otherwise.
	var (
		store       ratelimit.Store
		memoryStore *ratelimit.MemoryStore
	)
	if cfg.RedisURL != "" {
		rdb, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			stop()
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		store = ratelimit.NewRedisStore(rdb)
		deps["redis"] = health.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		logger.Info("rate limiter using redis")
	} else {
		memoryStore = ratelimit.NewMemoryStore()
		store = memoryStore
		logger.Info("rate limiter using process memory")
	}

	hasher, err := password.NewBcrypt(cfg.BcryptCost)
	if err != nil {
		stop()
		log.Fatalf("hasher: %v", err)
	}
	sessions := token.NewSession([]byte(cfg.JWTSecret))
	mailer := email.NewMailer(email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger))
	userRepo := postgres.NewUserRepository(pool)

	authUsecase := usecase.NewAuthUsecase(userRepo, hasher, mailer, sessions, cfg.ClientURL)
	authHandler := handler.NewAuthHandler(authUsecase, cfg.SecureCookies(), logger)
	csrfHandler := handler.NewCSRFHandler(cfg.SecureCookies(), logger)

	metrics.Register()
	checker := health.NewChecker(deps, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, csrfHandler, sessions, ratelimit.New(store), httptransport.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			SecureCookies:  cfg.SecureCookies(),
			TrustedProxies: cfg.TrustedProxies,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	var pruner maintenance.Pruner
	if memoryStore != nil {
		pruner = memoryStore
	}
	sweeper := maintenance.NewSweeper(userRepo, pruner, logger)
	go func() {
		if err := sweeper.Run(ctx, cfg.SweepSchedule); err != nil {
			logger.Error("sweeper", "error", err)
		}
	}()

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}
