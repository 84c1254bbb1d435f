// janitor runs the token sweeper as its own process, for deployments that
// keep the API servers free of background work. It also exposes /metrics
// and the health probes.
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
	"github.com/ErlanBelekov/swinggity/internal/health"
	"github.com/ErlanBelekov/swinggity/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/swinggity/internal/log"
	"github.com/ErlanBelekov/swinggity/internal/maintenance"
	"github.com/ErlanBelekov/swinggity/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := ctxlog.New(cfg.Env, cfg.SlogLevel(), os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.ToolPool)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(map[string]health.Pinger{"postgres": pool}, logger, prometheus.DefaultRegisterer)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	// Rate-limit counters are per server process, so only tokens are swept here.
	sweeper := maintenance.NewSweeper(postgres.NewUserRepository(pool), nil, logger)
	sweeper.Sweep(ctx)
	if err := sweeper.Run(ctx, cfg.SweepSchedule); err != nil {
		stop()
		log.Fatalf("sweeper: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}
