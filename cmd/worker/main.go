package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"betedge/engine/internal/config"
	"betedge/engine/internal/logging"
	"betedge/engine/internal/metrics"
	"betedge/engine/internal/notify"
	"betedge/engine/internal/pipeline"
	"betedge/engine/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	logging.Setup(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"), os.Stdout)

	log.Info().Msg("Starting BetEdge autopilot worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Str("domain", cfg.Domain).
		Bool("simulate", cfg.Simulate).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	runner, err := pipeline.NewRunner(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize pipeline")
	}
	defer runner.Close()

	var poster scheduler.Poster
	if cfg.WebhookURL != "" {
		poster = notify.NewNotifier(runner.Client(), cfg.WebhookURL, cfg.NotifyTop)
		log.Info().Int("top", cfg.NotifyTop).Msg("Webhook notifications enabled")
	} else {
		log.Warn().Msg("WEBHOOK_URL not set, leaderboards will not be posted")
	}

	// Start metrics HTTP server
	var srv *http.Server
	if cfg.EnableMetrics {
		srv = newMetricsServer(cfg.MetricsPort, runner)
		go func() {
			log.Info().Int("port", cfg.MetricsPort).Msg("Starting metrics server")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
				if db := runner.Database(); db != nil {
					db.PoolStats()
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Create and start scheduler
	sched := scheduler.NewScheduler(cfg, runner, poster)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Run once on startup if enabled
	if cfg.InitialRunEnabled {
		log.Info().Msg("Running initial autopilot pass...")
		if err := sched.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Initial run failed, continuing anyway...")
		}
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	if cfg.EnableScheduler {
		log.Info().Msg("Shutting down scheduler...")
		sched.Stop()
	}

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Metrics server shutdown failed")
		}
	}

	log.Info().Msg("Worker shutdown complete")
}

// newMetricsServer builds the Prometheus metrics and health HTTP server
func newMetricsServer(port int, runner *pipeline.Runner) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db := runner.Database(); db != nil {
			if err := db.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"degraded","warehouse":"unreachable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
