// Package app assembles the bot from its parts and owns the process
// lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"dailybot/internal/analytics"
	"dailybot/internal/astro"
	"dailybot/internal/config"
	"dailybot/internal/dedupe"
	"dailybot/internal/dispatch"
	"dailybot/internal/logger"
	"dailybot/internal/metrics"
	"dailybot/internal/repository"
	"dailybot/internal/server"
	"dailybot/internal/telegram"
)

const shutdownTimeout = 10 * time.Second

// Run wires every component and blocks until the process receives a
// termination signal or the HTTP server fails.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	users := repository.NewUserRepository(db)
	actions := repository.NewActionRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	aggregator := analytics.New(actions)
	refresher := analytics.NewRefresher(aggregator, users, analyticsRepo, log)
	if cfg.RefreshIntervalMin > 0 {
		if err := refresher.Schedule(time.Duration(cfg.RefreshIntervalMin) * time.Minute); err != nil {
			return fmt.Errorf("schedule analytics refresh: %w", err)
		}
		defer refresher.Stop()
	}

	gateway, err := telegram.New(cfg.BotToken, log)
	if err != nil {
		return fmt.Errorf("init telegram gateway: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricSet := metrics.New(registry)

	// An empty weather key degrades /astro and /moon to the fallback
	// reply instead of disabling the commands.
	moon := astro.NewService(cfg.WeatherAPIKey, log)

	dispatcher := dispatch.New(gateway, users, actions, moon, dedupe.New(0), metricSet, log)

	srv := server.New(dispatcher, users, aggregator, gateway,
		cfg.WebhookURL, metricSet, registry, log)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if cfg.WebhookURL != "" {
		if err := gateway.SetWebhook(cfg.WebhookURL + "/webhook"); err != nil {
			// Not fatal: /set_webhook can retry after startup.
			log.Warn("webhook registration at startup failed", zap.Error(err))
		}
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info("stopped cleanly")
	return nil
}
