package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"regscope/internal/generation"
	"regscope/internal/generation/tracer"
	"regscope/internal/platform/config"
	"regscope/internal/platform/health"
	"regscope/internal/platform/logger"
	"regscope/internal/platform/metrics"
	"regscope/internal/platform/telemetry"
	"regscope/internal/screening/handler"
	"regscope/internal/screening/service"
	httptransport "regscope/internal/transport/http"
	"regscope/pkg/platform/middleware/metadata"
)

// main wires dependencies, exposes the router and keeps the server lifecycle
// small. Business logic lives in the internal service packages.
func main() {
	if err := config.LoadEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg := config.FromEnv()
	log := logger.New(cfg.Server.LogLevel)
	slog.SetDefault(log)

	log.Info("initializing regscope",
		"addr", cfg.Server.Addr,
		"environment", cfg.Server.Environment,
		"model", cfg.Generation.Model,
		"version", health.Version,
	)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.Telemetry, health.Version)
	if err != nil {
		log.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	trustedProxies, err := metadata.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		log.Error("invalid TRUSTED_PROXIES", "error", err)
		os.Exit(1)
	}

	m := metrics.New(health.Version, cfg.Server.Environment)

	gemini, err := generation.NewGemini(context.Background(), generation.GeminiConfig{
		APIKey:         cfg.Generation.APIKey,
		Model:          cfg.Generation.Model,
		BaseURL:        cfg.Generation.BaseURL,
		Timeout:        cfg.Generation.Timeout,
		MaxConcurrency: cfg.Generation.MaxConcurrency,
	},
		generation.WithTracer(tracer.NewOTel()),
		generation.WithMetrics(m.Generation),
		generation.WithLogger(log),
	)
	if err != nil {
		log.Error("failed to create generation client", "error", err)
		os.Exit(1)
	}
	if gemini.Configured() {
		log.Info("generation client ready", "model", gemini.Model())
	} else {
		log.Warn("GEMINI_API_KEY is not set; screening requests will fail until it is configured")
	}

	svc := service.New(gemini,
		service.WithLogger(log),
		service.WithMetrics(m.Screening),
	)

	healthHandler := health.New(cfg.Server.Environment)
	healthHandler.RegisterCheck("generation", gemini.Check)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Logger:         log,
		Health:         healthHandler,
		Screening:      handler.New(svc, log),
		Metrics:        m,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		TrustedProxies: trustedProxies,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Error("trace exporter shutdown failed", "error", err)
	}

	log.Info("server stopped")
}
