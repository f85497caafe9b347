// Package main provides the entrypoint for the ChargeSpot host bridge.
//
// The host plugin starts this process when it loads and stops it (SIGTERM)
// when it unloads. The bridge listens on loopback only unless BRIDGE_BIND
// says otherwise.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/chargespot/chargespot/internal/api"
	"github.com/chargespot/chargespot/internal/api/middleware"
	"github.com/chargespot/chargespot/internal/config"
	"github.com/chargespot/chargespot/internal/provider/resilience"
	"github.com/chargespot/chargespot/internal/report"
	"github.com/chargespot/chargespot/internal/station"
	"github.com/chargespot/chargespot/internal/station/openchargemap"
	"github.com/chargespot/chargespot/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "chargespot-bridge"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s\n\n%s\n", os.Args[0], config.Usage())
	}
	flag.Parse()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		Level(cfg.Level()).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("bridge stopped with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Env).
		Msg("starting ChargeSpot bridge")

	ctx := context.Background()

	// Initialize OpenTelemetry
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		return fmt.Errorf("initializing HTTP metrics: %w", err)
	}
	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		return fmt.Errorf("initializing provider metrics: %w", err)
	}
	reportMetrics, err := telemetry.NewReportMetrics()
	if err != nil {
		return fmt.Errorf("initializing report metrics: %w", err)
	}

	// Station directory client behind timeout, retry and circuit breaker
	registry := resilience.NewRegistry()
	clientCfg := resilience.DefaultClientConfig(openchargemap.ProviderName)
	clientCfg.Timeout = cfg.OpenChargeMap.Timeout
	clientCfg.MaxRetries = cfg.OpenChargeMap.MaxRetries
	clientCfg.CircuitBreaker.OnStateChange = resilience.LogStateChanges(log)
	clientCfg.Registry = registry

	directory := openchargemap.NewClient(openchargemap.ClientConfig{
		BaseURL:    cfg.OpenChargeMap.BaseURL,
		APIKey:     cfg.OpenChargeMap.APIKey,
		UserAgent:  cfg.OpenChargeMap.UserAgent,
		HTTPClient: resilience.NewClient(clientCfg),
		Logger:     log.With().Str("component", "openchargemap").Logger(),
	})

	searcher := station.NewService(station.ServiceConfig{
		Provider: directory,
		Logger:   log.With().Str("component", "station").Logger(),
		Timeout:  cfg.OpenChargeMap.Timeout,
		Health:   registry,
		Metrics:  providerMetrics,
	})
	session := station.NewSession()

	exporter := report.NewExporter(report.ExporterConfig{
		Logger:   log.With().Str("component", "report").Logger(),
		Compress: cfg.Report.Compress,
		Metrics:  reportMetrics,
	})

	if !cfg.IsLoopback() {
		log.Warn().
			Str("bind", cfg.Bridge.Bind).
			Msg("bridge bound to a non-loopback address; remote clients can reach it")
	}

	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		Metrics:         httpMetrics,
		Searcher:        searcher,
		Session:         session,
		Exporter:        exporter,
		Registry:        registry,
		SearchRateLimit: cfg.Bridge.SearchRateLimit,
		AllowRemote:     !cfg.IsLoopback(),
	})

	// Searches may take the full directory timeout, so writes get headroom.
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.OpenChargeMap.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("bridge listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for the host to unload us
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("serving: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down bridge")
	}

	// Cancels any search in flight and drops the fetched set.
	session.Clear()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info().Msg("bridge stopped")
	return nil
}
