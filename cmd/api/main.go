// Package main provides the entrypoint for the MandiRoute API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/mandiroute/mandiroute/internal/api"
	"github.com/mandiroute/mandiroute/internal/api/middleware"
	"github.com/mandiroute/mandiroute/internal/database"
	"github.com/mandiroute/mandiroute/internal/directory"
	"github.com/mandiroute/mandiroute/internal/geo"
	"github.com/mandiroute/mandiroute/internal/market"
	"github.com/mandiroute/mandiroute/internal/pricefeed"
	"github.com/mandiroute/mandiroute/internal/pricefeed/agmarknet"
	"github.com/mandiroute/mandiroute/internal/provider/resilience"
	"github.com/mandiroute/mandiroute/internal/telemetry"
	"github.com/mandiroute/mandiroute/internal/transport"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "mandiroute-api"

	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting MandiRoute API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Initialize directory repository: Postgres when configured,
	// otherwise the built-in seed directory.
	var directoryRepo directory.Repository
	if os.Getenv("DATABASE_URL") != "" || os.Getenv("DB_HOST") != "" {
		dbConfig := database.ConfigFromEnv()
		pool, connErr := database.Connect(ctx, dbConfig)
		if connErr != nil {
			log.Fatal().Err(connErr).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Str("database", dbConfig.Database).
			Msg("database connected")

		directoryRepo = directory.NewPostgresRepository(pool)
	} else {
		memRepo, seedErr := directory.NewInMemoryRepository(directory.DefaultMandis())
		if seedErr != nil {
			log.Fatal().Err(seedErr).Msg("failed to seed mandi directory")
		}
		directoryRepo = memRepo
		log.Info().Msg("using in-memory mandi directory")
	}

	directoryService := directory.NewService(directory.ServiceConfig{
		Repository: directoryRepo,
		Logger:     log,
	})
	log.Info().Msg("directory service initialized")

	registry := resilience.NewRegistry()

	// Live prices are optional: without an API key the engine runs on
	// the directory's static modal prices.
	var priceService *pricefeed.Service
	if apiKey := os.Getenv("AGMARKNET_API_KEY"); apiKey != "" {
		mandis, listErr := directoryRepo.ListAll(ctx)
		if listErr != nil {
			log.Fatal().Err(listErr).Msg("failed to list mandis for feed mapping")
		}
		mandiIDs := make(map[string]string, len(mandis))
		for _, m := range mandis {
			mandiIDs[m.Market] = m.ID
		}

		feedClient := resilience.NewClient(resilience.ClientConfig{
			Name:            agmarknet.ProviderName,
			Timeout:         10 * time.Second,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
		registry.Register(agmarknet.ProviderName, feedClient)

		provider := agmarknet.NewClient(agmarknet.ClientConfig{
			APIKey:     apiKey,
			State:      os.Getenv("AGMARKNET_STATE"),
			MandiIDs:   mandiIDs,
			HTTPClient: feedClient,
		})

		priceService = pricefeed.NewService(pricefeed.ServiceConfig{
			Provider: provider,
			Logger:   log,
		})
		log.Info().Msg("agmarknet price feed initialized")
	} else {
		log.Warn().Msg("AGMARKNET_API_KEY not set - using static modal prices")
	}

	costModel, err := transport.NewModel(transport.DefaultCostConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid transport cost config")
	}

	marketConfig := market.ServiceConfig{
		Directory: directoryService,
		Distance:  geo.NewResolver(),
		Transport: costModel,
		Logger:    log,
	}
	if priceService != nil {
		marketConfig.LivePrices = priceService
	}
	marketService := market.NewService(marketConfig)
	log.Info().Msg("market service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:          Version,
		BuildTime:        BuildTime,
		Logger:           log,
		ServiceName:      serviceName,
		Metrics:          metrics,
		DirectoryService: directoryService,
		MarketService:    marketService,
		PriceService:     priceService,
		Registry:         registry,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
